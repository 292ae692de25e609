package engines

import (
	"context"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/engine"
	"TipFusion/pkg/util"
)

const defaultPrior = 0.33

// Prior passes through probabilities the feed already attached to the match
// (prob_home/draw/away, 0.33 when absent).
type Prior struct {
	engine.Base
}

func NewPrior(cfg map[string]any) (engine.Engine, error) {
	return &Prior{Base: engine.NewBase(PriorID, "1.0", cfg)}, nil
}

func (p *Prior) RunModel(_ context.Context, in models.NormalizedInput) (models.ModelOutput, error) {
	probs := priorProbabilities(in)
	out := models.ModelOutput{Probabilities: &probs}
	if c, ok := in.MatchFloat("confidence"); ok {
		c = util.Clip01(c)
		out.Confidence = &c
	} else {
		c := p.ConfigFloat("confidence", 0.5)
		out.Confidence = &c
	}
	return out, nil
}

func priorProbabilities(in models.NormalizedInput) models.Probabilities {
	return models.Probabilities{
		Home: in.MatchFloatOr("prob_home", defaultPrior),
		Draw: in.MatchFloatOr("prob_draw", defaultPrior),
		Away: in.MatchFloatOr("prob_away", defaultPrior),
	}
}
