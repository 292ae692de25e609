package engines

import (
	"context"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/engine"
	"TipFusion/pkg/util"
)

// Live is the quick in-play model: it tilts the prior toward the home side
// in proportion to live intensity (factor capped at 0.2).
type Live struct {
	engine.Base
}

func NewLive(cfg map[string]any) (engine.Engine, error) {
	return &Live{Base: engine.NewBase(LiveID, "1.0", cfg)}, nil
}

func (l *Live) RunModel(_ context.Context, in models.NormalizedInput) (models.ModelOutput, error) {
	base := priorProbabilities(in)
	intensity := in.MatchFloatOr("live_intensity", 1.0)
	factor := util.Clip(intensity*l.ConfigFloat("intensity_gain", 0.05), 0, 0.2)

	probs := models.Probabilities{
		Home: util.Clip01(base.Home + factor),
		Draw: util.Clip01(base.Draw),
		Away: util.Clip01(base.Away - factor),
	}
	conf := l.ConfigFloat("confidence", 0.6)
	return models.ModelOutput{
		Probabilities: &probs,
		Confidence:    &conf,
		Extra:         map[string]float64{"factor": factor},
	}, nil
}
