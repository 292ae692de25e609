package engines

import (
	"context"
	"errors"
	"math"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/engine"
	"TipFusion/pkg/util"
)

var ErrNoFormData = errors.New("no xg, form or strength data")

var formKeys = []string{"xg_home", "xg_away", "form_home", "form_away", "home_strength", "away_strength"}

// Form blends xG, recent form and team strength through a logistic link.
type Form struct {
	engine.Base
}

func NewForm(cfg map[string]any) (engine.Engine, error) {
	return &Form{Base: engine.NewBase(FormID, "1.0", cfg)}, nil
}

func (f *Form) Prepare(in models.NormalizedInput) (models.NormalizedInput, error) {
	for _, k := range formKeys {
		if _, ok := in.MatchFloat(k); ok {
			return in, nil
		}
	}
	return in, ErrNoFormData
}

func (f *Form) RunModel(_ context.Context, in models.NormalizedInput) (models.ModelOutput, error) {
	present := 0
	get := func(k string) float64 {
		v, ok := in.MatchFloat(k)
		if ok {
			present++
		}
		return v
	}

	xg := get("xg_home") - get("xg_away")
	form := (get("form_home") - get("form_away")) / 100
	strength := (get("home_strength") - get("away_strength")) / 100

	z := f.ConfigFloat("home_advantage", 0.15) +
		xg*f.ConfigFloat("xg_weight", 0.6) +
		form*f.ConfigFloat("form_weight", 0.8) +
		strength*f.ConfigFloat("strength_weight", 1.0)
	pHome := 1 / (1 + math.Exp(-z))

	draw := f.ConfigFloat("draw_base", 0.28) * (1 - math.Abs(pHome-0.5))
	probs := models.Probabilities{
		Home: (1 - draw) * pHome,
		Draw: draw,
		Away: (1 - draw) * (1 - pHome),
	}
	conf := util.Clip01(float64(present) / float64(len(formKeys)) * 0.8)

	return models.ModelOutput{
		Probabilities: &probs,
		Confidence:    &conf,
		Extra:         map[string]float64{"z": z},
	}, nil
}
