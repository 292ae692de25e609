// Package engines holds the built-in scoring engines.
package engines

import (
	"context"
	"errors"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/engine"
	"TipFusion/internal/services/features"
	"TipFusion/pkg/util"
)

var ErrNoOdds = errors.New("no usable odds in match_data")

// Market reads the bookmaker's own view: implied probabilities with the margin
// removed. Confidence drops as the overround grows.
type Market struct {
	engine.Base
}

func NewMarket(cfg map[string]any) (engine.Engine, error) {
	return &Market{Base: engine.NewBase(MarketID, "1.0", cfg)}, nil
}

func (m *Market) Prepare(in models.NormalizedInput) (models.NormalizedInput, error) {
	o := in.Odds()
	if o.Home <= 1 || o.Away <= 1 {
		return in, ErrNoOdds
	}
	return in, nil
}

func (m *Market) RunModel(_ context.Context, in models.NormalizedInput) (models.ModelOutput, error) {
	o := in.Odds()
	imp := features.ImpliedProbabilities(o)

	var overround float64
	for _, v := range []float64{o.Home, o.Draw, o.Away} {
		if v > 0 {
			overround += 1 / v
		}
	}
	slope := m.ConfigFloat("margin_penalty", 4)
	conf := util.Clip(1-(overround-1)*slope, 0.2, 0.9)

	return models.ModelOutput{
		Probabilities: &models.Probabilities{Home: imp.Home, Draw: imp.Draw, Away: imp.Away},
		Confidence:    &conf,
		Extra:         map[string]float64{"overround": overround},
	}, nil
}
