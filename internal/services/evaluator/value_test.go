package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TipFusion/internal/domain/models"
)

func TestApplyMomentum_ShorteningBoostsValue(t *testing.T) {
	assert.InDelta(t, 0.44, ApplyMomentum(0.40, -0.05), 1e-12)
	assert.InDelta(t, 0.36, ApplyMomentum(0.40, 0.05), 1e-12)
	assert.Equal(t, 0.40, ApplyMomentum(0.40, 0.02))
	assert.Equal(t, 1.0, ApplyMomentum(0.95, -0.3))
}

func TestEvaluateValue_MomentumBeforeClip(t *testing.T) {
	f := models.Features{Implied: models.Odds{Home: 0.4, Draw: 0.3, Away: 0.3}}
	v := EvaluateValue(fused(0.3, 0.35, 0.35, 0), f, models.LiquidityReport{Momentum: -0.05})

	// home: -0.1 + 0.5 = 0.40 -> 0.44
	assert.InDelta(t, 0.44, v.ValueHome, 1e-12)
	assert.InDelta(t, -0.1, v.DeltaHome, 1e-12)
	assert.InDelta(t, 0.25, v.DriftScore, 1e-12)
}

func TestEvaluateValue_BestMarketIsArgmax(t *testing.T) {
	cases := []struct {
		fs   models.FusedSignal
		want models.Outcome
	}{
		{fused(0.6, 0.2, 0.2, 0.5), models.Home},
		{fused(0.2, 0.6, 0.2, 0.5), models.Draw},
		{fused(0.2, 0.2, 0.6, 0.5), models.Away},
		{fused(0.3, 0.3, 0.3, 0.5), models.Home},
		{fused(0.2, 0.4, 0.4, 0.5), models.Draw},
	}
	f := models.Features{Implied: models.Odds{Home: 0.3, Draw: 0.3, Away: 0.3}}
	for _, c := range cases {
		v := EvaluateValue(c.fs, f, models.LiquidityReport{VolatilityIndex: 0.2})
		assert.Equal(t, c.want, v.BestMarket)

		vals := map[models.Outcome]float64{models.Home: v.ValueHome, models.Draw: v.ValueDraw, models.Away: v.ValueAway}
		assert.Equal(t, vals[v.BestMarket], v.ValueIndex)
		for _, x := range vals {
			assert.LessOrEqual(t, x, v.ValueIndex)
			assert.GreaterOrEqual(t, x, 0.0)
			assert.LessOrEqual(t, x, 1.0)
		}
	}
}

func TestEvaluateValue_DriftClipped(t *testing.T) {
	v := Value{}.EvaluateValue(fused(0.5, 0.3, 0.2, 0), models.Features{}, models.LiquidityReport{Momentum: 0.4})
	assert.Equal(t, 1.0, v.DriftScore)
}
