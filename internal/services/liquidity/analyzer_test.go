package liquidity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"TipFusion/internal/domain/models"
)

func TestAnalyze_EmptyEventIsNeutral(t *testing.T) {
	r := NewAnalyzer().Analyze(models.Event{})
	assert.Equal(t, models.LiquidityReport{}, r)
}

func TestAnalyze_VolatilityNeedsFourPoints(t *testing.T) {
	r := Analyze([]float64{2.0, 2.3, 1.9}, models.StakeSplit{}, 0)
	assert.Equal(t, 0.0, r.VolatilityIndex)
	assert.InDelta(t, -0.4, r.Momentum, 1e-12)

	r = Analyze([]float64{2.0, 2.1, 2.0, 2.1}, models.StakeSplit{}, 0)
	// diffs 0.1, -0.1, 0.1 -> population stdev ~0.0943 / 0.15
	assert.InDelta(t, 0.0942809/0.15, r.VolatilityIndex, 1e-5)
}

func TestAnalyze_VolatilityClipped(t *testing.T) {
	r := Analyze([]float64{1.5, 3.0, 1.5, 3.0, 1.5}, models.StakeSplit{}, 0)
	assert.Equal(t, 1.0, r.VolatilityIndex)
}

func TestAnalyze_MoneyFlowAndPressure(t *testing.T) {
	r := Analyze([]float64{2.0, 1.9}, models.StakeSplit{Home: 300, Away: 100}, 0)
	assert.InDelta(t, 0.5, r.MoneyFlowIndex, 1e-9)
	assert.InDelta(t, math.Tanh(0.1*5), r.MarketPressure, 1e-9)
	assert.Greater(t, r.MoneyFlowIndex, -1.0)
	assert.Less(t, r.MoneyFlowIndex, 1.0)
}

func TestAnalyze_Depth(t *testing.T) {
	r := Analyze(nil, models.StakeSplit{}, 1000)
	assert.InDelta(t, math.Log1p(1000)/10, r.LiquidityDepth, 1e-12)

	r = Analyze(nil, models.StakeSplit{}, 1e9)
	assert.Equal(t, 1.0, r.LiquidityDepth)

	r = Analyze(nil, models.StakeSplit{}, -50)
	assert.Equal(t, 0.0, r.LiquidityDepth)
}
