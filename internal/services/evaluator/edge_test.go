package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TipFusion/internal/domain/models"
)

func TestEvaluateEdge_PicksBestPricedLeg(t *testing.T) {
	f := models.Features{Odds: models.Odds{Home: 2.0, Draw: 3.5, Away: 4.0}}
	e := EvaluateEdge(fused(0.5, 0.25, 0.3, 0.7), f, models.LiquidityReport{})

	assert.InDelta(t, 0.0, e.EdgeHome, 1e-12)
	assert.InDelta(t, -0.125, e.EdgeDraw, 1e-12)
	assert.InDelta(t, 0.2, e.EdgeAway, 1e-12)
	assert.Equal(t, models.Away, e.BestPick)
	assert.Equal(t, 4.0, e.BestOdds)
	assert.InDelta(t, 0.2, e.EdgeScore, 1e-12)
	assert.InDelta(t, 0.2/3, e.Kelly, 1e-12)
}

func TestEvaluateEdge_VolatilityDampsScore(t *testing.T) {
	f := models.Features{Odds: models.Odds{Home: 3.0, Draw: 3.0, Away: 3.0}}
	e := EvaluateEdge(fused(0.5, 0.3, 0.2, 0.7), f, models.LiquidityReport{VolatilityIndex: 1})
	assert.InDelta(t, 0.25, e.EdgeScore, 1e-12)
	assert.Equal(t, models.Home, e.BestPick)
}

func TestEvaluateEdge_NoOdds(t *testing.T) {
	e := Edge{}.EvaluateEdge(fused(0.5, 0.3, 0.2, 0.7), models.Features{}, models.LiquidityReport{})
	assert.Equal(t, models.Home, e.BestPick)
	assert.Equal(t, 0.0, e.EdgeScore)
	assert.Equal(t, 0.0, e.Kelly)
	assert.Equal(t, unpriced, e.EdgeHome)
}
