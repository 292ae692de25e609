package evaluator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"TipFusion/internal/domain/models"
)

func ptr(v float64) *float64 { return &v }

func fused(h, d, a, conf float64) models.FusedSignal {
	return models.FusedSignal{Probabilities: models.Probabilities{Home: h, Draw: d, Away: a}, Confidence: conf}
}

func TestRiskLevelFor_Boundaries(t *testing.T) {
	assert.Equal(t, models.RiskHigh, RiskLevelFor(0.70))
	assert.Equal(t, models.RiskMedium, RiskLevelFor(0.6999999))
	assert.Equal(t, models.RiskMedium, RiskLevelFor(0.45))
	assert.Equal(t, models.RiskLow, RiskLevelFor(0.449999))
	assert.Equal(t, models.RiskLow, RiskLevelFor(0))
}

func TestEvaluateRisk_ExactBoundaryScores(t *testing.T) {
	noImportance := models.Features{Importance: ptr(0), BankrollRatio: ptr(1)}

	r := EvaluateRisk(fused(0.70, 0.2, 0.1, 0), noImportance)
	assert.Equal(t, 0.70, r.RiskScore)
	assert.Equal(t, models.RiskHigh, r.RiskLevel)

	r = EvaluateRisk(fused(0.45, 0.3, 0.25, 0), noImportance)
	assert.Equal(t, models.RiskMedium, r.RiskLevel)

	r = EvaluateRisk(fused(0.449999, 0.3, 0.25, 0), noImportance)
	assert.Equal(t, models.RiskLow, r.RiskLevel)
}

func TestEvaluateRisk_Formula(t *testing.T) {
	f := models.Features{OddsVelocity: -0.1, OddsAcceleration: 0.04}
	r := EvaluateRisk(fused(0.5, 0.3, 0.2, 0.6), f)

	// (0.5 + 0.09 - 0.07) * 1.05, defaults bankroll_ratio 0.05 and importance 1.0
	assert.InDelta(t, 0.52*1.05, r.RiskScore, 1e-12)
	assert.InDelta(t, 0.07, r.Details["volatility_penalty"], 1e-12)
	assert.Equal(t, DefaultBankrollRatio, r.Details["bankroll_ratio"])
	assert.Equal(t, DefaultImportance, r.Details["importance"])
	assert.Equal(t, 0.5, r.Details["base_prob"])
}

func TestEvaluateRisk_LowBankrollDamps(t *testing.T) {
	f := models.Features{BankrollRatio: ptr(0.01), Importance: ptr(0)}
	r := EvaluateRisk(fused(0.6, 0.2, 0.2, 0), f)
	assert.InDelta(t, 0.48, r.RiskScore, 1e-12)
}

func TestEvaluateRisk_AlwaysBounded(t *testing.T) {
	inputs := []struct {
		fs models.FusedSignal
		f  models.Features
	}{
		{fused(1, 1, 1, 1), models.Features{Importance: ptr(50)}},
		{fused(0, 0, 0, 0), models.Features{OddsVelocity: 9, OddsAcceleration: -9}},
		{fused(math.NaN(), 0.2, 0.2, math.Inf(1)), models.Features{OddsVelocity: math.NaN()}},
		{fused(-3, -2, -1, -1), models.Features{Importance: ptr(-100)}},
	}
	for _, in := range inputs {
		r := EvaluateRisk(in.fs, in.f)
		assert.GreaterOrEqual(t, r.RiskScore, 0.0)
		assert.LessOrEqual(t, r.RiskScore, 1.0)
		assert.Equal(t, RiskLevelFor(r.RiskScore), r.RiskLevel)
	}
}
