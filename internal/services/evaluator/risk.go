// Package evaluator holds the risk, value and edge assessments computed from a fused signal.
package evaluator

import (
	"math"

	"TipFusion/internal/domain/models"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/pkg/util"
)

const (
	DefaultBankrollRatio = 0.05
	DefaultImportance    = 1.0

	riskHighThreshold   = 0.70
	riskMediumThreshold = 0.45
)

// Risk implements domain RiskEvaluator.
type Risk struct{}

func (Risk) EvaluateRisk(fused models.FusedSignal, f models.Features) models.RiskAssessment {
	return EvaluateRisk(fused, f)
}

// EvaluateRisk never fails; the score is always within [0,1].
func EvaluateRisk(fused models.FusedSignal, f models.Features) models.RiskAssessment {
	bankrollRatio := floatOr(f.BankrollRatio, DefaultBankrollRatio)
	importance := floatOr(f.Importance, DefaultImportance)
	conf := finite(fused.Confidence)

	baseProb := finite(fused.Max())
	score := baseProb + conf*0.15

	penalty := (math.Abs(finite(f.OddsVelocity)) + math.Abs(finite(f.OddsAcceleration))) * 0.5
	score -= penalty

	if bankrollRatio < 0.02 {
		score *= 0.8
	}
	score *= 1 + importance*0.05
	score = util.Clip01(score)

	return models.RiskAssessment{
		RiskScore: score,
		RiskLevel: RiskLevelFor(score),
		Details: map[string]float64{
			"base_prob":          baseProb,
			"confidence":         conf,
			"volatility_penalty": penalty,
			"bankroll_ratio":     bankrollRatio,
			"importance":         importance,
		},
	}
}

// RiskLevelFor buckets a risk score: >= 0.70 high, >= 0.45 medium, else low.
func RiskLevelFor(score float64) models.RiskLevel {
	switch {
	case score >= riskHighThreshold:
		return models.RiskHigh
	case score >= riskMediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func floatOr(p *float64, def float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return def
	}
	return *p
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

var _ domsvc.RiskEvaluator = Risk{}
