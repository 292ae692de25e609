package service

import (
	"context"

	"TipFusion/internal/domain/models"
)

// LiquidityAnalyzer derives market depth and pressure signals from an event.
type LiquidityAnalyzer interface {
	Analyze(e models.Event) models.LiquidityReport
}

// RiskEvaluator scores how risky backing the fused favourite is.
type RiskEvaluator interface {
	EvaluateRisk(fused models.FusedSignal, f models.Features) models.RiskAssessment
}

// ValueEvaluator compares fused probabilities with market-implied ones.
type ValueEvaluator interface {
	EvaluateValue(fused models.FusedSignal, f models.Features, liq models.LiquidityReport) models.ValueAssessment
}

// EdgeEvaluator prices the expected-value advantage against offered odds.
type EdgeEvaluator interface {
	EvaluateEdge(fused models.FusedSignal, f models.Features, liq models.LiquidityReport) models.EdgeAssessment
}

// ModelRouter picks the authoritative model for an event.
type ModelRouter interface {
	Route(e models.Event, meta *models.MetaDecision) string
}

// Broadcaster fans a message out to connected live clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg any) int
}

// AvailabilityChecker reports whether the bookmaker offers an event and at which odds.
type AvailabilityChecker interface {
	Offered(ctx context.Context, eventID string) (models.Odds, bool, error)
}
