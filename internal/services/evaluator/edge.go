package evaluator

import (
	"TipFusion/internal/domain/models"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/pkg/util"
)

// unpriced is the edge of a leg without usable odds.
const unpriced = -1.0

// Edge implements domain EdgeEvaluator.
type Edge struct{}

func (Edge) EvaluateEdge(fused models.FusedSignal, f models.Features, liq models.LiquidityReport) models.EdgeAssessment {
	return EvaluateEdge(fused, f, liq)
}

// EvaluateEdge prices each leg as p*odds-1 and picks the best one (ties go
// home, draw, away). The score is the best edge damped by market volatility;
// Kelly is the full-Kelly fraction of the best leg.
func EvaluateEdge(fused models.FusedSignal, f models.Features, liq models.LiquidityReport) models.EdgeAssessment {
	var edges [3]float64
	for i, o := range models.Outcomes {
		edges[i] = legEdge(finite(fused.Get(o)), finite(f.Odds.Get(o)))
	}

	best := 0
	for i := 1; i < len(edges); i++ {
		if edges[i] > edges[best] {
			best = i
		}
	}
	pick := models.Outcomes[best]
	odds := f.Odds.Get(pick)

	var kelly float64
	if odds > 1 {
		kelly = util.Clip01(edges[best] / (odds - 1))
	}

	return models.EdgeAssessment{
		EdgeHome:  edges[0],
		EdgeDraw:  edges[1],
		EdgeAway:  edges[2],
		EdgeScore: util.Clip01(edges[best] * (1 - 0.5*util.Clip01(liq.VolatilityIndex))),
		BestPick:  pick,
		BestOdds:  odds,
		Kelly:     kelly,
	}
}

func legEdge(p, odds float64) float64 {
	if odds <= 1 {
		return unpriced
	}
	return p*odds - 1
}

var _ domsvc.EdgeEvaluator = Edge{}
