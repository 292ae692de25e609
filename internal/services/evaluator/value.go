package evaluator

import (
	"math"

	"TipFusion/internal/domain/models"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/pkg/util"
)

const (
	momentumThreshold = 0.02
	shorteningBoost   = 1.1
	driftingDamp      = 0.9
)

// Value implements domain ValueEvaluator.
type Value struct{}

func (Value) EvaluateValue(fused models.FusedSignal, f models.Features, liq models.LiquidityReport) models.ValueAssessment {
	return EvaluateValue(fused, f, liq)
}

// EvaluateValue compares fused probabilities with the features' implied
// probabilities. Odds shortening (momentum < -0.02) strengthens value by 10%,
// drifting (momentum > 0.02) weakens it by 10%, before the final clip.
func EvaluateValue(fused models.FusedSignal, f models.Features, liq models.LiquidityReport) models.ValueAssessment {
	conf := finite(fused.Confidence)
	vol := finite(liq.VolatilityIndex)
	momentum := finite(liq.Momentum)

	delta := [3]float64{
		finite(fused.Home) - finite(f.Implied.Home),
		finite(fused.Draw) - finite(f.Implied.Draw),
		finite(fused.Away) - finite(f.Implied.Away),
	}

	var values [3]float64
	for i, d := range delta {
		values[i] = ApplyMomentum(util.Clip01(d+conf*0.15-vol*0.1+0.5), momentum)
	}

	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}

	return models.ValueAssessment{
		ValueHome:  values[0],
		ValueDraw:  values[1],
		ValueAway:  values[2],
		ValueIndex: values[best],
		DeltaHome:  delta[0],
		DeltaDraw:  delta[1],
		DeltaAway:  delta[2],
		DriftScore: util.Clip01(math.Abs(momentum) * 5),
		BestMarket: models.Outcomes[best],
	}
}

// ApplyMomentum applies the odds-movement correction to one value and clips it.
func ApplyMomentum(v, momentum float64) float64 {
	switch {
	case momentum < -momentumThreshold:
		v *= shorteningBoost
	case momentum > momentumThreshold:
		v *= driftingDamp
	}
	return util.Clip01(v)
}

var _ domsvc.ValueEvaluator = Value{}
