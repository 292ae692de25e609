// Package liquidity derives market depth, pressure and momentum signals.
package liquidity

import (
	"math"

	"TipFusion/internal/domain/models"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/pkg/util"
)

const (
	volatilityScale = 0.15
	minVolPoints    = 4
	epsilon         = 1e-9
	pressureGain    = 5.0
	depthScale      = 10.0
)

// Analyzer implements domain LiquidityAnalyzer.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

func (Analyzer) Analyze(e models.Event) models.LiquidityReport {
	return Analyze(e.OddsHistory, e.Stakes, e.MarketVolume)
}

// Analyze never fails; missing history, stakes or volume yield neutral values.
func Analyze(history []float64, stakes models.StakeSplit, volume float64) models.LiquidityReport {
	var volatility float64
	if len(history) >= minVolPoints {
		volatility = util.Clip01(util.PopStdDev(util.Diffs(history)) / volatilityScale)
	}

	h, a := math.Max(stakes.Home, 0), math.Max(stakes.Away, 0)
	flow := util.Clip((h-a)/(h+a+epsilon), -1, 1)

	var momentum float64
	if n := len(history); n >= 2 {
		momentum = history[n-1] - history[n-2]
	}
	if math.IsNaN(momentum) || math.IsInf(momentum, 0) {
		momentum = 0
	}

	return models.LiquidityReport{
		VolatilityIndex: volatility,
		MoneyFlowIndex:  flow,
		MarketPressure:  util.Clip01(math.Tanh(math.Abs(momentum) * pressureGain)),
		LiquidityDepth:  util.Clip01(math.Log1p(math.Max(volume, 0)) / depthScale),
		Momentum:        momentum,
	}
}

var _ domsvc.LiquidityAnalyzer = (*Analyzer)(nil)
