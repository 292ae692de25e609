package models

import "time"

// Outcome is one leg of a 1X2 market.
type Outcome string

const (
	Home Outcome = "home"
	Draw Outcome = "draw"
	Away Outcome = "away"
)

// Outcomes lists outcomes in tie-break order.
var Outcomes = [3]Outcome{Home, Draw, Away}

type Probabilities struct {
	Home float64 `json:"prob_home"`
	Draw float64 `json:"prob_draw"`
	Away float64 `json:"prob_away"`
}

func (p Probabilities) Get(o Outcome) float64 {
	switch o {
	case Home:
		return p.Home
	case Draw:
		return p.Draw
	case Away:
		return p.Away
	}
	return 0
}

func (p Probabilities) Max() float64 {
	m := p.Home
	if p.Draw > m {
		m = p.Draw
	}
	if p.Away > m {
		m = p.Away
	}
	return m
}

func (p Probabilities) Sum() float64 { return p.Home + p.Draw + p.Away }

// ModelOutput is what an engine's model step produces before postprocessing.
// A nil Confidence means the model did not report one.
type ModelOutput struct {
	Probabilities *Probabilities     `json:"probabilities,omitempty"`
	Confidence    *float64           `json:"confidence,omitempty"`
	Extra         map[string]float64 `json:"extra,omitempty"`
}

// EngineOutput is the standardized result of one engine.
type EngineOutput struct {
	Engine        string         `json:"engine"`
	Probabilities *Probabilities `json:"probabilities,omitempty"`
	Confidence    float64        `json:"confidence"`
	Raw           ModelOutput    `json:"raw_output"`
}

type EngineMeta struct {
	Engine  string        `json:"engine"`
	Version string        `json:"version"`
	Elapsed time.Duration `json:"elapsed"`
}

// EngineResult wraps one engine invocation. Exactly one of Data and Error is set.
type EngineResult struct {
	Success bool          `json:"success"`
	Data    *EngineOutput `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
	Meta    EngineMeta    `json:"meta"`
}

// FusedSignal is the combined estimate over all successful engines.
type FusedSignal struct {
	Probabilities
	Confidence float64  `json:"confidence"`
	Engines    []string `json:"engines,omitempty"`
}

type LiquidityReport struct {
	VolatilityIndex float64 `json:"volatility_index"`
	MoneyFlowIndex  float64 `json:"money_flow_index"`
	MarketPressure  float64 `json:"market_pressure"`
	LiquidityDepth  float64 `json:"liquidity_depth"`
	Momentum        float64 `json:"momentum"`
}

// Features is the per-event feature set consumed by evaluators.
// Nil pointers mean "not supplied" and fall back to evaluator defaults.
type Features struct {
	Odds             Odds     `json:"odds"`
	Implied          Odds     `json:"implied"`
	LogitHome        float64  `json:"logit_home"`
	LogitDraw        float64  `json:"logit_draw"`
	LogitAway        float64  `json:"logit_away"`
	OddsVelocity     float64  `json:"odds_velocity"`
	OddsAcceleration float64  `json:"odds_acceleration"`
	BankrollRatio    *float64 `json:"bankroll_ratio,omitempty"`
	Importance       *float64 `json:"importance,omitempty"`
	XGHome           float64  `json:"xg_home"`
	XGAway           float64  `json:"xg_away"`
	FormHome         float64  `json:"form_home"`
	FormAway         float64  `json:"form_away"`
	HomeStrength     float64  `json:"home_strength"`
	AwayStrength     float64  `json:"away_strength"`
	Over25Prob       float64  `json:"over25_prob"`
	Under25Prob      float64  `json:"under25_prob"`
	LiveIntensity    float64  `json:"live_intensity"`
	Live             bool     `json:"live"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type RiskAssessment struct {
	RiskScore float64            `json:"risk_score"`
	RiskLevel RiskLevel          `json:"risk_level"`
	Details   map[string]float64 `json:"details"`
}

type ValueAssessment struct {
	ValueHome  float64 `json:"value_home"`
	ValueDraw  float64 `json:"value_draw"`
	ValueAway  float64 `json:"value_away"`
	ValueIndex float64 `json:"value_index"`
	DeltaHome  float64 `json:"delta_home"`
	DeltaDraw  float64 `json:"delta_draw"`
	DeltaAway  float64 `json:"delta_away"`
	DriftScore float64 `json:"drift_score"`
	BestMarket Outcome `json:"best_market"`
}

type EdgeAssessment struct {
	EdgeHome  float64 `json:"edge_home"`
	EdgeDraw  float64 `json:"edge_draw"`
	EdgeAway  float64 `json:"edge_away"`
	EdgeScore float64 `json:"edge_score"`
	BestPick  Outcome `json:"best_pick"`
	BestOdds  float64 `json:"best_odds"`
	Kelly     float64 `json:"kelly"`
}

// Assessment is everything computed for one event before selection and staking.
type Assessment struct {
	Event       Event                   `json:"-"`
	Input       NormalizedInput         `json:"input"`
	Features    Features                `json:"features"`
	Results     map[string]EngineResult `json:"results"`
	EngineCount int                     `json:"engine_count"`
	Fused       FusedSignal             `json:"fused"`
	Liquidity   LiquidityReport         `json:"liquidity"`
	Risk        RiskAssessment          `json:"risk"`
	Value       ValueAssessment         `json:"value"`
	Edge        EdgeAssessment          `json:"edge"`
	Errors      map[string]string       `json:"errors,omitempty"`
}
