package models

import "time"

type ModelStats struct {
	ROI       float64  `json:"roi"`
	Precision *float64 `json:"precision,omitempty"`
	Drift     float64  `json:"drift"`
	Version   string   `json:"version"`
}

// MetaDecision carries meta-layer boost/penalty signals per model.
type MetaDecision struct {
	ModelBoost   map[string]float64 `json:"model_boost,omitempty"`
	ModelPenalty map[string]float64 `json:"model_penalty,omitempty"`
}

// TipCandidate is an event reference with the numbers the tip selector filters on.
type TipCandidate struct {
	EventID      string  `json:"event_id"`
	Sport        string  `json:"sport"`
	Market       string  `json:"market"`
	Pick         Outcome `json:"pick"`
	Odds         float64 `json:"odds"`
	Probability  float64 `json:"probability"`
	Value        float64 `json:"value"`
	Risk         float64 `json:"risk"`
	Reliability  float64 `json:"reliability"`
	TmxAvailable bool    `json:"tmx_available"`
	Live         bool    `json:"live"`
	Score        float64 `json:"score"`
}

type TipSelection struct {
	Singles []TipCandidate `json:"singles"`
	Live    []TipCandidate `json:"live"`
	Props   []TipCandidate `json:"props"`
}

type KombiSelection struct {
	MatchID    string    `json:"match_id"`
	Pick       Outcome   `json:"pick"`
	Odds       float64   `json:"odds"`
	EdgeScore  float64   `json:"edge_score"`
	ValueIndex float64   `json:"value_index"`
	RiskLevel  RiskLevel `json:"risk_level"`
}

type KombiSlip struct {
	KombiSize     int              `json:"kombi_size"`
	Selections    []KombiSelection `json:"selections"`
	EstimatedOdds float64          `json:"estimated_odds"`
	Details       map[string]any   `json:"details,omitempty"`
}

// Decision is the bundle returned for one event.
// Note: no transport (json/http) concerns beyond tags.
type Decision struct {
	ID          string                  `json:"id"`
	EventID     string                  `json:"event_id"`
	Sport       string                  `json:"sport"`
	League      string                  `json:"league"`
	Input       NormalizedInput         `json:"input"`
	EngineCount int                     `json:"engine_count"`
	Engines     map[string]EngineResult `json:"engines"`
	Fused       FusedSignal             `json:"fused"`
	Liquidity   LiquidityReport         `json:"liquidity"`
	Risk        RiskAssessment          `json:"risk"`
	Value       ValueAssessment         `json:"value"`
	Edge        EdgeAssessment          `json:"edge"`
	Model       string                  `json:"model"`
	Tip         TipCandidate            `json:"tip"`
	Admitted    bool                    `json:"admitted"`
	Pool        Pool                    `json:"pool"`
	Stake       *StakeRecommendation    `json:"stake,omitempty"`
	Errors      map[string]string       `json:"errors,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

type BatchResult struct {
	Decisions  []*Decision          `json:"decisions"`
	Selection  TipSelection         `json:"selection"`
	Kombi      *KombiSlip           `json:"kombi,omitempty"`
	KombiStake *StakeRecommendation `json:"kombi_stake,omitempty"`
}

// RunOutput is the plain orchestrator result: input, per-engine results and count.
type RunOutput struct {
	Input       NormalizedInput         `json:"input"`
	Results     map[string]EngineResult `json:"results"`
	EngineCount int                     `json:"engine_count"`
}

// Pick is a strategy-level view of a decision used by the daily planner.
type Pick struct {
	EventID    string  `json:"event_id"`
	Sport      string  `json:"sport"`
	Pick       Outcome `json:"pick"`
	Odds       float64 `json:"odds"`
	FairOdds   float64 `json:"fair_odds"`
	TmxOdds    float64 `json:"tmx_odds,omitempty"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Kelly      float64 `json:"kelly"`
	Liquid     bool    `json:"liquid"`
	OddsSpike  bool    `json:"odds_spike"`
	Score      float64 `json:"score"`
}

type DailyPicks struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Singles      map[string]Pick    `json:"singles"`
	SingleStakes map[string]float64 `json:"single_stakes"`
	Kombi        []Pick             `json:"kombi"`
	KombiStake   float64            `json:"kombi_stake"`
	Live         []Pick             `json:"live"`
	LiveStakes   map[string]float64 `json:"live_stakes"`
}
