package models

import (
	"fmt"
	"time"
)

// Pool is an independently tracked bankroll.
type Pool string

const (
	PoolSingle Pool = "single"
	PoolKombi  Pool = "kombi"
	PoolLive   Pool = "live"
)

var Pools = []Pool{PoolSingle, PoolKombi, PoolLive}

func ParsePool(s string) (Pool, error) {
	switch Pool(s) {
	case PoolSingle, PoolKombi, PoolLive:
		return Pool(s), nil
	}
	return "", fmt.Errorf("unknown bankroll pool %q", s)
}

type BankrollState struct {
	Bankroll         float64   `json:"bankroll"`
	MaxBankroll      float64   `json:"max_bankroll"`
	MinBankroll      float64   `json:"min_bankroll"`
	MaxDrawdownLimit float64   `json:"max_drawdown_limit"`
	RiskMultiplier   float64   `json:"risk_multiplier"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type StakeRecommendation struct {
	Pool     Pool               `json:"pool"`
	Stake    float64            `json:"stake"`
	Fraction float64            `json:"fraction"`
	Details  map[string]float64 `json:"details"`
}

// BankrollChange is the before/after of one settlement.
type BankrollChange struct {
	Pool   Pool          `json:"pool"`
	Before float64       `json:"before"`
	After  float64       `json:"after"`
	State  BankrollState `json:"state"`
}

// Settlement is a resolved bet applied to a pool.
type Settlement struct {
	Pool       Pool    `json:"pool"`
	DecisionID string  `json:"decision_id,omitempty"`
	EventID    string  `json:"event_id"`
	Sport      string  `json:"sport,omitempty"`
	Won        bool    `json:"won"`
	Stake      float64 `json:"stake"`
	Odds       float64 `json:"odds"`
	Value      float64 `json:"value,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// BankrollRecord is one line of the settlement history.
type BankrollRecord struct {
	Time       time.Time `json:"time"`
	Pool       Pool      `json:"pool"`
	Before     float64   `json:"before"`
	After      float64   `json:"after"`
	Stake      float64   `json:"stake"`
	Odds       float64   `json:"odds"`
	Won        bool      `json:"won"`
	EventID    string    `json:"event_id"`
	Sport      string    `json:"sport"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}
