package usecase

import (
	"fmt"
	"math"
	"sync"
	"time"

	"TipFusion/internal/domain/models"
	"TipFusion/pkg/util"
)

const (
	DefaultInitialBankroll = 100.0
	DefaultMaxDrawdown     = 0.30

	minStake         = 0.5
	maxStakeFraction = 0.10
	ratioEpsilon     = 1e-9
)

// BankrollManager owns one pool's bankroll. Update is the only mutator; all
// reads take the same lock so they see a consistent snapshot.
type BankrollManager struct {
	mu    sync.RWMutex
	pool  models.Pool
	state models.BankrollState
	now   func() time.Time
}

type BankrollOption func(*BankrollManager)

func WithMaxDrawdown(limit float64) BankrollOption {
	return func(m *BankrollManager) {
		if limit > 0 {
			m.state.MaxDrawdownLimit = limit
		}
	}
}

func WithRiskMultiplier(mult float64) BankrollOption {
	return func(m *BankrollManager) {
		if mult > 0 {
			m.state.RiskMultiplier = mult
		}
	}
}

func withClock(now func() time.Time) BankrollOption {
	return func(m *BankrollManager) { m.now = now }
}

func NewBankrollManager(pool models.Pool, initial float64, opts ...BankrollOption) *BankrollManager {
	if initial <= 0 {
		initial = DefaultInitialBankroll
	}
	m := &BankrollManager{
		pool: pool,
		state: models.BankrollState{
			Bankroll:         initial,
			MaxBankroll:      initial,
			MinBankroll:      initial,
			MaxDrawdownLimit: DefaultMaxDrawdown,
			RiskMultiplier:   1.0,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	m.state.UpdatedAt = m.now()
	return m
}

func (m *BankrollManager) Pool() models.Pool { return m.pool }

func (m *BankrollManager) State() models.BankrollState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Restore replaces the state with a persisted one. The configured drawdown
// limit and risk multiplier always win over the stored ones.
func (m *BankrollManager) Restore(s models.BankrollState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.MaxDrawdownLimit = m.state.MaxDrawdownLimit
	s.RiskMultiplier = m.state.RiskMultiplier
	if s.MaxBankroll < s.Bankroll {
		s.MaxBankroll = s.Bankroll
	}
	m.state = s
}

func ratio(s models.BankrollState) float64 {
	return s.Bankroll / math.Max(s.MaxBankroll, ratioEpsilon)
}

func drawdown(s models.BankrollState) bool {
	return 1-ratio(s) >= s.MaxDrawdownLimit
}

// Ratio is bankroll / max_bankroll.
func (m *BankrollManager) Ratio() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ratio(m.state)
}

// DrawdownTriggered reports 1 - bankroll/max_bankroll >= max_drawdown_limit.
func (m *BankrollManager) DrawdownTriggered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return drawdown(m.state)
}

// RecommendStake sizes a half-Kelly stake damped by volatility, pressure,
// bankroll depletion and drawdown. The stake is floored to cents and stays in
// [0.5, 0.10*bankroll] for any bankroll >= 5.
func (m *BankrollManager) RecommendStake(risk models.RiskAssessment, liq models.LiquidityReport, fused models.FusedSignal) models.StakeRecommendation {
	m.mu.RLock()
	s := m.state
	m.mu.RUnlock()

	volatility := liq.VolatilityIndex
	pressure := liq.MarketPressure
	r := ratio(s)

	kelly := util.Clip01(risk.RiskScore + fused.Confidence*0.3 - volatility)

	fraction := kelly * 0.5
	fraction *= 1 - volatility*0.5
	fraction *= 1 - pressure*0.3
	if r < 0.5 {
		fraction *= 0.7
	}
	if drawdown(s) {
		fraction *= 0.4
	}
	fraction *= s.RiskMultiplier

	stake := util.Clip(s.Bankroll*fraction, minStake, s.Bankroll*maxStakeFraction)
	stake = util.FloorMoney(stake)

	return models.StakeRecommendation{
		Pool:     m.pool,
		Stake:    stake,
		Fraction: fraction,
		Details: map[string]float64{
			"bankroll":       s.Bankroll,
			"bankroll_ratio": r,
			"volatility":     volatility,
			"pressure":       pressure,
			"risk_score":     risk.RiskScore,
			"confidence":     fused.Confidence,
			"kelly_base":     kelly,
		},
	}
}

// Update settles one bet: a win adds stake*(odds-1), a loss removes the stake.
func (m *BankrollManager) Update(won bool, stake, odds float64) models.BankrollChange {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.state.Bankroll
	if won {
		m.state.Bankroll += stake * (odds - 1)
	} else {
		m.state.Bankroll -= stake
	}
	if m.state.Bankroll > m.state.MaxBankroll {
		m.state.MaxBankroll = m.state.Bankroll
	}
	if m.state.Bankroll < m.state.MinBankroll {
		m.state.MinBankroll = m.state.Bankroll
	}
	m.state.UpdatedAt = m.now()

	return models.BankrollChange{Pool: m.pool, Before: before, After: m.state.Bankroll, State: m.state}
}

// Pools holds one manager per bankroll pool.
type Pools struct {
	managers map[models.Pool]*BankrollManager
}

func NewPools(single, kombi, live float64, opts ...BankrollOption) *Pools {
	return &Pools{managers: map[models.Pool]*BankrollManager{
		models.PoolSingle: NewBankrollManager(models.PoolSingle, single, opts...),
		models.PoolKombi:  NewBankrollManager(models.PoolKombi, kombi, opts...),
		models.PoolLive:   NewBankrollManager(models.PoolLive, live, opts...),
	}}
}

func (p *Pools) Get(pool models.Pool) (*BankrollManager, error) {
	m, ok := p.managers[pool]
	if !ok {
		return nil, fmt.Errorf("unknown bankroll pool %q", pool)
	}
	return m, nil
}

func (p *Pools) Single() *BankrollManager { return p.managers[models.PoolSingle] }
func (p *Pools) Kombi() *BankrollManager  { return p.managers[models.PoolKombi] }
func (p *Pools) Live() *BankrollManager   { return p.managers[models.PoolLive] }

// ForEvent picks the pool a single decision is staked from.
func (p *Pools) ForEvent(e models.Event) *BankrollManager {
	if e.Live {
		return p.Live()
	}
	return p.Single()
}
