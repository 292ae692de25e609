package usecase

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
)

func TestRecommendStake_ScenarioA(t *testing.T) {
	m := NewBankrollManager(models.PoolSingle, 100)
	rec := m.RecommendStake(
		models.RiskAssessment{RiskScore: 0.6},
		models.LiquidityReport{VolatilityIndex: 0.1, MarketPressure: 0.05},
		models.FusedSignal{Confidence: 0.5},
	)

	assert.Equal(t, 10.0, rec.Stake)
	assert.Equal(t, models.PoolSingle, rec.Pool)
	assert.InDelta(t, 0.65, rec.Details["kelly_base"], 1e-12)
	assert.Equal(t, 1.0, rec.Details["bankroll_ratio"])
	for _, k := range []string{"bankroll", "volatility", "pressure", "risk_score", "confidence"} {
		assert.Contains(t, rec.Details, k)
	}
}

func TestRecommendStake_MinimumStake(t *testing.T) {
	m := NewBankrollManager(models.PoolSingle, 100)
	rec := m.RecommendStake(models.RiskAssessment{}, models.LiquidityReport{VolatilityIndex: 1}, models.FusedSignal{})
	assert.Equal(t, 0.0, rec.Fraction)
	assert.Equal(t, 0.5, rec.Stake)
}

func TestRecommendStake_DrawdownDampens(t *testing.T) {
	m := NewBankrollManager(models.PoolSingle, 100)
	m.Restore(models.BankrollState{Bankroll: 40, MaxBankroll: 100, MinBankroll: 40})

	rec := m.RecommendStake(models.RiskAssessment{RiskScore: 0.5}, models.LiquidityReport{}, models.FusedSignal{})
	// 0.25 * 0.7 (ratio < 0.5) * 0.4 (drawdown)
	assert.InDelta(t, 0.07, rec.Fraction, 1e-12)
	assert.InDelta(t, 2.8, rec.Stake, 0.011)
	assert.LessOrEqual(t, rec.Stake, 40*rec.Fraction)
}

func TestRecommendStake_AlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		bankroll := 5 + rng.Float64()*5000
		m := NewBankrollManager(models.PoolSingle, bankroll)
		m.Restore(models.BankrollState{Bankroll: bankroll, MaxBankroll: bankroll * (1 + rng.Float64()*2)})

		rec := m.RecommendStake(
			models.RiskAssessment{RiskScore: rng.Float64()},
			models.LiquidityReport{VolatilityIndex: rng.Float64(), MarketPressure: rng.Float64()},
			models.FusedSignal{Confidence: rng.Float64()},
		)
		require.GreaterOrEqual(t, rec.Stake, 0.5)
		require.LessOrEqual(t, rec.Stake, bankroll*0.10)
	}
}

func TestUpdate_WinAndLoss(t *testing.T) {
	m := NewBankrollManager(models.PoolKombi, 100)

	ch := m.Update(true, 10, 2.5)
	assert.Equal(t, 100.0, ch.Before)
	assert.Equal(t, 115.0, ch.After)
	assert.Equal(t, 115.0, m.State().MaxBankroll)

	ch = m.Update(false, 20, 3.0)
	assert.Equal(t, 95.0, ch.After)
	assert.Equal(t, 95.0, m.State().MinBankroll)
	assert.Equal(t, 115.0, m.State().MaxBankroll)
	assert.Equal(t, models.PoolKombi, ch.Pool)
}

func TestUpdate_DeltaMatchesFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m := NewBankrollManager(models.PoolSingle, 1000)
	for i := 0; i < 200; i++ {
		stake := rng.Float64() * 10
		odds := 1 + rng.Float64()*4
		won := rng.Intn(2) == 0

		ch := m.Update(won, stake, odds)
		want := -stake
		if won {
			want = stake * (odds - 1)
		}
		assert.InDelta(t, want, ch.After-ch.Before, 1e-9)
	}
}

func TestDrawdownTriggered_Boundary(t *testing.T) {
	m := NewBankrollManager(models.PoolSingle, 100)
	assert.False(t, m.DrawdownTriggered())

	m.Restore(models.BankrollState{Bankroll: 70.01, MaxBankroll: 100})
	assert.False(t, m.DrawdownTriggered(), "0.2999 drawdown")

	m.Restore(models.BankrollState{Bankroll: 70, MaxBankroll: 100})
	assert.True(t, m.DrawdownTriggered(), "0.30 drawdown")
}

func TestRestore_KeepsConfiguredLimit(t *testing.T) {
	m := NewBankrollManager(models.PoolLive, 200, WithMaxDrawdown(0.2))
	m.Restore(models.BankrollState{Bankroll: 150, MaxBankroll: 180})

	s := m.State()
	assert.Equal(t, 0.2, s.MaxDrawdownLimit)
	assert.Equal(t, 1.0, s.RiskMultiplier)
	assert.Equal(t, 150.0, s.Bankroll)
}

func TestRecommendStake_RiskMultiplier(t *testing.T) {
	risk := models.RiskAssessment{RiskScore: 0.6}
	liq := models.LiquidityReport{VolatilityIndex: 0.1, MarketPressure: 0.05}
	fused := models.FusedSignal{Confidence: 0.5}

	base := NewBankrollManager(models.PoolSingle, 1000).RecommendStake(risk, liq, fused)
	m := NewBankrollManager(models.PoolSingle, 1000, WithRiskMultiplier(0.5))
	half := m.RecommendStake(risk, liq, fused)
	assert.InDelta(t, base.Fraction/2, half.Fraction, 1e-12)

	// a saved state does not override the configured multiplier
	m.Restore(models.BankrollState{Bankroll: 1000, MaxBankroll: 1000, RiskMultiplier: 1, MaxDrawdownLimit: 0.9})
	assert.Equal(t, 0.5, m.State().RiskMultiplier)
	assert.Equal(t, DefaultMaxDrawdown, m.State().MaxDrawdownLimit)
	assert.InDelta(t, half.Fraction, m.RecommendStake(risk, liq, fused).Fraction, 1e-12)
}

func TestUpdate_ConcurrentSerialized(t *testing.T) {
	m := NewBankrollManager(models.PoolSingle, 1000)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Update(true, 1, 2)
		}()
		go func() {
			defer wg.Done()
			_ = m.RecommendStake(models.RiskAssessment{RiskScore: 0.5}, models.LiquidityReport{}, models.FusedSignal{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1100.0, m.State().Bankroll)
	assert.Equal(t, 1100.0, m.State().MaxBankroll)
}

func TestPools(t *testing.T) {
	p := NewPools(1000, 300, 200)
	k, err := p.Get(models.PoolKombi)
	require.NoError(t, err)
	assert.Equal(t, 300.0, k.State().Bankroll)

	_, err = p.Get("parlay")
	assert.Error(t, err)

	assert.Same(t, p.Live(), p.ForEvent(models.Event{Live: true}))
	assert.Same(t, p.Single(), p.ForEvent(models.Event{}))
}
