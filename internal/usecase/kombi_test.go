package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
)

func leg(id string, edge, value, risk, odds float64) models.Assessment {
	return models.Assessment{
		Event: models.Event{ID: id, Odds: models.Odds{Home: odds}},
		Edge:  models.EdgeAssessment{EdgeScore: edge, BestPick: models.Home},
		Value: models.ValueAssessment{ValueIndex: value},
		Risk:  models.RiskAssessment{RiskScore: risk, RiskLevel: models.RiskMedium},
	}
}

func legs() []models.Assessment {
	return []models.Assessment{
		leg("a", 0.10, 0.5, 0.5, 1.55),
		leg("b", 0.40, 0.6, 0.5, 2.10),
		leg("c", 0.30, 0.6, 0.5, 1.85),
		leg("d", 0.20, 0.6, 0.5, 2.35),
		leg("e", 0.05, 0.4, 0.5, 1.70),
	}
}

func TestKombiSize(t *testing.T) {
	assert.Equal(t, 4, KombiSize(200))
	assert.Equal(t, 2, KombiSize(30))
	assert.Equal(t, 3, KombiSize(100))
	assert.Equal(t, 3, KombiSize(150))
	assert.Equal(t, 3, KombiSize(50))
}

func TestBuildKombi_LegCountByBankroll(t *testing.T) {
	assert.Equal(t, 4, BuildKombi(legs(), 200).KombiSize)
	assert.Equal(t, 2, BuildKombi(legs(), 30).KombiSize)
	assert.Equal(t, 3, BuildKombi(legs(), 100).KombiSize)
	assert.Equal(t, 2, BuildKombi(legs()[:2], 200).KombiSize)
	assert.Equal(t, 0, BuildKombi(nil, 200).KombiSize)
}

func TestBuildKombi_RanksAndMultipliesExactly(t *testing.T) {
	slip := BuildKombi(legs(), 200)
	require.Len(t, slip.Selections, 4)

	ids := make([]string, 0, 4)
	want := 1.0
	for _, s := range slip.Selections {
		ids = append(ids, s.MatchID)
		want *= s.Odds
		assert.Equal(t, models.Home, s.Pick)
	}
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids)
	assert.Equal(t, want, slip.EstimatedOdds)
	assert.Equal(t, "14.15", slip.Details["display_odds"])
}

func TestBuildKombi_MissingOddsDefaultToOne(t *testing.T) {
	slip := BuildKombi([]models.Assessment{leg("x", 0.3, 0.5, 0.5, 0), leg("y", 0.2, 0.5, 0.5, 2.0)}, 30)
	assert.Equal(t, 1.0, slip.Selections[0].Odds)
	assert.Equal(t, 2.0, slip.EstimatedOdds)
}

func TestKombiBuilder_Generate(t *testing.T) {
	o := newTestOrchestrator(t, withAlpha)
	var events []models.Event
	for i := 0; i < 5; i++ {
		events = append(events, goodEvent(fmt.Sprintf("k%d", i)))
	}
	b := NewKombiBuilder(o)

	slip, stake, err := b.Generate(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 4, slip.KombiSize)
	require.NotNil(t, stake)
	assert.Equal(t, models.PoolKombi, stake.Pool)

	o.Pools().Kombi().Restore(models.BankrollState{Bankroll: 30, MaxBankroll: 300})
	slip, _, err = b.Generate(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 2, slip.KombiSize)
}

func TestKombiBuilder_GenerateCancelled(t *testing.T) {
	o := newTestOrchestrator(t, withAlpha)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewKombiBuilder(o).Generate(ctx, []models.Event{goodEvent("k")})
	assert.ErrorIs(t, err, context.Canceled)
}
