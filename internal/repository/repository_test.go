package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
	"TipFusion/pkg/cache"
)

func TestSQLiteBankrollStore_SaveLoadUpsert(t *testing.T) {
	s, err := NewSQLiteBankrollStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, ok, err := s.Load(ctx, models.PoolSingle)
	require.NoError(t, err)
	assert.False(t, ok)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := models.BankrollState{Bankroll: 115, MaxBankroll: 120, MinBankroll: 90, MaxDrawdownLimit: 0.3, RiskMultiplier: 1, UpdatedAt: ts}
	require.NoError(t, s.Save(ctx, models.PoolSingle, st))

	st.Bankroll = 95
	require.NoError(t, s.Save(ctx, models.PoolSingle, st))

	got, ok, err := s.Load(ctx, models.PoolSingle)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 95.0, got.Bankroll)
	assert.Equal(t, 120.0, got.MaxBankroll)
	assert.Equal(t, 0.3, got.MaxDrawdownLimit)
	assert.True(t, ts.Equal(got.UpdatedAt))

	_, ok, err = s.Load(ctx, models.PoolKombi)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModelStatsCache_KeepsOrder(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewModelStatsCache(mc)
	ctx := context.Background()

	p := 0.7
	require.NoError(t, store.Save(ctx, "poisson", models.ModelStats{ROI: 0.1}))
	require.NoError(t, store.Save(ctx, "elo", models.ModelStats{ROI: 0.2, Precision: &p}))
	require.NoError(t, store.Save(ctx, "poisson", models.ModelStats{ROI: 0.3, Version: "2"}))

	names, stats, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"poisson", "elo"}, names)
	assert.Equal(t, 0.3, stats["poisson"].ROI)
	assert.Equal(t, "2", stats["poisson"].Version)
	require.NotNil(t, stats["elo"].Precision)
	assert.Equal(t, 0.7, *stats["elo"].Precision)

	require.NoError(t, mc.Delete(ctx, cache.GenerateKey(modelStatsPrefix, "elo")))
	names, _, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"poisson"}, names)
}

func TestDecisionRow(t *testing.T) {
	d := &models.Decision{
		ID:          "d1",
		EventID:     "m1",
		Sport:       "foci",
		Pool:        models.PoolSingle,
		Admitted:    true,
		EngineCount: 3,
		Edge:        models.EdgeAssessment{BestPick: models.Home, EdgeScore: 0.2},
		Risk:        models.RiskAssessment{RiskScore: 0.55},
		Stake:       &models.StakeRecommendation{Stake: 12.5},
		CreatedAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	row, err := decisionRow(d)
	require.NoError(t, err)
	require.Len(t, row, 15)
	assert.Equal(t, uint8(1), row[6])
	assert.Equal(t, uint16(3), row[7])
	assert.Equal(t, "home", row[8])
	assert.Equal(t, 12.5, row[12])

	var back models.Decision
	require.NoError(t, json.Unmarshal([]byte(row[13].(string)), &back))
	assert.Equal(t, "m1", back.EventID)
}
