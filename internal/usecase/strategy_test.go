package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/engine"
	"TipFusion/internal/services/selector"
)

type fakeChecker map[string]models.Odds

func (f fakeChecker) Offered(_ context.Context, id string) (models.Odds, bool, error) {
	if id == "broken" {
		return models.Odds{}, false, errors.New("scraper down")
	}
	o, ok := f[id]
	return o, ok, nil
}

func withConfident(r *engine.Registry) {
	r.Register("alpha", stub("alpha", stubEngine{probs: alphaProbs, conf: 0.7}))
}

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2024, 5, 1, hour, 0, 0, 0, time.UTC) }
}

func TestRecalibrate(t *testing.T) {
	assert.Equal(t, 1.0, Recalibrate(0.8))
	assert.InDelta(t, 1.06, Recalibrate(1.1), 1e-12)
	assert.InDelta(t, 1.3, Recalibrate(2.0), 1e-12)
}

func TestCleanup(t *testing.T) {
	got := Cleanup([]models.Pick{
		{EventID: "a", Odds: 2, Value: 1.1, Liquid: true},
		{EventID: "a", Odds: 3, Value: 1.5, Liquid: true},
		{EventID: "b", Odds: 2, Value: 1.1, Liquid: false},
		{EventID: "c", Odds: 1.01, Value: 1.1, Liquid: true},
		{EventID: "d", Odds: 2, Value: 1.0, Liquid: true},
		{EventID: "e", Odds: 1.5, Value: 1.01, Liquid: true},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].EventID)
	assert.Equal(t, 2.0, got[0].Odds)
	assert.Equal(t, "e", got[1].EventID)
}

func TestSelectSingles_BestPerSportWeighted(t *testing.T) {
	got := SelectSingles([]models.Pick{
		{EventID: "f1", Sport: "foci", Value: 1.1, Confidence: 0.7, Liquid: true},
		{EventID: "f2", Sport: "foci", Value: 1.2, Confidence: 0.65, Liquid: true},
		{EventID: "k1", Sport: "kosar", Value: 1.3, Confidence: 0.6, Liquid: true},
		{EventID: "x1", Sport: "curling", Value: 1.1, Confidence: 0.9, Liquid: true},
	}, DefaultSportWeights())

	require.Len(t, got, 2)
	assert.Equal(t, "f2", got["foci"].EventID)
	assert.InDelta(t, 1.2*0.65*0.6, got["foci"].Score, 1e-12)
	assert.InDelta(t, 1.1*0.9*0.05, got["curling"].Score, 1e-12)
	assert.NotContains(t, got, "kosar")
}

func TestSelectKombi_ExcludesSinglesAndCaps(t *testing.T) {
	picks := []models.Pick{{EventID: "s", Value: 1.5, Confidence: 0.9, Liquid: true}}
	for i, v := range []float64{1.03, 1.10, 1.05, 1.20, 1.08, 1.15, 1.02} {
		picks = append(picks, models.Pick{EventID: string(rune('a' + i)), Value: v, Confidence: 0.6, Liquid: true})
	}
	got := SelectKombi(picks, map[string]models.Pick{"foci": picks[0]})

	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.EventID
	}
	assert.Equal(t, []string{"d", "f", "b", "e", "c"}, ids)
}

func TestSelectLive_TimeGate(t *testing.T) {
	picks := []models.Pick{
		{EventID: "a", Value: 1.05, Confidence: 0.7, OddsSpike: true},
		{EventID: "b", Value: 1.10, Confidence: 0.7, OddsSpike: true},
		{EventID: "c", Value: 1.20, Confidence: 0.7, OddsSpike: false},
		{EventID: "d", Value: 1.04, Confidence: 0.8, OddsSpike: true},
	}
	assert.Empty(t, SelectLive(picks, at(13)(), defaultLiveHour))

	got := SelectLive(picks, at(14)(), defaultLiveHour)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].EventID)
	assert.Equal(t, "b", got[1].EventID)
}

func TestSingleStake(t *testing.T) {
	assert.Equal(t, 10.0, SingleStake(1000, 0.001))
	assert.Equal(t, 15.0, SingleStake(1000, 0.015))
	assert.Equal(t, 20.0, SingleStake(1000, 0.3))
	assert.Equal(t, 2.47, SingleStake(123.45, 0.02))
}

func TestStrategy_Generate(t *testing.T) {
	orch := newTestOrchestrator(t, withConfident)
	pub := &fakePublisher{}
	s := NewStrategy(orch,
		WithAvailability(fakeChecker{
			"m1": {Home: 2.5, Draw: 3.4, Away: 3.6},
			"m2": {Home: 2.2, Draw: 2.0, Away: 2.1},
		}),
		WithPicksPublisher(pub),
		withStrategyClock(at(10)))

	_, ok := s.Latest()
	assert.False(t, ok)

	dp, err := s.Generate(context.Background(),
		[]models.Event{goodEvent("m1"), goodEvent("m2"), goodEvent("m3"), goodEvent("broken")}, nil)
	require.NoError(t, err)

	require.Contains(t, dp.Singles, "foci")
	single := dp.Singles["foci"]
	assert.Equal(t, "m1", single.EventID)
	assert.Equal(t, 3.6, single.TmxOdds)
	assert.InDelta(t, 2.0, single.FairOdds, 1e-12)
	assert.InDelta(t, 1.3, single.Value, 1e-9)
	assert.Equal(t, 20.0, dp.SingleStakes["foci"])

	require.Len(t, dp.Kombi, 1)
	assert.Equal(t, "m2", dp.Kombi[0].EventID)
	assert.InDelta(t, 1.06, dp.Kombi[0].Value, 1e-9)
	assert.Equal(t, 6.0, dp.KombiStake)
	assert.Empty(t, dp.Live)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Same(t, dp, latest)
	require.Len(t, pub.picks, 1)
}

func TestStrategy_GenerateLive(t *testing.T) {
	sel := selector.New()
	sel.RegisterModel("alpha", models.ModelStats{ROI: 0.1})
	orch := newTestOrchestrator(t, withConfident, WithRouter(sel))

	live := goodEvent("l1")
	live.Live = true
	live.OddsHistory = []float64{2.6, 2.4}

	s := NewStrategy(orch, withStrategyClock(at(15)))
	dp, err := s.Generate(context.Background(), nil, []models.Event{live})
	require.NoError(t, err)

	require.Len(t, dp.Live, 1)
	assert.Equal(t, "l1", dp.Live[0].EventID)
	assert.True(t, dp.Live[0].OddsSpike)
	assert.InDelta(t, 1.12, dp.Live[0].Value, 1e-9)
	assert.Equal(t, 2.0, dp.LiveStakes["l1"])
	assert.Empty(t, dp.Singles)
}

func TestStrategy_PublishFailureKeepsLatest(t *testing.T) {
	orch := newTestOrchestrator(t, withConfident)
	s := NewStrategy(orch, WithPicksPublisher(&fakePublisher{err: errors.New("down")}))

	dp, err := s.Generate(context.Background(), []models.Event{goodEvent("m1")}, nil)
	require.Error(t, err)
	require.NotNil(t, dp)
	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Same(t, dp, latest)
}
