package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/services/selector"
	"TipFusion/pkg/metrics"
)

type fakeDecisionStore struct {
	mu     sync.Mutex
	stored []*models.Decision
	err    error
}

func (s *fakeDecisionStore) Init(context.Context) error { return nil }

func (s *fakeDecisionStore) Store(ctx context.Context, d *models.Decision) error {
	return s.StoreBatch(ctx, []*models.Decision{d})
}

func (s *fakeDecisionStore) StoreBatch(_ context.Context, ds []*models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, ds...)
	return nil
}

func (s *fakeDecisionStore) Query(_ context.Context, eventID string, _, _ time.Time, limit int) ([]*models.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Decision
	for i := len(s.stored) - 1; i >= 0 && len(out) < limit; i-- {
		if eventID == "" || s.stored[i].EventID == eventID {
			out = append(out, s.stored[i])
		}
	}
	return out, nil
}

func (s *fakeDecisionStore) Health(context.Context) error { return nil }
func (s *fakeDecisionStore) Close() error                 { return nil }

func prematch(id string) models.Event {
	return models.Event{ID: id, Sport: "foci", League: "NB1", Odds: models.Odds{Home: 2.4, Draw: 3.4, Away: 3.6}, TmxAvailable: true}
}

func TestDecisionService_SinksEveryDecision(t *testing.T) {
	store := &fakeDecisionStore{}
	pub := &fakePublisher{}
	svc := NewDecisionService(newTestOrchestrator(t, withConfident), store, pub, metrics.Nop{}, nil)
	ctx := context.Background()

	d := svc.Decide(ctx, prematch("m1"), nil)
	require.NotNil(t, d)
	assert.Equal(t, "m1", d.EventID)

	res := svc.DecideBatch(ctx, []models.Event{prematch("m2"), prematch("m3")}, nil)
	require.Len(t, res.Decisions, 2)

	assert.Len(t, store.stored, 3)
	assert.Len(t, pub.decisions, 3)

	got, err := svc.Query(ctx, "m2", time.Time{}, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, res.Decisions[0].ID, got[0].ID)
}

func TestDecisionService_SinkFailuresDoNotFailDecision(t *testing.T) {
	store := &fakeDecisionStore{err: errors.New("clickhouse down")}
	pub := &fakePublisher{err: errors.New("kafka down")}
	svc := NewDecisionService(newTestOrchestrator(t, withConfident), store, pub, metrics.Nop{}, nil)

	d := svc.Decide(context.Background(), prematch("m1"), nil)
	require.NotNil(t, d)
	assert.Empty(t, store.stored)
}

func TestDecisionService_QueryWithoutStore(t *testing.T) {
	svc := NewDecisionService(newTestOrchestrator(t, withConfident), nil, nil, metrics.Nop{}, nil)
	_, err := svc.Query(context.Background(), "", time.Time{}, time.Time{}, 10)
	assert.ErrorIs(t, err, ErrNoDecisionStore)
}

type memModelStats struct {
	names []string
	stats map[string]models.ModelStats
	err   error
}

func (m *memModelStats) Save(_ context.Context, name string, st models.ModelStats) error {
	if m.err != nil {
		return m.err
	}
	if m.stats == nil {
		m.stats = map[string]models.ModelStats{}
	}
	if _, ok := m.stats[name]; !ok {
		m.names = append(m.names, name)
	}
	m.stats[name] = st
	return nil
}

func (m *memModelStats) LoadAll(context.Context) ([]string, map[string]models.ModelStats, error) {
	return m.names, m.stats, m.err
}

func TestModelCatalog_RegisterAndRestore(t *testing.T) {
	store := &memModelStats{}
	sel := selector.New()
	cat := NewModelCatalog(sel, store, nil)
	ctx := context.Background()

	info, err := cat.Register(ctx, models.RegisterModelRequest{Name: "elo", ROI: 0.2, Version: "1.0", Leagues: []string{"NB1"}})
	require.NoError(t, err)
	assert.Equal(t, "elo", info.Name)
	assert.InDelta(t, 0.2*0.5+0.5*0.4, info.Score, 1e-12)

	_, err = cat.Register(ctx, models.RegisterModelRequest{Name: "elo", ROI: 0.3, Leagues: []string{"NB1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"elo"}, sel.Preferences("NB1"))

	fresh := selector.New()
	require.NoError(t, NewModelCatalog(fresh, store, nil).Restore(ctx))
	list := NewModelCatalog(fresh, nil, nil).List()
	require.Len(t, list, 1)
	assert.Equal(t, 0.3, list[0].Stats.ROI)
}

func TestModelCatalog_StoreFailureSkipsSelector(t *testing.T) {
	sel := selector.New()
	cat := NewModelCatalog(sel, &memModelStats{err: errors.New("redis down")}, nil)
	_, err := cat.Register(context.Background(), models.RegisterModelRequest{Name: "elo"})
	require.Error(t, err)
	assert.Empty(t, cat.List())
}
