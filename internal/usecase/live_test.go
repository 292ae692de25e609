package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/engine"
	mid "TipFusion/internal/middleware"
	"TipFusion/internal/services/selector"
	"TipFusion/pkg/metrics"
)

type fakeHub struct {
	mu   sync.Mutex
	msgs []any
}

func (h *fakeHub) Broadcast(_ context.Context, msg any) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
	return 1
}

type fakePublisher struct {
	mu        sync.Mutex
	decisions []*models.Decision
	picks     []*models.DailyPicks
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, d *models.Decision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions = append(p.decisions, d)
	return p.err
}

func (p *fakePublisher) PublishBatch(ctx context.Context, ds []*models.Decision) error {
	for _, d := range ds {
		if err := p.Publish(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakePublisher) PublishPicks(_ context.Context, dp *models.DailyPicks) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.picks = append(p.picks, dp)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func newLiveOrchestrator(t *testing.T) *Orchestrator {
	sel := selector.New()
	sel.RegisterModel("beta", models.ModelStats{ROI: 0.2})
	return newTestOrchestrator(t, func(r *engine.Registry) {
		r.Register("beta", stub("beta", stubEngine{probs: alphaProbs, conf: 0.6}))
	}, WithRouter(sel))
}

func liveUpdate(id string) *models.OddsUpdate {
	tmx := true
	return &models.OddsUpdate{
		EventID:      id,
		Sport:        "foci",
		Odds:         models.Odds{Home: 2.4, Draw: 3.4, Away: 3.6},
		Live:         true,
		TmxAvailable: &tmx,
		Timestamp:    time.Now(),
	}
}

func TestLiveProcessor_DecidesAndBroadcasts(t *testing.T) {
	hub := &fakeHub{}
	pub := &fakePublisher{}
	p := NewLiveProcessor(newLiveOrchestrator(t), NewEventBook(0), hub, pub, nil, metrics.Nop{}, time.Hour, nil)

	require.NoError(t, p.Process(context.Background(), liveUpdate("m1")))
	require.NoError(t, p.Process(context.Background(), liveUpdate("m1")))

	require.Len(t, pub.decisions, 2)
	d := pub.decisions[0]
	assert.Equal(t, models.PoolLive, d.Pool)
	assert.Equal(t, "beta", d.Model)
	require.True(t, d.Admitted)

	require.Len(t, hub.msgs, 2)
	msg := hub.msgs[0].(LiveMessage)
	assert.Equal(t, "live", msg.Type)
	require.Len(t, msg.Tips, 1)
	assert.Equal(t, "m1", msg.Tips[0].EventID)
	assert.NotNil(t, msg.Tips[0].Stake)

	st, ok := p.State("m1")
	require.True(t, ok)
	assert.Equal(t, 0.0, st.Momentum)
	assert.InDelta(t, 0.5, st.Probabilities.Home, 1e-9)

	e, ok := p.Book().Get("m1")
	require.True(t, ok)
	assert.Len(t, e.OddsHistory, 2)
}

func TestLiveProcessor_SinkErrorsStillBroadcast(t *testing.T) {
	hub := &fakeHub{}
	pub := &fakePublisher{err: errors.New("kafka down")}
	p := NewLiveProcessor(newLiveOrchestrator(t), NewEventBook(0), hub, pub, nil, metrics.Nop{}, time.Hour, nil)

	err := p.Process(context.Background(), liveUpdate("m1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka down")
	assert.Len(t, hub.msgs, 1)

	assert.Error(t, p.Process(context.Background(), nil))
}

type fakeStream struct {
	mu         sync.Mutex
	upCh       chan *models.OddsUpdate
	errCh      chan error
	reads      atomic.Int32
	reconnects atomic.Int32
	connected  atomic.Bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{}
}

func (s *fakeStream) Connect(context.Context) error   { s.connected.Store(true); return nil }
func (s *fakeStream) Subscribe(context.Context) error { return nil }
func (s *fakeStream) Reconnect(context.Context) error { s.reconnects.Add(1); return nil }
func (s *fakeStream) Close() error                    { s.connected.Store(false); return nil }
func (s *fakeStream) IsConnected() bool               { return s.connected.Load() }

func (s *fakeStream) Read(context.Context) (<-chan *models.OddsUpdate, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upCh = make(chan *models.OddsUpdate, 8)
	s.errCh = make(chan error, 1)
	s.reads.Add(1)
	return s.upCh, s.errCh
}

func (s *fakeStream) channels() (chan *models.OddsUpdate, chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upCh, s.errCh
}

type recordingProc struct {
	mu   sync.Mutex
	seen []string
	err  error
}

func (r *recordingProc) Process(_ context.Context, u *models.OddsUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, u.EventID)
	return r.err
}

func (r *recordingProc) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestLiveCollector_ForwardsAndReconnects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := newFakeStream()
	proc := &recordingProc{}
	pipe := mid.NewRealtimePipeline(proc, metrics.Nop{}, mid.WithMaxRPS(1000))
	c := NewLiveCollector(stream, nil, metrics.Nop{}, pipe, nil)

	require.NoError(t, c.Start(ctx))
	assert.True(t, c.IsConnected())
	require.Eventually(t, func() bool { return stream.reads.Load() == 1 }, time.Second, 5*time.Millisecond)

	up, errCh := stream.channels()
	up <- &models.OddsUpdate{EventID: "m1"}
	require.Eventually(t, func() bool { return proc.count() == 1 }, time.Second, 5*time.Millisecond)

	errCh <- errors.New("socket closed")
	require.Eventually(t, func() bool { return stream.reads.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), stream.reconnects.Load())

	require.NoError(t, c.Shutdown(ctx))
	assert.False(t, c.IsConnected())
}

func TestKafkaOddsHandler(t *testing.T) {
	proc := &recordingProc{}
	h := NewKafkaOddsHandler("tipfusion.odds", proc, metrics.Nop{})
	assert.Equal(t, "tipfusion.odds", h.Topic())

	require.NoError(t, h.Handle(context.Background(), []byte(`{"match_id":"m1","odds":{"home":1.8},"timestamp":"2024-05-01T12:00:00Z"}`)))
	assert.Equal(t, []string{"m1"}, proc.seen)

	assert.Error(t, h.Handle(context.Background(), []byte(`{`)))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"odds":{}}`)))

	proc.err = errors.New("boom")
	assert.Error(t, h.Handle(context.Background(), []byte(`{"match_id":"m2"}`)))
}
