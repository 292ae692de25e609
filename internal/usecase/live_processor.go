package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TipFusion/internal/domain/models"
	drepo "TipFusion/internal/domain/repository"
	domsvc "TipFusion/internal/domain/service"
	"TipFusion/internal/service/cache"
	svcmetrics "TipFusion/internal/service/metrics"
	"TipFusion/pkg/logger"
)

// LiveState is what the live path remembers about a match between updates.
type LiveState struct {
	Probabilities models.Probabilities `json:"probabilities"`
	Momentum      float64              `json:"momentum"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type LiveTip struct {
	models.TipCandidate
	DecisionID string                      `json:"decision_id"`
	Stake      *models.StakeRecommendation `json:"stake,omitempty"`
	Momentum   float64                     `json:"momentum"`
}

// LiveMessage is the frame pushed to live WebSocket clients.
type LiveMessage struct {
	Type string    `json:"type"`
	Tips []LiveTip `json:"tips"`
}

// LiveProcessor turns odds updates into live decisions and routes them to
// the hub, the publisher and the store.
type LiveProcessor struct {
	orch    *Orchestrator
	book    *EventBook
	states  *cache.TTLCache[LiveState]
	hub     domsvc.Broadcaster
	pub     drepo.DecisionPublisher
	store   drepo.DecisionStore
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewLiveProcessor wires the live path. hub, pub and store may be nil.
func NewLiveProcessor(
	orch *Orchestrator,
	book *EventBook,
	hub domsvc.Broadcaster,
	pub drepo.DecisionPublisher,
	store drepo.DecisionStore,
	metrics drepo.Metrics,
	stateTTL time.Duration,
	log *logger.Logger,
) *LiveProcessor {
	if log == nil {
		log = logger.Nop()
	}
	return &LiveProcessor{
		orch:    orch,
		book:    book,
		states:  cache.NewTTLCache[LiveState](stateTTL),
		hub:     hub,
		pub:     pub,
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// Process decides one live update. The decision is always produced; sink
// failures are returned joined.
func (p *LiveProcessor) Process(ctx context.Context, u *models.OddsUpdate) error {
	if u == nil {
		return fmt.Errorf("odds update is nil")
	}
	start := time.Now()

	e := p.book.Apply(u)
	e.Live = true
	d := p.orch.Decide(ctx, e, nil)

	momentum := p.track(e.ID, d.Fused.Probabilities, start)

	var errs []error
	if p.pub != nil {
		if err := p.pub.Publish(ctx, d); err != nil {
			p.metrics.RecordError("live_publish")
			errs = append(errs, fmt.Errorf("publish decision: %w", err))
		} else {
			p.metrics.RecordMessageSent("kafka", "decision")
		}
	}
	if p.store != nil {
		if err := p.store.Store(ctx, d); err != nil {
			p.metrics.RecordError("live_store")
			errs = append(errs, fmt.Errorf("store decision: %w", err))
		} else {
			p.metrics.RecordMessageSent("clickhouse", "decision")
		}
	}
	if d.Admitted && p.hub != nil {
		n := p.hub.Broadcast(ctx, LiveMessage{Type: "live", Tips: []LiveTip{{
			TipCandidate: d.Tip,
			DecisionID:   d.ID,
			Stake:        d.Stake,
			Momentum:     momentum,
		}}})
		p.metrics.RecordMessageSent("ws", "live")
		p.log.Debug("live tip broadcast", logger.String("event_id", e.ID), logger.Int("clients", n))
	}

	if !u.Timestamp.IsZero() {
		svcmetrics.LiveUpdateLatency.WithLabelValues(e.Sport).Observe(time.Since(u.Timestamp).Seconds())
	}
	p.metrics.RecordLatency("live_process", time.Since(start).Seconds())
	return errors.Join(errs...)
}

// track stores the fused probabilities and returns the home probability
// change since the previous update.
func (p *LiveProcessor) track(id string, probs models.Probabilities, now time.Time) float64 {
	var momentum float64
	if prev, ok := p.states.Get(id); ok {
		momentum = probs.Home - prev.Probabilities.Home
	}
	p.states.Set(id, LiveState{Probabilities: probs, Momentum: momentum, UpdatedAt: now})
	return momentum
}

// ProcessBatch processes updates in order and keeps going past failures.
func (p *LiveProcessor) ProcessBatch(ctx context.Context, updates []*models.OddsUpdate) error {
	var errs []error
	for _, u := range updates {
		if err := p.Process(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *LiveProcessor) State(id string) (LiveState, bool) {
	return p.states.Get(id)
}

// Sweep drops expired live state.
func (p *LiveProcessor) Sweep() int { return p.states.Sweep() }

func (p *LiveProcessor) Book() *EventBook { return p.book }

// Close closes underlying resources if available.
func (p *LiveProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
