package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TipFusion/internal/domain/models"
	drepo "TipFusion/internal/domain/repository"
	"TipFusion/pkg/logger"
)

// ErrNoDecisionStore is returned by Query when no store is configured.
var ErrNoDecisionStore = errors.New("decision store not configured")

// DecisionService is the request path around the orchestrator: it decides
// and then hands the decisions to the store and publisher.
type DecisionService struct {
	orch    *Orchestrator
	kombi   *KombiBuilder
	store   drepo.DecisionStore
	pub     drepo.DecisionPublisher
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewDecisionService wires the sinks; store and pub may be nil.
func NewDecisionService(orch *Orchestrator, store drepo.DecisionStore, pub drepo.DecisionPublisher, metrics drepo.Metrics, log *logger.Logger) *DecisionService {
	if log == nil {
		log = logger.Nop()
	}
	return &DecisionService{
		orch:    orch,
		kombi:   NewKombiBuilder(orch),
		store:   store,
		pub:     pub,
		metrics: metrics,
		log:     log,
	}
}

func (s *DecisionService) Orchestrator() *Orchestrator { return s.orch }

// Decide returns the decision even when a sink fails; sink errors are only logged.
func (s *DecisionService) Decide(ctx context.Context, e models.Event, meta *models.MetaDecision) *models.Decision {
	start := time.Now()
	d := s.orch.Decide(ctx, e, meta)
	s.sink(ctx, []*models.Decision{d})
	s.metrics.RecordLatency("decide", time.Since(start).Seconds())
	return d
}

func (s *DecisionService) DecideBatch(ctx context.Context, events []models.Event, meta *models.MetaDecision) *models.BatchResult {
	start := time.Now()
	res := s.orch.DecideBatch(ctx, events, meta)
	s.sink(ctx, res.Decisions)
	s.metrics.RecordLatency("decide_batch", time.Since(start).Seconds())
	return res
}

// Kombi builds a slip and its stake over events.
func (s *DecisionService) Kombi(ctx context.Context, events []models.Event) (models.KombiSlip, *models.StakeRecommendation, error) {
	return s.kombi.Generate(ctx, events)
}

func (s *DecisionService) Run(ctx context.Context, raw map[string]any) models.RunOutput {
	return s.orch.Run(ctx, raw)
}

// Query lists stored decisions newest first. Zero from/to leave the range open.
func (s *DecisionService) Query(ctx context.Context, eventID string, from, to time.Time, limit int) ([]*models.Decision, error) {
	if s.store == nil {
		return nil, ErrNoDecisionStore
	}
	ds, err := s.store.Query(ctx, eventID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	return ds, nil
}

func (s *DecisionService) sink(ctx context.Context, ds []*models.Decision) {
	if len(ds) == 0 {
		return
	}
	if s.store != nil {
		if err := s.store.StoreBatch(ctx, ds); err != nil {
			s.metrics.RecordError("decision_store")
			s.log.Warn("store decisions failed", logger.Int("count", len(ds)), logger.Error(err))
		} else {
			s.metrics.RecordMessageSent("clickhouse", "decision")
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishBatch(ctx, ds); err != nil {
			s.metrics.RecordError("decision_publish")
			s.log.Warn("publish decisions failed", logger.Int("count", len(ds)), logger.Error(err))
		} else {
			s.metrics.RecordMessageSent("kafka", "decision")
		}
	}
}
