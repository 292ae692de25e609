package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TipFusion/internal/domain/models"
	drepo "TipFusion/internal/domain/repository"
	"TipFusion/pkg/logger"
	"TipFusion/pkg/queue"
)

// SettlementMessageType is the queue message type carrying a models.Settlement.
const SettlementMessageType = "bankroll.settle"

var ErrInvalidSettlement = errors.New("invalid settlement")

// BankrollService applies settlements to the pools and keeps their state
// and history durable.
type BankrollService struct {
	pools   *Pools
	store   drepo.BankrollStore
	history drepo.BankrollHistory
	metrics drepo.Metrics
	log     *logger.Logger
	now     func() time.Time

	// held across update and persistence so saves land in settle order
	settleMu map[models.Pool]*sync.Mutex
}

// NewBankrollService wires the pools to their persistence. store and history may be nil.
func NewBankrollService(pools *Pools, store drepo.BankrollStore, history drepo.BankrollHistory, metrics drepo.Metrics, log *logger.Logger) *BankrollService {
	if log == nil {
		log = logger.Nop()
	}
	settleMu := make(map[models.Pool]*sync.Mutex, len(models.Pools))
	for _, p := range models.Pools {
		settleMu[p] = &sync.Mutex{}
	}
	return &BankrollService{pools: pools, store: store, history: history, metrics: metrics, log: log, now: time.Now, settleMu: settleMu}
}

func (s *BankrollService) Pools() *Pools { return s.pools }

// Restore loads the last saved state of every pool. Pools without a saved
// state keep their configured initial bankroll.
func (s *BankrollService) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	for _, p := range models.Pools {
		st, ok, err := s.store.Load(ctx, p)
		if err != nil {
			return fmt.Errorf("load %s bankroll: %w", p, err)
		}
		mgr, _ := s.pools.Get(p)
		if ok {
			mgr.Restore(st)
			s.log.Info("bankroll restored", logger.String("pool", string(p)), logger.Float64("bankroll", st.Bankroll))
		}
		s.metrics.RecordBankroll(string(p), mgr.State().Bankroll)
	}
	return nil
}

func (s *BankrollService) State(pool models.Pool) (models.BankrollState, error) {
	mgr, err := s.pools.Get(pool)
	if err != nil {
		return models.BankrollState{}, err
	}
	return mgr.State(), nil
}

// Settle applies one resolved bet. The in-memory pool is always updated;
// persistence failures are returned joined alongside the change. Settlements
// on the same pool are serialized through persistence.
func (s *BankrollService) Settle(ctx context.Context, st models.Settlement) (models.BankrollChange, error) {
	if st.Stake <= 0 || st.Odds < 1 {
		return models.BankrollChange{}, fmt.Errorf("%w: stake %.2f odds %.2f", ErrInvalidSettlement, st.Stake, st.Odds)
	}
	mgr, err := s.pools.Get(st.Pool)
	if err != nil {
		return models.BankrollChange{}, fmt.Errorf("%w: %v", ErrInvalidSettlement, err)
	}
	mu := s.settleMu[st.Pool]
	mu.Lock()
	defer mu.Unlock()

	change := mgr.Update(st.Won, st.Stake, st.Odds)
	s.metrics.RecordBankroll(string(st.Pool), change.After)
	s.log.Info("bet settled",
		logger.String("pool", string(st.Pool)),
		logger.String("event_id", st.EventID),
		logger.Bool("won", st.Won),
		logger.Float64("before", change.Before),
		logger.Float64("after", change.After))

	var errs []error
	if s.history != nil {
		rec := models.BankrollRecord{
			Time:       s.now().UTC(),
			Pool:       st.Pool,
			Before:     change.Before,
			After:      change.After,
			Stake:      st.Stake,
			Odds:       st.Odds,
			Won:        st.Won,
			EventID:    st.EventID,
			Sport:      st.Sport,
			Value:      st.Value,
			Confidence: st.Confidence,
		}
		if err := s.history.Log(ctx, rec); err != nil {
			s.metrics.RecordError("bankroll_history")
			errs = append(errs, fmt.Errorf("log settlement: %w", err))
		}
	}
	if s.store != nil {
		if err := s.store.Save(ctx, st.Pool, change.State); err != nil {
			s.metrics.RecordError("bankroll_store")
			errs = append(errs, fmt.Errorf("save bankroll: %w", err))
		}
	}
	return change, errors.Join(errs...)
}

func (s *BankrollService) History(ctx context.Context, pool models.Pool, from, to time.Time, limit int) ([]models.BankrollRecord, error) {
	if s.history == nil {
		return []models.BankrollRecord{}, nil
	}
	return s.history.History(ctx, pool, from, to, limit)
}

// SettlementJob settles bets enqueued by upstream result feeds.
type SettlementJob struct {
	svc *BankrollService
}

func NewSettlementJob(svc *BankrollService) *SettlementJob { return &SettlementJob{svc: svc} }

func (j *SettlementJob) Name() string { return "bankroll_settlement" }

func (j *SettlementJob) Type() string { return SettlementMessageType }

func (j *SettlementJob) Handle(ctx context.Context, payload interface{}) error {
	st, err := queue.ParsePayload[models.Settlement](payload)
	if err != nil {
		return err
	}
	if _, err := j.svc.Settle(ctx, *st); err != nil {
		if errors.Is(err, ErrInvalidSettlement) {
			return err
		}
		// the pool is already updated; a retry would settle twice
		j.svc.log.Warn("settlement persisted partially", logger.String("event_id", st.EventID), logger.Error(err))
	}
	return nil
}

var _ queue.Job = (*SettlementJob)(nil)
