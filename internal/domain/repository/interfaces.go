package repository

import (
	"context"
	"time"

	"TipFusion/internal/domain/models"
)

// OddsStream is a live odds source (websocket feed).
type OddsStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.OddsUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// DecisionPublisher pushes decisions and daily picks downstream.
type DecisionPublisher interface {
	Publish(ctx context.Context, d *models.Decision) error
	PublishBatch(ctx context.Context, ds []*models.Decision) error
	PublishPicks(ctx context.Context, p *models.DailyPicks) error
	Close() error
}

// DecisionStore persists decision bundles for later reporting.
type DecisionStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, d *models.Decision) error
	StoreBatch(ctx context.Context, ds []*models.Decision) error
	Query(ctx context.Context, eventID string, from, to time.Time, limit int) ([]*models.Decision, error)
	Health(ctx context.Context) error
	Close() error
}

// BankrollHistory is the append-only settlement log.
type BankrollHistory interface {
	Log(ctx context.Context, rec models.BankrollRecord) error
	History(ctx context.Context, pool models.Pool, from, to time.Time, limit int) ([]models.BankrollRecord, error)
}

// BankrollStore durably keeps the latest state per pool between restarts.
type BankrollStore interface {
	Load(ctx context.Context, pool models.Pool) (models.BankrollState, bool, error)
	Save(ctx context.Context, pool models.Pool, state models.BankrollState) error
	Close() error
}

// ModelStatsStore keeps model performance stats fed by the training loop.
// LoadAll returns names in registration order.
type ModelStatsStore interface {
	Save(ctx context.Context, name string, stats models.ModelStats) error
	LoadAll(ctx context.Context) ([]string, map[string]models.ModelStats, error)
}

type Metrics interface {
	RecordMessageSent(sink, kind string)
	RecordError(kind string)
	RecordEngineRun(engine string, success bool, seconds float64)
	RecordDecision(pool string, admitted bool)
	RecordBankroll(pool string, bankroll float64)
	RecordLatency(op string, seconds float64)
}
