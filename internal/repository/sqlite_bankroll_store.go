package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
)

const bankrollSchema = `
CREATE TABLE IF NOT EXISTS bankroll_state (
    pool               TEXT PRIMARY KEY,
    bankroll           REAL NOT NULL,
    max_bankroll       REAL NOT NULL,
    min_bankroll       REAL NOT NULL,
    max_drawdown_limit REAL NOT NULL,
    risk_multiplier    REAL NOT NULL,
    updated_at         DATETIME NOT NULL
);
`

// SQLiteBankrollStore keeps the latest state of each pool on local disk so
// bankrolls survive restarts without the analytics stack.
type SQLiteBankrollStore struct {
	db *sql.DB
}

// NewSQLiteBankrollStore opens (or creates) the database at path; ":memory:" works for tests.
func NewSQLiteBankrollStore(path string) (*SQLiteBankrollStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(bankrollSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply bankroll schema: %w", err)
	}
	return &SQLiteBankrollStore{db: db}, nil
}

func (s *SQLiteBankrollStore) Load(ctx context.Context, pool models.Pool) (models.BankrollState, bool, error) {
	var st models.BankrollState
	err := s.db.QueryRowContext(ctx,
		`SELECT bankroll, max_bankroll, min_bankroll, max_drawdown_limit, risk_multiplier, updated_at
		 FROM bankroll_state WHERE pool = ?`, string(pool),
	).Scan(&st.Bankroll, &st.MaxBankroll, &st.MinBankroll, &st.MaxDrawdownLimit, &st.RiskMultiplier, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BankrollState{}, false, nil
	}
	if err != nil {
		return models.BankrollState{}, false, fmt.Errorf("load bankroll %s: %w", pool, err)
	}
	return st, true, nil
}

func (s *SQLiteBankrollStore) Save(ctx context.Context, pool models.Pool, st models.BankrollState) error {
	updated := st.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bankroll_state (pool, bankroll, max_bankroll, min_bankroll, max_drawdown_limit, risk_multiplier, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pool) DO UPDATE SET
			bankroll = excluded.bankroll,
			max_bankroll = excluded.max_bankroll,
			min_bankroll = excluded.min_bankroll,
			max_drawdown_limit = excluded.max_drawdown_limit,
			risk_multiplier = excluded.risk_multiplier,
			updated_at = excluded.updated_at`,
		string(pool), st.Bankroll, st.MaxBankroll, st.MinBankroll, st.MaxDrawdownLimit, st.RiskMultiplier, updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save bankroll %s: %w", pool, err)
	}
	return nil
}

func (s *SQLiteBankrollStore) Close() error { return s.db.Close() }

var _ domrepo.BankrollStore = (*SQLiteBankrollStore)(nil)
