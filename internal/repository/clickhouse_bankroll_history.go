package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
	pkgch "TipFusion/pkg/clickhouse"
)

// ClickHouseBankrollHistory is the append-only settlement log.
type ClickHouseBankrollHistory struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
}

func NewClickHouseBankrollHistory(ch *pkgch.Client, database string) *ClickHouseBankrollHistory {
	return &ClickHouseBankrollHistory{ch: ch, db: ch.DB(), table: database + ".bankroll_history"}
}

func (h *ClickHouseBankrollHistory) Log(ctx context.Context, r models.BankrollRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, pool, before, after, stake, odds, won, event_id, sport, value, confidence) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", h.table)
	var won uint8
	if r.Won {
		won = 1
	}
	wctx, cancel := h.ch.WriteContext(ctx)
	defer cancel()
	_, err := h.db.ExecContext(wctx, q,
		r.Time, string(r.Pool), r.Before, r.After, r.Stake, r.Odds, won, r.EventID, r.Sport, r.Value, r.Confidence)
	if err != nil {
		return fmt.Errorf("insert bankroll record: %w", err)
	}
	return nil
}

// History returns records in time order.
func (h *ClickHouseBankrollHistory) History(ctx context.Context, pool models.Pool, from, to time.Time, limit int) ([]models.BankrollRecord, error) {
	q := fmt.Sprintf("SELECT ts, pool, before, after, stake, odds, won, event_id, sport, value, confidence FROM %s WHERE pool = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", h.table)
	rows, err := h.db.QueryContext(ctx, q, string(pool), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query bankroll history: %w", err)
	}
	defer rows.Close()

	out := make([]models.BankrollRecord, 0, limit)
	for rows.Next() {
		var (
			r   models.BankrollRecord
			p   string
			won uint8
		)
		if err := rows.Scan(&r.Time, &p, &r.Before, &r.After, &r.Stake, &r.Odds, &won, &r.EventID, &r.Sport, &r.Value, &r.Confidence); err != nil {
			return nil, fmt.Errorf("scan bankroll record: %w", err)
		}
		r.Pool = models.Pool(p)
		r.Won = won == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

var _ domrepo.BankrollHistory = (*ClickHouseBankrollHistory)(nil)
