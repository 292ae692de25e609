package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
	pkgch "TipFusion/pkg/clickhouse"
	applogger "TipFusion/pkg/logger"
)

const decisionColumns = "id, event_id, sport, league, model, pool, admitted, engine_count, best_pick, risk_score, edge_score, value_index, stake, payload, created_at"

// ClickHouseDecisionStore keeps every decision bundle: the headline numbers
// as columns for reporting and the full bundle as a JSON payload.
type ClickHouseDecisionStore struct {
	client *pkgch.Client
	db     *sql.DB
	table  string
	schema []string
	l      *applogger.Logger
}

func NewClickHouseDecisionStore(ch *pkgch.Client, database string) *ClickHouseDecisionStore {
	return &ClickHouseDecisionStore{
		client: ch,
		db:     ch.DB(),
		table:  database + ".decisions",
		schema: pkgch.Schema(database),
		l:      applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (s *ClickHouseDecisionStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *ClickHouseDecisionStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, s.schema)
}

// decisionRow flattens a decision into insert arguments in decisionColumns order.
func decisionRow(d *models.Decision) ([]interface{}, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal decision %s: %w", d.ID, err)
	}
	var stake float64
	if d.Stake != nil {
		stake = d.Stake.Stake
	}
	var admitted uint8
	if d.Admitted {
		admitted = 1
	}
	return []interface{}{
		d.ID,
		d.EventID,
		d.Sport,
		d.League,
		d.Model,
		string(d.Pool),
		admitted,
		uint16(d.EngineCount),
		string(d.Edge.BestPick),
		d.Risk.RiskScore,
		d.Edge.EdgeScore,
		d.Value.ValueIndex,
		stake,
		string(payload),
		d.CreatedAt,
	}, nil
}

func (s *ClickHouseDecisionStore) Store(ctx context.Context, d *models.Decision) error {
	return s.StoreBatch(ctx, []*models.Decision{d})
}

// StoreBatch inserts multi-row VALUES in chunks to keep round-trips low.
func (s *ClickHouseDecisionStore) StoreBatch(ctx context.Context, ds []*models.Decision) error {
	const chunkSize = 500
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", 15), ", ") + ")"

	for start := 0; start < len(ds); start += chunkSize {
		end := min(start+chunkSize, len(ds))
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*15)
		for _, d := range ds[start:end] {
			if d == nil || d.ID == "" {
				continue
			}
			row, err := decisionRow(d)
			if err != nil {
				return err
			}
			values = append(values, placeholder)
			args = append(args, row...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, decisionColumns, strings.Join(values, ","))
		wctx, cancel := s.client.WriteContext(ctx)
		_, err := s.db.ExecContext(wctx, q, args...)
		cancel()
		if err != nil {
			s.l.Error("clickhouse store decisions error",
				applogger.String("table", s.table),
				applogger.Int("rows", len(values)),
				applogger.Error(err))
			return fmt.Errorf("insert decisions: %w", err)
		}
	}
	return nil
}

// Query returns the newest decisions first. An empty eventID matches all events.
func (s *ClickHouseDecisionStore) Query(ctx context.Context, eventID string, from, to time.Time, limit int) ([]*models.Decision, error) {
	start := time.Now()
	q := fmt.Sprintf("SELECT payload FROM %s WHERE created_at >= ? AND created_at <= ?", s.table)
	args := []interface{}{from, to}
	if eventID != "" {
		q += " AND event_id = ?"
		args = append(args, eventID)
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse query decisions error",
			applogger.String("table", s.table),
			applogger.String("event_id", eventID),
			applogger.Error(err))
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Decision, 0, limit)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		var d models.Decision
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse query decisions ok",
		applogger.String("event_id", eventID),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration", time.Since(start)))
	return out, nil
}

func (s *ClickHouseDecisionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to the ClickHouse client.
func (s *ClickHouseDecisionStore) Close() error { return nil }

var _ domrepo.DecisionStore = (*ClickHouseDecisionStore)(nil)
