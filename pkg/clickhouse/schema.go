package clickhouse

import "fmt"

// Schema returns the idempotent DDL for the decision log and the bankroll history.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.decisions (
    id String,
    event_id String,
    sport LowCardinality(String),
    league LowCardinality(String),
    model LowCardinality(String),
    pool LowCardinality(String),
    admitted UInt8,
    engine_count UInt16,
    best_pick LowCardinality(String),
    risk_score Float64,
    edge_score Float64,
    value_index Float64,
    stake Float64,
    payload String,
    created_at DateTime64(3, 'UTC')
) ENGINE = MergeTree
PARTITION BY toYYYYMM(created_at)
ORDER BY (event_id, created_at)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bankroll_history (
    ts DateTime64(3, 'UTC'),
    pool LowCardinality(String),
    before Float64,
    after Float64,
    stake Float64,
    odds Float64,
    won UInt8,
    event_id String,
    sport LowCardinality(String),
    value Float64,
    confidence Float64
) ENGINE = MergeTree
PARTITION BY toYYYYMM(ts)
ORDER BY (pool, ts)`, database),
	}
}
