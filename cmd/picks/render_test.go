package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
)

func TestRenderPicks(t *testing.T) {
	dp := &models.DailyPicks{
		GeneratedAt:  time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
		Singles:      map[string]models.Pick{"foci": {EventID: "m1", Pick: models.Outcome("home"), Odds: 2.1, Value: 1.05, Confidence: 0.7}},
		SingleStakes: map[string]float64{"foci": 15},
		Kombi:        []models.Pick{{EventID: "m2", Sport: "kosar", Odds: 1.8}, {EventID: "m3", Sport: "hoki", Odds: 2}},
		KombiStake:   6,
	}
	var buf bytes.Buffer
	require.NoError(t, renderPicks(&buf, dp))
	out := buf.String()
	assert.Contains(t, out, "2026-05-02T09:00:00Z")
	assert.Contains(t, out, "m1")
	assert.Contains(t, out, "70.0%")
	assert.Contains(t, out, "odds 3.60")
	assert.Contains(t, out, "No live picks")
}

func TestAPIClient_UnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/picks/daily":
			_, _ = w.Write([]byte(`{"status":404,"message":"Not Found"}`))
		default:
			_, _ = w.Write([]byte(`{"status":200,"message":"OK","data":{"bankroll":900,"max_bankroll":1000,"risk_multiplier":1}}`))
		}
	}))
	defer srv.Close()

	api := newAPI(srv.URL, time.Second)
	_, err := api.dailyPicks(context.Background())
	assert.ErrorContains(t, err, "404")

	states, err := api.bankrolls(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.InDelta(t, 0.1, drawdown(states[models.PoolSingle]), 1e-12)

	var buf bytes.Buffer
	require.NoError(t, renderBankrolls(&buf, states))
	assert.Contains(t, buf.String(), "10.0%")
}
