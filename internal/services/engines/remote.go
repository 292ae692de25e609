package engines

import (
	"context"
	"fmt"
	"time"

	"TipFusion/internal/domain/models"
	"TipFusion/internal/engine"
	xhttp "TipFusion/pkg/http"
)

// Remote delegates scoring to an external model service over HTTP.
// Config: "url" (required), "path" (default /predict), "timeout" seconds, "attempts".
type Remote struct {
	engine.Base
	baseURL  string
	path     string
	attempts int
	client   *xhttp.Client
}

type remoteRequest struct {
	MatchData   map[string]any `json:"match_data"`
	Stats       map[string]any `json:"stats"`
	Sequence    []any          `json:"sequence"`
	PlayerStats map[string]any `json:"player_stats"`
	LiveFeed    map[string]any `json:"live_feed"`
}

type remoteResponse struct {
	ProbHome   *float64 `json:"prob_home"`
	ProbDraw   *float64 `json:"prob_draw"`
	ProbAway   *float64 `json:"prob_away"`
	Confidence *float64 `json:"confidence"`
}

func NewRemote(cfg map[string]any) (engine.Engine, error) {
	base := engine.NewBase(RemoteID, "1.0", cfg)
	url, _ := cfg["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("remote engine: url is required")
	}
	path, _ := cfg["path"].(string)
	if path == "" {
		path = "/predict"
	}
	timeout := time.Duration(base.ConfigFloat("timeout", 3) * float64(time.Second))
	return &Remote{
		Base:     base,
		baseURL:  url,
		path:     path,
		attempts: int(base.ConfigFloat("attempts", 2)),
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}, nil
}

func (r *Remote) RunModel(ctx context.Context, in models.NormalizedInput) (models.ModelOutput, error) {
	req := remoteRequest{
		MatchData:   in.MatchData,
		Stats:       in.Stats,
		Sequence:    in.Sequence,
		PlayerStats: in.PlayerStats,
		LiveFeed:    in.LiveFeed,
	}
	var resp remoteResponse
	if err := r.postJSONWithRetry(ctx, req, &resp); err != nil {
		return models.ModelOutput{}, err
	}
	if resp.ProbHome == nil || resp.ProbDraw == nil || resp.ProbAway == nil {
		return models.ModelOutput{}, fmt.Errorf("remote engine: incomplete probabilities")
	}
	return models.ModelOutput{
		Probabilities: &models.Probabilities{Home: *resp.ProbHome, Draw: *resp.ProbDraw, Away: *resp.ProbAway},
		Confidence:    resp.Confidence,
	}, nil
}

func (r *Remote) postJSON(ctx context.Context, payload, dest interface{}) error {
	if err := r.client.PostJSON(ctx, r.baseURL+r.path, payload, dest); err != nil {
		return fmt.Errorf("post %s: %w", r.path, err)
	}
	return nil
}

// postJSONWithRetry retries transient failures with linear backoff.
func (r *Remote) postJSONWithRetry(ctx context.Context, payload, dest interface{}) error {
	var err error
	n := max(r.attempts, 1)
	for i := 1; i <= n; i++ {
		if err = r.postJSON(ctx, payload, dest); err == nil {
			return nil
		}
		if i == n {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
