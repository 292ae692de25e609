package usecase

import (
	"context"
	"fmt"
	"slices"

	"TipFusion/internal/domain/models"
	drepo "TipFusion/internal/domain/repository"
	"TipFusion/internal/services/selector"
	"TipFusion/pkg/logger"
)

// ModelInfo is one registered model with its routing score.
type ModelInfo struct {
	Name  string            `json:"name"`
	Stats models.ModelStats `json:"stats"`
	Score float64           `json:"score"`
}

// ModelCatalog keeps the selector and the stats store in step.
type ModelCatalog struct {
	sel   *selector.ModelSelector
	store drepo.ModelStatsStore
	log   *logger.Logger
}

// NewModelCatalog binds the selector to store; store may be nil.
func NewModelCatalog(sel *selector.ModelSelector, store drepo.ModelStatsStore, log *logger.Logger) *ModelCatalog {
	if log == nil {
		log = logger.Nop()
	}
	return &ModelCatalog{sel: sel, store: store, log: log}
}

// Restore registers every stored model with the selector, in stored order.
func (c *ModelCatalog) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	names, stats, err := c.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load model stats: %w", err)
	}
	for _, n := range names {
		c.sel.RegisterModel(n, stats[n])
	}
	c.log.Info("model stats restored", logger.Int("models", len(names)))
	return nil
}

// Register stores stats first so the selector never routes to a model the
// store has not seen.
func (c *ModelCatalog) Register(ctx context.Context, req models.RegisterModelRequest) (ModelInfo, error) {
	st := models.ModelStats{ROI: req.ROI, Precision: req.Precision, Drift: req.Drift, Version: req.Version}
	if c.store != nil {
		if err := c.store.Save(ctx, req.Name, st); err != nil {
			return ModelInfo{}, fmt.Errorf("save model %s: %w", req.Name, err)
		}
	}
	c.sel.RegisterModel(req.Name, st)
	for _, league := range req.Leagues {
		prefs := c.sel.Preferences(league)
		if !slices.Contains(prefs, req.Name) {
			c.sel.SetLeaguePreference(league, append(prefs, req.Name))
		}
	}
	c.log.Info("model registered", logger.String("model", req.Name), logger.Float64("score", selector.Score(st)))
	return ModelInfo{Name: req.Name, Stats: st, Score: selector.Score(st)}, nil
}

// List returns the registered models in registration order.
func (c *ModelCatalog) List() []ModelInfo {
	names, stats := c.sel.Snapshot()
	out := make([]ModelInfo, 0, len(names))
	for _, n := range names {
		out = append(out, ModelInfo{Name: n, Stats: stats[n], Score: selector.Score(stats[n])})
	}
	return out
}
