package repository

import (
	"context"
	"errors"
	"fmt"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
	"TipFusion/pkg/cache"
)

const (
	modelStatsPrefix = "model_stats"
	modelOrderKey    = "model_stats_order"
)

// ModelStatsCache keeps model stats in the shared cache so every replica
// routes with the same numbers. Registration order is kept as its own key.
type ModelStatsCache struct {
	cache cache.Service
}

func NewModelStatsCache(c cache.Service) *ModelStatsCache {
	return &ModelStatsCache{cache: c}
}

func (m *ModelStatsCache) Save(ctx context.Context, name string, stats models.ModelStats) error {
	order, err := m.order(ctx)
	if err != nil {
		return err
	}
	if err := m.cache.Set(ctx, cache.GenerateKey(modelStatsPrefix, name), stats, 0); err != nil {
		return fmt.Errorf("save model stats %s: %w", name, err)
	}
	for _, n := range order {
		if n == name {
			return nil
		}
	}
	if err := m.cache.Set(ctx, modelOrderKey, append(order, name), 0); err != nil {
		return fmt.Errorf("save model order: %w", err)
	}
	return nil
}

// LoadAll returns names in registration order; names whose stats are gone are skipped.
func (m *ModelStatsCache) LoadAll(ctx context.Context) ([]string, map[string]models.ModelStats, error) {
	order, err := m.order(ctx)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, len(order))
	for i, n := range order {
		keys[i] = cache.GenerateKey(modelStatsPrefix, n)
	}
	byKey, err := cache.MGetTyped[models.ModelStats](ctx, m.cache, keys...)
	if err != nil {
		return nil, nil, fmt.Errorf("load model stats: %w", err)
	}

	names := make([]string, 0, len(order))
	stats := make(map[string]models.ModelStats, len(order))
	for i, n := range order {
		st, ok := byKey[keys[i]]
		if !ok {
			continue
		}
		names = append(names, n)
		stats[n] = st
	}
	return names, stats, nil
}

func (m *ModelStatsCache) order(ctx context.Context) ([]string, error) {
	var order []string
	if err := m.cache.Get(ctx, modelOrderKey, &order); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load model order: %w", err)
	}
	return order, nil
}

var _ domrepo.ModelStatsStore = (*ModelStatsCache)(nil)
