package engine

import (
	"fmt"
	"strings"
	"sync"
)

// Constructor builds an engine instance from its config section.
type Constructor func(cfg map[string]any) (Engine, error)

// Registry maps normalized engine ids to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
	order []string
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Register stores ctor under id. Registering an existing id replaces it.
func (r *Registry) Register(id string, ctor Constructor) {
	key := normalizeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[key]; !ok {
		r.order = append(r.order, key)
	}
	r.ctors[key] = ctor
}

// CreateInstance builds a new engine. Unregistered ids yield *UnknownEngineError.
func (r *Registry) CreateInstance(id string, cfg map[string]any) (Engine, error) {
	key := normalizeID(id)
	r.mu.RLock()
	ctor, ok := r.ctors[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownEngineError{ID: key}
	}
	e, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w: %v", key, ErrConfiguration, err)
	}
	return e, nil
}

// ListEngines returns ids in first-registration order.
func (r *Registry) ListEngines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[normalizeID(id)]
	return ok
}
