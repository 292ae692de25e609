// Package selector routes events to the best performing scoring model.
package selector

import (
	"fmt"
	"sort"
	"sync"

	"TipFusion/internal/domain/models"
	domsvc "TipFusion/internal/domain/service"
)

const (
	FallbackModel = "fallback_model"

	defaultPrecision = 0.5
	metaThreshold    = 0.1
)

// PenaltyPolicy decides which model replaces a penalized one.
type PenaltyPolicy string

const (
	// PenaltyFirstRegistered swaps in the earliest registered other model.
	PenaltyFirstRegistered PenaltyPolicy = "first_registered"
	// PenaltyNextBest swaps in the best scoring other model.
	PenaltyNextBest PenaltyPolicy = "next_best"
)

func ParsePenaltyPolicy(s string) (PenaltyPolicy, error) {
	switch PenaltyPolicy(s) {
	case "", PenaltyFirstRegistered:
		return PenaltyFirstRegistered, nil
	case PenaltyNextBest:
		return PenaltyNextBest, nil
	}
	return "", fmt.Errorf("unknown penalty policy %q", s)
}

type ModelSelector struct {
	mu     sync.RWMutex
	stats  map[string]models.ModelStats
	order  []string
	prefs  map[string][]string
	policy PenaltyPolicy
}

type Option func(*ModelSelector)

func WithPenaltyPolicy(p PenaltyPolicy) Option {
	return func(s *ModelSelector) { s.policy = p }
}

func WithLeaguePreferences(prefs map[string][]string) Option {
	return func(s *ModelSelector) {
		for league, list := range prefs {
			s.prefs[league] = append([]string(nil), list...)
		}
	}
}

func New(opts ...Option) *ModelSelector {
	s := &ModelSelector{
		stats:  make(map[string]models.ModelStats),
		prefs:  make(map[string][]string),
		policy: PenaltyFirstRegistered,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterModel stores or replaces stats. Re-registering keeps the original position.
func (s *ModelSelector) RegisterModel(name string, stats models.ModelStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stats[name]; !ok {
		s.order = append(s.order, name)
	}
	s.stats[name] = stats
}

func (s *ModelSelector) SetLeaguePreference(league string, modelNames []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(modelNames) == 0 {
		delete(s.prefs, league)
		return
	}
	s.prefs[league] = append([]string(nil), modelNames...)
}

// Preferences returns a copy of the league's preferred models.
func (s *ModelSelector) Preferences(league string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.prefs[league]...)
}

// Score is roi*0.5 + precision*0.4 - drift*0.1 with precision defaulting to 0.5.
func Score(st models.ModelStats) float64 {
	precision := defaultPrecision
	if st.Precision != nil {
		precision = *st.Precision
	}
	return st.ROI*0.5 + precision*0.4 - st.Drift*0.1
}

// SelectModel returns the best scoring candidate for the event's league, or
// FallbackModel when nothing with stats is available.
func (s *ModelSelector) SelectModel(e models.Event) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	league := e.League
	if league == "" {
		league = "UNKNOWN"
	}
	candidates := s.prefs[league]
	if len(candidates) == 0 {
		candidates = s.order
	}
	return s.best(candidates, "")
}

// best returns the highest scoring candidate with stats, skipping exclude.
// Ties keep candidate order.
func (s *ModelSelector) best(candidates []string, exclude string) string {
	type scored struct {
		name  string
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, name := range candidates {
		if name == exclude {
			continue
		}
		st, ok := s.stats[name]
		if !ok {
			continue
		}
		ranked = append(ranked, scored{name, Score(st)})
	}
	if len(ranked) == 0 {
		return FallbackModel
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	return ranked[0].name
}

// ApplyMetaDecision lets the meta layer keep (boost > 0.1) or replace
// (penalty > 0.1) a model. Boost wins over penalty.
func (s *ModelSelector) ApplyMetaDecision(model string, meta *models.MetaDecision) string {
	if meta == nil {
		return model
	}
	if meta.ModelBoost[model] > metaThreshold {
		return model
	}
	if meta.ModelPenalty[model] <= metaThreshold {
		return model
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.policy {
	case PenaltyNextBest:
		if alt := s.best(s.order, model); alt != FallbackModel {
			return alt
		}
	default:
		for _, name := range s.order {
			if name != model {
				return name
			}
		}
	}
	return model
}

func (s *ModelSelector) Route(e models.Event, meta *models.MetaDecision) string {
	return s.ApplyMetaDecision(s.SelectModel(e), meta)
}

// Snapshot returns registered names in order with their stats.
func (s *ModelSelector) Snapshot() ([]string, map[string]models.ModelStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := append([]string(nil), s.order...)
	stats := make(map[string]models.ModelStats, len(s.stats))
	for k, v := range s.stats {
		stats[k] = v
	}
	return names, stats
}

var _ domsvc.ModelRouter = (*ModelSelector)(nil)
