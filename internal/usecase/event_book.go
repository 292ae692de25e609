package usecase

import (
	"sort"
	"sync"

	"TipFusion/internal/domain/models"
)

const defaultMaxHistory = 50

// EventBook keeps the latest known state of every event the feeds reported.
type EventBook struct {
	mu         sync.RWMutex
	events     map[string]*models.Event
	maxHistory int
}

func NewEventBook(maxHistory int) *EventBook {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &EventBook{events: make(map[string]*models.Event), maxHistory: maxHistory}
}

// Upsert replaces events wholesale.
func (b *EventBook) Upsert(events ...models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range events {
		if e.ID == "" {
			continue
		}
		c := clone(e)
		b.events[e.ID] = &c
	}
}

// Apply folds a live odds update into its event, creating it when unknown,
// and returns a copy of the result. Home odds are appended to the history.
func (b *EventBook) Apply(u *models.OddsUpdate) models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.events[u.EventID]
	if !ok {
		e = &models.Event{ID: u.EventID, Sport: "foci", League: "UNKNOWN", Market: models.MarketMain}
		b.events[u.EventID] = e
	}
	if u.Sport != "" {
		e.Sport = u.Sport
	}
	if u.League != "" {
		e.League = u.League
	}
	if u.Odds != (models.Odds{}) {
		e.Odds = u.Odds
		if u.Odds.Home > 0 {
			e.OddsHistory = append(e.OddsHistory, u.Odds.Home)
			if over := len(e.OddsHistory) - b.maxHistory; over > 0 {
				e.OddsHistory = append([]float64(nil), e.OddsHistory[over:]...)
			}
		}
	}
	if u.Stakes != (models.StakeSplit{}) {
		e.Stakes = u.Stakes
	}
	if u.MarketVolume > 0 {
		e.MarketVolume = u.MarketVolume
	}
	if u.LiveIntensity != nil {
		v := *u.LiveIntensity
		e.LiveIntensity = &v
	}
	if u.TmxAvailable != nil {
		e.TmxAvailable = *u.TmxAvailable
	}
	e.Live = u.Live
	return clone(*e)
}

func (b *EventBook) Get(id string) (models.Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.events[id]
	if !ok {
		return models.Event{}, false
	}
	return clone(*e), true
}

// Snapshot returns copies of all events ordered by id.
func (b *EventBook) Snapshot() []models.Event {
	b.mu.RLock()
	out := make([]models.Event, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, clone(*e))
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *EventBook) Remove(id string) {
	b.mu.Lock()
	delete(b.events, id)
	b.mu.Unlock()
}

func (b *EventBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

func clone(e models.Event) models.Event {
	e.OddsHistory = append([]float64(nil), e.OddsHistory...)
	return e
}
