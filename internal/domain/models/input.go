package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// NormalizedInput is the fixed-shape record every engine receives.
type NormalizedInput struct {
	MatchData   map[string]any `json:"match_data"`
	Stats       map[string]any `json:"stats"`
	Sequence    []any          `json:"sequence"`
	Graph       map[string]any `json:"graph"`
	PlayerStats map[string]any `json:"player_stats"`
	LiveFeed    map[string]any `json:"live_feed"`
	Metadata    map[string]any `json:"metadata"`
}

// AsMap returns the record as a raw map with all seven keys.
func (n NormalizedInput) AsMap() map[string]any {
	return map[string]any{
		"match_data":   n.MatchData,
		"stats":        n.Stats,
		"sequence":     n.Sequence,
		"graph":        n.Graph,
		"player_stats": n.PlayerStats,
		"live_feed":    n.LiveFeed,
		"metadata":     n.Metadata,
	}
}

// MatchFloat reads a numeric match_data field.
func (n NormalizedInput) MatchFloat(key string) (float64, bool) {
	return AsFloat(n.MatchData[key])
}

// MatchFloatOr reads a numeric match_data field with a fallback.
func (n NormalizedInput) MatchFloatOr(key string, def float64) float64 {
	if v, ok := n.MatchFloat(key); ok {
		return v
	}
	return def
}

func (n NormalizedInput) MatchString(key string) string {
	s, _ := n.MatchData[key].(string)
	return s
}

// Odds reads match_data.odds; missing legs are zero.
func (n NormalizedInput) Odds() Odds {
	var o Odds
	switch v := n.MatchData["odds"].(type) {
	case Odds:
		return v
	case *Odds:
		if v != nil {
			return *v
		}
	case map[string]any:
		o.Home, _ = AsFloat(v["home"])
		o.Draw, _ = AsFloat(v["draw"])
		o.Away, _ = AsFloat(v["away"])
	case map[string]float64:
		o.Home, o.Draw, o.Away = v["home"], v["draw"], v["away"]
	}
	return o
}

// AsFloat converts the numeric shapes found in decoded JSON and YAML.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

type Odds struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

func (o Odds) Get(out Outcome) float64 {
	switch out {
	case Home:
		return o.Home
	case Draw:
		return o.Draw
	case Away:
		return o.Away
	}
	return 0
}

// Max returns the best offered price across legs.
func (o Odds) Max() float64 {
	m := o.Home
	if o.Draw > m {
		m = o.Draw
	}
	if o.Away > m {
		m = o.Away
	}
	return m
}

func (o Odds) asMap() map[string]any {
	return map[string]any{"home": o.Home, "draw": o.Draw, "away": o.Away}
}

type StakeSplit struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

const (
	MarketMain = "1x2"
	MarketProp = "prop"
)

// Event is one bettable fixture as supplied by the feed layer.
type Event struct {
	ID               string         `json:"match_id" validate:"required"`
	Sport            string         `json:"sport" default:"foci"`
	League           string         `json:"league" default:"UNKNOWN"`
	Market           string         `json:"market" default:"1x2" validate:"omitempty,oneof=1x2 prop"`
	Live             bool           `json:"live"`
	Odds             Odds           `json:"odds"`
	OddsHistory      []float64      `json:"odds_history,omitempty"`
	Stakes           StakeSplit     `json:"stakes"`
	MarketVolume     float64        `json:"market_volume"`
	Importance       *float64       `json:"importance,omitempty"`
	OddsVelocity     *float64       `json:"odds_velocity,omitempty"`
	OddsAcceleration *float64       `json:"odds_acceleration,omitempty"`
	XGHome           float64        `json:"xg_home,omitempty"`
	XGAway           float64        `json:"xg_away,omitempty"`
	FormHome         float64        `json:"form_home,omitempty"`
	FormAway         float64        `json:"form_away,omitempty"`
	HomeStrength     float64        `json:"home_strength,omitempty"`
	AwayStrength     float64        `json:"away_strength,omitempty"`
	Over25Odds       float64        `json:"over25_odds,omitempty"`
	Under25Odds      float64        `json:"under25_odds,omitempty"`
	LiveIntensity    *float64       `json:"live_intensity,omitempty"`
	Reliability      *float64       `json:"reliability,omitempty"`
	TmxAvailable     bool           `json:"tmx_available"`
	Prior            *Probabilities `json:"prior,omitempty"`
	StartsAt         time.Time      `json:"starts_at,omitempty"`
	Raw              map[string]any `json:"raw,omitempty"`
}

// RawInput builds the loosely shaped record handed to the normalizer.
// Typed fields win over anything with the same key in Raw.
func (e Event) RawInput() map[string]any {
	raw := make(map[string]any, len(e.Raw)+2)
	for k, v := range e.Raw {
		raw[k] = v
	}

	md := map[string]any{}
	if prev, ok := raw["match_data"].(map[string]any); ok {
		for k, v := range prev {
			md[k] = v
		}
	}
	md["match_id"] = e.ID
	md["sport"] = e.Sport
	md["league"] = e.League
	md["market"] = e.Market
	md["live"] = e.Live
	md["market_volume"] = e.MarketVolume
	setNonZero(md, "xg_home", e.XGHome)
	setNonZero(md, "xg_away", e.XGAway)
	setNonZero(md, "form_home", e.FormHome)
	setNonZero(md, "form_away", e.FormAway)
	setNonZero(md, "home_strength", e.HomeStrength)
	setNonZero(md, "away_strength", e.AwayStrength)
	setNonZero(md, "over25_odds", e.Over25Odds)
	setNonZero(md, "under25_odds", e.Under25Odds)
	if e.LiveIntensity != nil {
		md["live_intensity"] = *e.LiveIntensity
	}
	if e.Prior != nil {
		md["prob_home"] = e.Prior.Home
		md["prob_draw"] = e.Prior.Draw
		md["prob_away"] = e.Prior.Away
	}
	raw["match_data"] = md
	raw["odds"] = e.Odds.asMap()

	if len(e.OddsHistory) > 0 {
		seq := make([]any, len(e.OddsHistory))
		for i, v := range e.OddsHistory {
			seq[i] = v
		}
		raw["sequence"] = seq
	}
	return raw
}

func setNonZero(m map[string]any, key string, v float64) {
	if v != 0 {
		m[key] = v
	}
}

// OddsUpdate is one message from the live odds feed.
type OddsUpdate struct {
	EventID       string     `json:"match_id"`
	Sport         string     `json:"sport,omitempty"`
	League        string     `json:"league,omitempty"`
	Odds          Odds       `json:"odds"`
	Stakes        StakeSplit `json:"stakes"`
	MarketVolume  float64    `json:"market_volume"`
	LiveIntensity *float64   `json:"live_intensity,omitempty"`
	Live          bool       `json:"live"`
	TmxAvailable  *bool      `json:"tmx_available,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}
