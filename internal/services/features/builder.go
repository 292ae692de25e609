// Package features builds the model feature set for one event.
package features

import (
	"math"

	"TipFusion/internal/domain/models"
	"TipFusion/pkg/util"
)

const (
	logitEps = 1e-6
	formMax  = 100.0
)

// Options tune a single Build call.
type Options struct {
	// Live skips slow pre-match features (xG, form, strength, totals).
	Live bool
	// BankrollRatio is the staking pool's bankroll/max_bankroll, when known.
	BankrollRatio *float64
}

type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// Build derives features from the typed event, preferring values already in
// the normalized match_data when the event leaves them empty.
func (b *Builder) Build(e models.Event, in models.NormalizedInput, opts Options) models.Features {
	odds := e.Odds
	if odds == (models.Odds{}) {
		odds = in.Odds()
	}

	f := models.Features{
		Odds:          odds,
		Implied:       ImpliedProbabilities(odds),
		LogitHome:     LogitOdds(odds.Home),
		LogitDraw:     LogitOdds(odds.Draw),
		LogitAway:     LogitOdds(odds.Away),
		BankrollRatio: opts.BankrollRatio,
		Importance:    e.Importance,
		Live:          opts.Live || e.Live,
	}

	f.OddsVelocity, f.OddsAcceleration = Kinematics(e.OddsHistory)
	if e.OddsVelocity != nil {
		f.OddsVelocity = *e.OddsVelocity
	}
	if e.OddsAcceleration != nil {
		f.OddsAcceleration = *e.OddsAcceleration
	}

	if e.LiveIntensity != nil {
		f.LiveIntensity = *e.LiveIntensity
	} else {
		f.LiveIntensity = in.MatchFloatOr("live_intensity", 1.0)
	}

	if f.Live {
		return f
	}

	f.XGHome = pick(e.XGHome, in, "xg_home")
	f.XGAway = pick(e.XGAway, in, "xg_away")
	f.FormHome = NormalizeForm(pick(e.FormHome, in, "form_home"))
	f.FormAway = NormalizeForm(pick(e.FormAway, in, "form_away"))
	f.HomeStrength = pick(e.HomeStrength, in, "home_strength") / 100
	f.AwayStrength = pick(e.AwayStrength, in, "away_strength") / 100
	f.Over25Prob = inverse(pick(e.Over25Odds, in, "over25_odds"))
	f.Under25Prob = inverse(pick(e.Under25Odds, in, "under25_odds"))
	return f
}

func pick(v float64, in models.NormalizedInput, key string) float64 {
	if v != 0 {
		return v
	}
	return in.MatchFloatOr(key, 0)
}

func inverse(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return 1 / odds
}

// LogitOdds maps decimal odds to log(p/(1-p)) with p = 1/odds clipped away from 0 and 1.
// Missing odds (<= 0) give 0.
func LogitOdds(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	p := util.Clip(1/odds, logitEps, 1-logitEps)
	return math.Log(p / (1 - p))
}

// NormalizeForm scales a 0-100 form rating to roughly [0,1].
func NormalizeForm(v float64) float64 {
	return v / (formMax + logitEps)
}

// ImpliedProbabilities converts odds to probabilities with the overround removed.
// Legs without a price get 0.
func ImpliedProbabilities(o models.Odds) models.Odds {
	h, d, a := inverse(o.Home), inverse(o.Draw), inverse(o.Away)
	total := h + d + a
	if total <= 0 {
		return models.Odds{}
	}
	return models.Odds{Home: h / total, Draw: d / total, Away: a / total}
}

// Kinematics returns the last first and second differences of an odds history.
func Kinematics(history []float64) (velocity, acceleration float64) {
	n := len(history)
	if n >= 2 {
		velocity = history[n-1] - history[n-2]
	}
	if n >= 3 {
		acceleration = velocity - (history[n-2] - history[n-3])
	}
	return velocity, acceleration
}
