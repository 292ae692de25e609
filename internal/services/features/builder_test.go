package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"TipFusion/internal/domain/models"
)

func TestLogitOdds(t *testing.T) {
	assert.InDelta(t, 0.0, LogitOdds(2.0), 1e-12)
	assert.InDelta(t, math.Log(0.25/0.75), LogitOdds(4.0), 1e-12)
	// p = 1/0.5 = 2 is clipped to 1-1e-6
	assert.InDelta(t, math.Log((1-1e-6)/1e-6), LogitOdds(0.5), 1e-6)
	assert.Equal(t, 0.0, LogitOdds(0))
}

func TestImpliedProbabilities_RemovesOverround(t *testing.T) {
	p := ImpliedProbabilities(models.Odds{Home: 1.9, Draw: 3.5, Away: 4.0})
	assert.InDelta(t, 1.0, p.Home+p.Draw+p.Away, 1e-12)
	assert.Greater(t, p.Home, p.Away)

	assert.Equal(t, models.Odds{}, ImpliedProbabilities(models.Odds{}))
}

func TestKinematics(t *testing.T) {
	v, a := Kinematics([]float64{2.0, 2.2, 2.1})
	assert.InDelta(t, -0.1, v, 1e-12)
	assert.InDelta(t, -0.3, a, 1e-12)

	v, a = Kinematics([]float64{2.0})
	assert.Zero(t, v)
	assert.Zero(t, a)
}

func TestBuild_PrematchAndLive(t *testing.T) {
	imp := 1.5
	e := models.Event{
		ID:           "m1",
		Odds:         models.Odds{Home: 2.0, Draw: 3.2, Away: 3.8},
		OddsHistory:  []float64{2.1, 2.0},
		XGHome:       1.8,
		FormHome:     50,
		HomeStrength: 80,
		Over25Odds:   2.0,
		Importance:   &imp,
	}
	b := NewBuilder()

	f := b.Build(e, models.NormalizedInput{}, Options{})
	assert.Equal(t, 1.8, f.XGHome)
	assert.InDelta(t, 0.5, f.FormHome, 1e-6)
	assert.InDelta(t, 0.8, f.HomeStrength, 1e-12)
	assert.InDelta(t, 0.5, f.Over25Prob, 1e-12)
	assert.InDelta(t, -0.1, f.OddsVelocity, 1e-12)
	assert.Equal(t, 1.5, *f.Importance)
	assert.Nil(t, f.BankrollRatio)
	assert.Equal(t, 1.0, f.LiveIntensity)

	ratio := 0.4
	live := b.Build(e, models.NormalizedInput{}, Options{Live: true, BankrollRatio: &ratio})
	assert.True(t, live.Live)
	assert.Zero(t, live.XGHome)
	assert.Equal(t, 0.4, *live.BankrollRatio)
}

func TestBuild_FallsBackToNormalizedInput(t *testing.T) {
	in := models.NormalizedInput{MatchData: map[string]any{
		"odds":    map[string]any{"home": 2.5, "draw": 3.0, "away": 2.8},
		"xg_away": 1.1,
	}}
	f := NewBuilder().Build(models.Event{}, in, Options{})
	assert.Equal(t, 2.5, f.Odds.Home)
	assert.Equal(t, 1.1, f.XGAway)
}
