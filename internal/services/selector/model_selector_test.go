package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
)

func prec(v float64) *float64 { return &v }

func TestSelectModel_EmptyStoreFallsBack(t *testing.T) {
	s := New()
	assert.Equal(t, FallbackModel, s.SelectModel(models.Event{League: "EPL"}))
	assert.Equal(t, FallbackModel, s.Route(models.Event{}, nil))
}

func TestSelectModel_ScoresAndStableTies(t *testing.T) {
	s := New()
	s.RegisterModel("a", models.ModelStats{ROI: 0.1, Precision: prec(0.6)})
	s.RegisterModel("b", models.ModelStats{ROI: 0.1, Precision: prec(0.6)})
	s.RegisterModel("c", models.ModelStats{ROI: 0.0, Drift: 0.2})

	assert.Equal(t, "a", s.SelectModel(models.Event{}))

	s.RegisterModel("c", models.ModelStats{ROI: 0.5})
	assert.Equal(t, "c", s.SelectModel(models.Event{}))
	names, _ := s.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestSelectModel_LeaguePreference(t *testing.T) {
	s := New(WithLeaguePreferences(map[string][]string{"NB1": {"ghost", "b"}}))
	s.RegisterModel("a", models.ModelStats{ROI: 0.9})
	s.RegisterModel("b", models.ModelStats{ROI: 0.1})

	assert.Equal(t, "b", s.SelectModel(models.Event{League: "NB1"}))
	assert.Equal(t, "a", s.SelectModel(models.Event{League: "EPL"}))

	s.SetLeaguePreference("EPL", []string{"ghost"})
	assert.Equal(t, FallbackModel, s.SelectModel(models.Event{League: "EPL"}))
}

func TestScore(t *testing.T) {
	assert.InDelta(t, 0.1*0.5+0.5*0.4-0.3*0.1, Score(models.ModelStats{ROI: 0.1, Drift: 0.3}), 1e-12)
}

func TestApplyMetaDecision_Policies(t *testing.T) {
	build := func(p PenaltyPolicy) *ModelSelector {
		s := New(WithPenaltyPolicy(p))
		s.RegisterModel("a", models.ModelStats{ROI: 0.0})
		s.RegisterModel("b", models.ModelStats{ROI: 0.2})
		s.RegisterModel("c", models.ModelStats{ROI: 0.6})
		return s
	}
	penalize := func(m string) *models.MetaDecision {
		return &models.MetaDecision{ModelPenalty: map[string]float64{m: 0.5}}
	}

	legacy := build(PenaltyFirstRegistered)
	assert.Equal(t, "a", legacy.ApplyMetaDecision("c", penalize("c")))
	assert.Equal(t, "b", legacy.ApplyMetaDecision("a", penalize("a")))

	next := build(PenaltyNextBest)
	assert.Equal(t, "b", next.ApplyMetaDecision("c", penalize("c")))
	assert.Equal(t, "c", next.ApplyMetaDecision("a", penalize("a")))
}

func TestApplyMetaDecision_BoostAndThresholds(t *testing.T) {
	s := New()
	s.RegisterModel("a", models.ModelStats{})
	s.RegisterModel("b", models.ModelStats{})

	assert.Equal(t, "b", s.ApplyMetaDecision("b", nil))
	assert.Equal(t, "b", s.ApplyMetaDecision("b", &models.MetaDecision{
		ModelBoost:   map[string]float64{"b": 0.2},
		ModelPenalty: map[string]float64{"b": 0.9},
	}))
	assert.Equal(t, "b", s.ApplyMetaDecision("b", &models.MetaDecision{ModelPenalty: map[string]float64{"b": 0.1}}))
	assert.Equal(t, "a", s.ApplyMetaDecision("b", &models.MetaDecision{ModelPenalty: map[string]float64{"b": 0.11}}))

	only := New()
	only.RegisterModel("solo", models.ModelStats{})
	assert.Equal(t, "solo", only.ApplyMetaDecision("solo", &models.MetaDecision{ModelPenalty: map[string]float64{"solo": 1}}))
}

func TestParsePenaltyPolicy(t *testing.T) {
	p, err := ParsePenaltyPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PenaltyFirstRegistered, p)

	_, err = ParsePenaltyPolicy("random")
	assert.Error(t, err)
}
