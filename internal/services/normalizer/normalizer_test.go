package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
)

func TestNormalize_EmptyInput(t *testing.T) {
	n := Normalize(map[string]any{})

	assert.Equal(t, map[string]any{}, n.MatchData)
	assert.Equal(t, map[string]any{}, n.Stats)
	assert.Equal(t, []any{}, n.Sequence)
	assert.Equal(t, map[string]any{}, n.Graph)
	assert.Equal(t, map[string]any{}, n.PlayerStats)
	assert.Equal(t, map[string]any{}, n.LiveFeed)
	assert.Equal(t, map[string]any{}, n.Metadata)
	assert.Len(t, n.AsMap(), 7)
}

func TestNormalize_NilInput(t *testing.T) {
	n := Normalize(nil)
	assert.NotNil(t, n.MatchData)
	assert.NotNil(t, n.Sequence)
}

func TestNormalize_MergesTopLevelOdds(t *testing.T) {
	raw := map[string]any{
		"match_data": map[string]any{"league": "NB1"},
		"odds":       map[string]any{"home": 1.8, "draw": 3.4, "away": 4.2},
	}
	n := Normalize(raw)

	assert.Equal(t, "NB1", n.MatchString("league"))
	assert.Equal(t, models.Odds{Home: 1.8, Draw: 3.4, Away: 4.2}, n.Odds())
	_, mutated := raw["match_data"].(map[string]any)["odds"]
	assert.False(t, mutated)
}

func TestNormalize_MistypedSectionsDefault(t *testing.T) {
	n := Normalize(map[string]any{
		"stats":    "not a map",
		"sequence": 42,
		"graph":    []int{1},
	})
	assert.Equal(t, map[string]any{}, n.Stats)
	assert.Equal(t, []any{}, n.Sequence)
	assert.Equal(t, map[string]any{}, n.Graph)
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]any{
		"match_data": map[string]any{"xg_home": 1.4},
		"odds":       map[string]any{"home": 2.0},
		"sequence":   []any{2.1, 2.0},
		"metadata":   map[string]any{"source": "feed"},
	}
	once := Normalize(raw)
	twice := Normalize(once.AsMap())
	require.Equal(t, once, twice)
	assert.Equal(t, once, NormalizeInput(once))
}

func TestNormalize_EventRawInput(t *testing.T) {
	e := models.Event{
		ID:          "m1",
		League:      "EPL",
		Odds:        models.Odds{Home: 2.1, Draw: 3.3, Away: 3.6},
		OddsHistory: []float64{2.2, 2.1},
		XGHome:      1.7,
	}
	n := Normalize(e.RawInput())

	assert.Equal(t, "m1", n.MatchString("match_id"))
	assert.Equal(t, 2.1, n.Odds().Home)
	assert.Equal(t, 1.7, n.MatchFloatOr("xg_home", 0))
	assert.Len(t, n.Sequence, 2)
}
