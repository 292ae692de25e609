package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TipFusion/internal/domain/models"
)

func out(engine string, h, d, a, conf float64) models.EngineOutput {
	return models.EngineOutput{
		Engine:        engine,
		Probabilities: &models.Probabilities{Home: h, Draw: d, Away: a},
		Confidence:    conf,
	}
}

func TestFuse_EmptyReturnsUniform(t *testing.T) {
	f := Fuse(map[string]models.EngineOutput{})
	assert.InDelta(t, 1.0/3, f.Home, 1e-12)
	assert.InDelta(t, 1.0/3, f.Draw, 1e-12)
	assert.InDelta(t, 1.0/3, f.Away, 1e-12)
	assert.Equal(t, 0.0, f.Confidence)

	assert.Equal(t, Fallback(), Fuse(nil))
}

func TestFuse_ConfidenceWeighted(t *testing.T) {
	f := Fuse(map[string]models.EngineOutput{
		"a": out("a", 0.6, 0.2, 0.2, 0.75),
		"b": out("b", 0.2, 0.4, 0.4, 0.25),
	})

	// weighted: home = (0.45 + 0.05) / 1 = 0.5
	assert.InDelta(t, 0.5, f.Home, 1e-9)
	assert.InDelta(t, 0.25, f.Draw, 1e-9)
	assert.InDelta(t, 0.25, f.Away, 1e-9)
	assert.InDelta(t, 0.5, f.Confidence, 1e-9)
	assert.Equal(t, []string{"a", "b"}, f.Engines)
}

func TestFuse_ZeroConfidenceIgnored(t *testing.T) {
	f := Fuse(map[string]models.EngineOutput{
		"a": out("a", 0.7, 0.2, 0.1, 0.8),
		"z": out("z", 0.0, 0.0, 1.0, 0),
	})
	assert.InDelta(t, 0.7, f.Home, 1e-9)
	assert.InDelta(t, 0.8, f.Confidence, 1e-9)
	assert.Equal(t, []string{"a"}, f.Engines)
}

func TestFuse_AllZeroConfidenceFallsBack(t *testing.T) {
	f := Fuse(map[string]models.EngineOutput{"z": out("z", 1, 0, 0, 0)})
	assert.Equal(t, Fallback(), f)
}

func TestFuse_Renormalizes(t *testing.T) {
	f := Fuse(map[string]models.EngineOutput{"a": out("a", 0.5, 0.5, 0.5, 1)})
	assert.InDelta(t, 1.0, f.Sum(), 1e-12)
	assert.InDelta(t, 1.0/3, f.Home, 1e-12)
}

func TestFuse_BoundsHoldForOutOfRangeInputs(t *testing.T) {
	f := Fuse(map[string]models.EngineOutput{
		"a": out("a", 1.4, -0.2, 0.3, 3),
		"b": out("b", 0.1, 0.1, 0.8, 0.4),
	})
	for _, p := range []float64{f.Home, f.Draw, f.Away, f.Confidence} {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
	assert.InDelta(t, 1.0, f.Sum(), 1e-12)
}

func TestStandardize_DefaultsConfidence(t *testing.T) {
	o := Standardize("x", models.ModelOutput{})
	assert.Equal(t, 0.5, o.Confidence)
	assert.Nil(t, o.Probabilities)

	c := 1.3
	o = Standardize("x", models.ModelOutput{Confidence: &c, Probabilities: &models.Probabilities{Home: 1}})
	assert.Equal(t, 1.0, o.Confidence)
	require.NotNil(t, o.Probabilities)
}

func TestSuccessful(t *testing.T) {
	o := out("a", 0.5, 0.3, 0.2, 1)
	got := Successful(map[string]models.EngineResult{
		"a": {Success: true, Data: &o},
		"b": {Success: false, Error: "boom"},
	})
	assert.Len(t, got, 1)
	assert.Contains(t, got, "a")
}
