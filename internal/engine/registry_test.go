package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctorNamed(name string) Constructor {
	return func(cfg map[string]any) (Engine, error) {
		b := NewBase(name, "", cfg)
		return &bareEngine{Base: b}, nil
	}
}

func TestRegistry_NormalizesAndLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register("Market", ctorNamed("first"))
	r.Register("  MARKET ", ctorNamed("second"))
	r.Register("form", ctorNamed("form"))

	assert.Equal(t, []string{"market", "form"}, r.ListEngines())

	e, err := r.CreateInstance("market", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", e.Name())
	assert.True(t, r.Has("FORM"))
}

func TestRegistry_UnknownEngine(t *testing.T) {
	r := NewRegistry()
	_, err := r.CreateInstance("nope", nil)
	require.Error(t, err)

	var ue *UnknownEngineError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "nope", ue.ID)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRegistry_ConstructorError(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", func(map[string]any) (Engine, error) { return nil, errors.New("no url") })

	_, err := r.CreateInstance("broken", nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register("market", ctorNamed("market"))
		}()
		go func() {
			defer wg.Done()
			_ = r.ListEngines()
			_, _ = r.CreateInstance("market", nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"market"}, r.ListEngines())
}
