package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_CountsOnIsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordEngineRun("market", true, 0.01)
	r.RecordEngineRun("market", false, 0.02)
	r.RecordDecision("single", true)
	r.RecordBankroll("kombi", 312.5)
	r.RecordError("engine_timeout")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.engineRuns.WithLabelValues("market", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.engineRuns.WithLabelValues("market", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.decisions.WithLabelValues("single", "true")))
	assert.Equal(t, 312.5, testutil.ToFloat64(r.bankroll.WithLabelValues("kombi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("engine_timeout")))
}
