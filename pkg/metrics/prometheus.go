package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	engineRuns   *prometheus.CounterVec
	engineTime   *prometheus.HistogramVec
	decisions    *prometheus.CounterVec
	bankroll     *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		messagesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tipfusion_messages_sent_total",
				Help: "Total number of messages sent to a sink",
			},
			[]string{"sink", "kind"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tipfusion_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		engineRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tipfusion_engine_runs_total",
				Help: "Scoring engine invocations by outcome",
			},
			[]string{"engine", "success"},
		),
		engineTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tipfusion_engine_duration_seconds",
				Help:    "Scoring engine run time in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"engine"},
		),
		decisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tipfusion_decisions_total",
				Help: "Decisions produced per pool and admission result",
			},
			[]string{"pool", "admitted"},
		),
		bankroll: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tipfusion_bankroll",
				Help: "Current bankroll per pool",
			},
			[]string{"pool"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tipfusion_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordMessageSent records a message sent to a sink (kafka, clickhouse, ws).
func (r *Recorder) RecordMessageSent(sink, kind string) {
	r.messagesSent.WithLabelValues(sink, kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordEngineRun(engine string, success bool, seconds float64) {
	r.engineRuns.WithLabelValues(engine, strconv.FormatBool(success)).Inc()
	r.engineTime.WithLabelValues(engine).Observe(seconds)
}

func (r *Recorder) RecordDecision(pool string, admitted bool) {
	r.decisions.WithLabelValues(pool, strconv.FormatBool(admitted)).Inc()
}

func (r *Recorder) RecordBankroll(pool string, bankroll float64) {
	r.bankroll.WithLabelValues(pool).Set(bankroll)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordMessageSent(string, string) {}
func (Nop) RecordError(string) {}
func (Nop) RecordEngineRun(string, bool, float64) {}
func (Nop) RecordDecision(string, bool) {}
func (Nop) RecordBankroll(string, float64) {}
func (Nop) RecordLatency(string, float64) {}
