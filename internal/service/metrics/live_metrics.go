package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	LiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tipfusion",
			Subsystem: "live",
			Name:      "clients",
			Help:      "Connected live tip WebSocket clients",
		},
	)

	LiveDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipfusion",
			Subsystem: "live",
			Name:      "deliveries_total",
			Help:      "Live broadcast deliveries by result",
		},
		[]string{"result"},
	)

	LiveUpdateLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tipfusion",
			Subsystem: "live",
			Name:      "update_latency_seconds",
			Help:      "Latency from odds update to live decision",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"sport"},
	)
)

// Register adds the live collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(LiveClients, LiveDeliveries, LiveUpdateLatency)
	})
}
