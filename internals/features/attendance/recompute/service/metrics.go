package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics untuk pipeline recompute. reg nil → tidak diregistrasi (dipakai di test).
type Metrics struct {
	Runs              *prometheus.CounterVec
	Duration          *prometheus.HistogramVec
	SubjectsUpdated   prometheus.Counter
	InFlight          prometheus.Gauge
	Coalesced         prometheus.Counter
	FallbackEstimates prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hajri",
			Subsystem: "recompute",
			Name:      "runs_total",
			Help:      "Recompute runs by trigger and final status.",
		}, []string{"trigger", "status"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hajri",
			Subsystem: "recompute",
			Name:      "duration_seconds",
			Help:      "Wall time of a single recompute run.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"trigger"}),
		SubjectsUpdated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hajri",
			Subsystem: "recompute",
			Name:      "subjects_updated_total",
			Help:      "Summary and prediction pairs written.",
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "hajri",
			Subsystem: "recompute",
			Name:      "in_flight",
			Help:      "Recompute runs currently executing.",
		}),
		Coalesced: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hajri",
			Subsystem: "recompute",
			Name:      "coalesced_total",
			Help:      "Triggers merged into an already queued run.",
		}),
		FallbackEstimates: f.NewCounter(prometheus.CounterOpts{
			Namespace: "hajri",
			Subsystem: "recompute",
			Name:      "fallback_estimates_total",
			Help:      "Subjects whose remaining classes were estimated without a semester total.",
		}),
	}
}
