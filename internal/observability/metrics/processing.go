package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProcessingMetrics tracks the simulated post-upload processing runs.
type ProcessingMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	scheduleLag     *prometheus.HistogramVec
}

func NewProcessingMetrics(service string) *ProcessingMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "documents_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "in_flight",
			Help:      "Number of scheduled or running processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	scheduleLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "processing",
			Name:      "schedule_lag_seconds",
			Help:      "Delay between scheduling and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 10, 30},
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, scheduleLag)

	return &ProcessingMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		scheduleLag:     scheduleLag,
	}
}

func (m *ProcessingMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *ProcessingMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *ProcessingMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *ProcessingMetrics) ObserveScheduleLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.scheduleLag.WithLabelValues(service).Observe(lag.Seconds())
}
