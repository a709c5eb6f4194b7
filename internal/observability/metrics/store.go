package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/store"
)

// StoreMetrics mirrors store activity. Listener keeps it current.
type StoreMetrics struct {
	registry *prometheus.Registry

	mutationsTotal *prometheus.CounterVec
	documents      *prometheus.GaugeVec
	loading        prometheus.Gauge
	sequence       prometheus.Gauge
}

func NewStoreMetrics(service string) *StoreMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	mutationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "store",
			Name:        "mutations_total",
			Help:        "Total store mutations by action.",
			ConstLabels: constLabels,
		},
		[]string{"action"},
	)
	documents := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "store",
			Name:        "documents",
			Help:        "Documents currently held by status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	loading := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "store",
			Name:        "loading",
			Help:        "1 while the workspace busy flag is set.",
			ConstLabels: constLabels,
		},
	)
	sequence := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "store",
			Name:        "sequence",
			Help:        "Sequence number of the last applied mutation.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(mutationsTotal, documents, loading, sequence)

	return &StoreMetrics{
		registry:       registry,
		mutationsTotal: mutationsTotal,
		documents:      documents,
		loading:        loading,
		sequence:       sequence,
	}
}

func (m *StoreMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *StoreMetrics) Listener() store.Listener {
	return m.Observe
}

func (m *StoreMetrics) Observe(change store.Change) {
	m.mutationsTotal.WithLabelValues(string(change.Action)).Inc()

	stats := domain.CountByStatus(change.State.Documents)
	m.documents.WithLabelValues(string(domain.StatusProcessing)).Set(float64(stats.Processing))
	m.documents.WithLabelValues(string(domain.StatusCompleted)).Set(float64(stats.Completed))
	m.documents.WithLabelValues(string(domain.StatusError)).Set(float64(stats.Error))

	if change.State.IsLoading {
		m.loading.Set(1)
	} else {
		m.loading.Set(0)
	}
	m.sequence.Set(float64(change.Sequence))
}
