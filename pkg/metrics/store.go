package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records entity store activity. A persist failure means the
// in-memory snapshot diverged from durable storage; dashboards alert on it
// so degraded mode is never silent.
type StoreMetrics struct {
	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	subscribers     *prometheus.GaugeVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_mutations_total",
		Help: "Mutations applied per entity store and operation.",
	}, []string{"entity", "op"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_persist_failures_total",
		Help: "Durable-storage write failures per entity store.",
	}, []string{"entity"})
	subscribers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "store_subscribers",
		Help: "Active snapshot subscribers per entity store.",
	}, []string{"entity"})
	reg.MustRegister(mutations, persistFailures, subscribers)
	return &StoreMetrics{
		mutations:       mutations,
		persistFailures: persistFailures,
		subscribers:     subscribers,
	}
}

// IncMutation counts one applied mutation for the named entity and operation.
func (s *StoreMetrics) IncMutation(entity, op string) {
	if s == nil || s.mutations == nil {
		return
	}
	s.mutations.WithLabelValues(normalizeLabel(entity), normalizeLabel(op)).Inc()
}

// IncPersistFailure counts one durable write failure for the named entity.
func (s *StoreMetrics) IncPersistFailure(entity string) {
	if s == nil || s.persistFailures == nil {
		return
	}
	s.persistFailures.WithLabelValues(normalizeLabel(entity)).Inc()
}

// SetSubscribers records the current subscriber count for the named entity.
func (s *StoreMetrics) SetSubscribers(entity string, count int) {
	if s == nil || s.subscribers == nil {
		return
	}
	s.subscribers.WithLabelValues(normalizeLabel(entity)).Set(float64(count))
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
