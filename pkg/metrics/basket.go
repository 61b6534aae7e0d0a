package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BasketMetrics counts basket mutations and durability failures.
type BasketMetrics struct {
	added    *prometheus.CounterVec
	cleared  prometheus.Counter
	failures *prometheus.CounterVec
}

// NewBasketMetrics registers the basket counters on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewBasketMetrics(reg prometheus.Registerer) *BasketMetrics {
	if reg == nil {
		return &BasketMetrics{}
	}
	added := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_items_added_total",
		Help: "Units added to baskets, by product code.",
	}, []string{"product_code"})
	cleared := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "basket_cleared_total",
		Help: "Basket clear operations.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_persist_failures_total",
		Help: "Basket repository failures, by operation.",
	}, []string{"op"})
	reg.MustRegister(added, cleared, failures)
	return &BasketMetrics{
		added:    added,
		cleared:  cleared,
		failures: failures,
	}
}

// ItemAdded increments the add counter for the product.
func (m *BasketMetrics) ItemAdded(productCode string) {
	if m == nil || m.added == nil {
		return
	}
	m.added.WithLabelValues(normalizeLabel(productCode)).Inc()
}

// Cleared increments the clear counter.
func (m *BasketMetrics) Cleared() {
	if m == nil || m.cleared == nil {
		return
	}
	m.cleared.Inc()
}

// PersistFailed increments the failure counter for the operation.
func (m *BasketMetrics) PersistFailed(op string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
