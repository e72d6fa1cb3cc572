package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records checkout and fulfillment activity.
type OrderMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkoutFailures *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	itemTransitions  *prometheus.CounterVec
	stockConflicts   prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures",
		Help: "Checkout attempts rejected, by reason.",
	}, []string{"reason"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created",
		Help: "Orders successfully placed.",
	})
	itemTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_item_transitions",
		Help: "Fulfillment transitions applied to order items.",
	}, []string{"from", "to"})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_conflicts",
		Help: "Checkouts aborted by a concurrent stock decrement.",
	})
	reg.MustRegister(checkoutDuration, checkoutFailures, ordersCreated, itemTransitions, stockConflicts)
	return &OrderMetrics{
		checkoutDuration: checkoutDuration,
		checkoutFailures: checkoutFailures,
		ordersCreated:    ordersCreated,
		itemTransitions:  itemTransitions,
		stockConflicts:   stockConflicts,
	}
}

// ObserveCheckout records the duration of one checkout attempt.
func (m *OrderMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncCheckoutFailure counts a rejected checkout by reason.
func (m *OrderMetrics) IncCheckoutFailure(reason string) {
	if m == nil || m.checkoutFailures == nil {
		return
	}
	m.checkoutFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncOrderCreated counts a committed checkout.
func (m *OrderMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncItemTransition counts one applied fulfillment transition.
func (m *OrderMetrics) IncItemTransition(from, to string) {
	if m == nil || m.itemTransitions == nil {
		return
	}
	m.itemTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncStockConflict counts a checkout aborted by insufficient stock.
func (m *OrderMetrics) IncStockConflict() {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
