package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Conversion event outcomes.
const (
	OutcomeEnqueued = "enqueued"
	OutcomeDropped  = "dropped"
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
)

// StorefrontMetrics tracks business counters: orders and conversion events.
type StorefrontMetrics struct {
	orders      *prometheus.CounterVec
	conversions *prometheus.CounterVec
	stockouts   prometheus.Counter
}

// NewStorefrontMetrics registers the storefront counters on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders placed, by source.",
	}, []string{"source"})
	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "conversion_events_total",
		Help: "Server-side conversion events, by event name and outcome.",
	}, []string{"event", "outcome"})
	stockouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_stock_conflicts_total",
		Help: "Order attempts rejected for insufficient stock.",
	})
	reg.MustRegister(orders, conversions, stockouts)
	return &StorefrontMetrics{orders: orders, conversions: conversions, stockouts: stockouts}
}

// IncOrder counts a placed order.
func (m *StorefrontMetrics) IncOrder(source string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncConversion counts a conversion event outcome.
func (m *StorefrontMetrics) IncConversion(event, outcome string) {
	if m == nil || m.conversions == nil {
		return
	}
	m.conversions.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// IncStockConflict counts an order rejected for stock.
func (m *StorefrontMetrics) IncStockConflict() {
	if m == nil || m.stockouts == nil {
		return
	}
	m.stockouts.Inc()
}
