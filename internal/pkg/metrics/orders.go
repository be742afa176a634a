// internal/pkg/metrics/orders.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order pipeline outcomes.
type OrderMetrics struct {
	previews *prometheus.CounterVec
	commits  *prometheus.CounterVec
	failures *prometheus.CounterVec
	revenue  *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op collector.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	previews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_previews_total",
		Help: "Order totals computed in preview mode.",
	}, []string{"coupon"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders committed, by payment method.",
	}, []string{"payment_method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_build_failures_total",
		Help: "Order build failures, by error code.",
	}, []string{"code"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_grand_total_rupees",
		Help: "Sum of committed order grand totals.",
	}, []string{"payment_method"})
	reg.MustRegister(previews, commits, failures, revenue)
	return &OrderMetrics{
		previews: previews,
		commits:  commits,
		failures: failures,
		revenue:  revenue,
	}
}

// IncPreview records a preview computation.
func (m *OrderMetrics) IncPreview(withCoupon bool) {
	if m == nil || m.previews == nil {
		return
	}
	label := "none"
	if withCoupon {
		label = "applied"
	}
	m.previews.WithLabelValues(label).Inc()
}

// ObserveCommit records a committed order and its grand total.
func (m *OrderMetrics) ObserveCommit(paymentMethod string, grandTotal float64) {
	if m == nil || m.commits == nil {
		return
	}
	method := normalizeLabel(paymentMethod)
	m.commits.WithLabelValues(method).Inc()
	m.revenue.WithLabelValues(method).Add(grandTotal)
}

// IncFailure records a failed build by error code.
func (m *OrderMetrics) IncFailure(code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
