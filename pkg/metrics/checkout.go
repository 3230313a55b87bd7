package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks completed and rejected checkouts at the till.
type CheckoutMetrics struct {
	orders   *prometheus.CounterVec
	failures *prometheus.CounterVec
	revenue  *prometheus.HistogramVec
	duration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on reg. A nil registerer
// yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Orders created by checkout.",
	}, []string{"payment_method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkouts rejected before an order was written.",
	}, []string{"reason"})
	revenue := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_order_total_amount",
		Help:    "Total due per order.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"payment_method"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Time spent pricing and persisting a checkout.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(orders, failures, revenue, duration)
	return &CheckoutMetrics{
		orders:   orders,
		failures: failures,
		revenue:  revenue,
		duration: duration,
	}
}

// ObserveOrder records a committed order.
func (c *CheckoutMetrics) ObserveOrder(paymentMethod string, total float64, took time.Duration) {
	if c == nil || c.orders == nil {
		return
	}
	label := normalizeLabel(paymentMethod)
	c.orders.WithLabelValues(label).Inc()
	c.revenue.WithLabelValues(label).Observe(total)
	c.duration.Observe(took.Seconds())
}

// IncFailure counts a rejected checkout by error code.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
