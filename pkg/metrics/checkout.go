package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the terminal outcome of checkout attempts and the
// latency of the availability partition step.
type CheckoutMetrics struct {
	attempts          *prometheus.CounterVec
	couponRejections  *prometheus.CounterVec
	partitionDuration *prometheus.HistogramVec
	skippedLines      prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by terminal outcome.",
	}, []string{"outcome"})
	couponRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_rejections_total",
		Help: "Coupon validation rejections by reason.",
	}, []string{"reason"})
	partitionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_partition_seconds",
		Help:    "Duration of the availability partition step in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{})
	skippedLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_skipped_lines_total",
		Help: "Cart lines excluded from persistence because resolution failed.",
	})
	reg.MustRegister(attempts, couponRejections, partitionDuration, skippedLines)
	return &CheckoutMetrics{
		attempts:          attempts,
		couponRejections:  couponRejections,
		partitionDuration: partitionDuration,
		skippedLines:      skippedLines,
	}
}

// IncAttempt increments the attempt counter for the given terminal outcome.
func (c *CheckoutMetrics) IncAttempt(outcome string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCouponRejection increments the rejection counter for the given reason.
func (c *CheckoutMetrics) IncCouponRejection(reason string) {
	if c == nil || c.couponRejections == nil {
		return
	}
	c.couponRejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObservePartition records the duration of one partition pass.
func (c *CheckoutMetrics) ObservePartition(duration time.Duration) {
	if c == nil || c.partitionDuration == nil {
		return
	}
	c.partitionDuration.WithLabelValues().Observe(duration.Seconds())
}

// AddSkippedLines counts lines dropped from persistence for this attempt.
func (c *CheckoutMetrics) AddSkippedLines(n int) {
	if c == nil || c.skippedLines == nil || n <= 0 {
		return
	}
	c.skippedLines.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
