package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// CheckoutMetrics records payment intent, promotion and product sync outcomes.
type CheckoutMetrics struct {
	intents      *prometheus.CounterVec
	intentAmount prometheus.Histogram
	promotions   *prometheus.CounterVec
	syncs        *prometheus.CounterVec
	syncDuration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout collectors on reg. A nil registerer
// yields a recorder that drops every observation.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Payment intent requests by outcome.",
	}, []string{"outcome"})
	intentAmount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_intent_amount_cents",
		Help:      "Charged amount of created payment intents in cents.",
		Buckets:   []float64{50, 100, 500, 1000, 2500, 5000, 10000, 25000, 50000},
	})
	promotions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotions_total",
		Help:      "Promotion resolutions by result and reason.",
	}, []string{"result", "reason"})
	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_syncs_total",
		Help:      "Product price synchronizations by result.",
	}, []string{"result"})
	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "product_sync_duration_seconds",
		Help:      "Duration of product price synchronizations.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(intents, intentAmount, promotions, syncs, syncDuration)
	return &CheckoutMetrics{
		intents:      intents,
		intentAmount: intentAmount,
		promotions:   promotions,
		syncs:        syncs,
		syncDuration: syncDuration,
	}
}

// IntentOutcome counts one payment intent request.
func (c *CheckoutMetrics) IntentOutcome(outcome string) {
	if c == nil || c.intents == nil {
		return
	}
	c.intents.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IntentAmount observes the charged amount of a created intent.
func (c *CheckoutMetrics) IntentAmount(cents int64) {
	if c == nil || c.intentAmount == nil {
		return
	}
	c.intentAmount.Observe(float64(cents))
}

// PromotionApplied counts a promotion that discounted a cart.
func (c *CheckoutMetrics) PromotionApplied() {
	if c == nil || c.promotions == nil {
		return
	}
	c.promotions.WithLabelValues("applied", "").Inc()
}

// PromotionIgnored counts a skipped promotion with its reason.
func (c *CheckoutMetrics) PromotionIgnored(reason string) {
	if c == nil || c.promotions == nil {
		return
	}
	c.promotions.WithLabelValues("ignored", normalizeLabel(reason)).Inc()
}

// SyncResult counts a product sync and observes its duration.
func (c *CheckoutMetrics) SyncResult(success bool, duration time.Duration) {
	if c == nil || c.syncs == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	c.syncs.WithLabelValues(result).Inc()
	c.syncDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
