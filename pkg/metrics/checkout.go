package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the order submission pipeline.
type CheckoutMetrics struct {
	duration            *prometheus.HistogramVec
	ordersCreated       prometheus.Counter
	ordersFailed        prometheus.Counter
	couponRedemptions   prometheus.Counter
	referralConversions prometheus.Counter
	rewardFailures      prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders durably persisted.",
	})
	ordersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Order submissions aborted before persistence succeeded.",
	})
	couponRedemptions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coupon_redemptions_total",
		Help: "Coupon usage commits applied after order persistence.",
	})
	referralConversions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "referral_conversions_total",
		Help: "Referral rows flipped to used on a first qualifying order.",
	})
	rewardFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "referral_reward_failures_total",
		Help: "Reward coupons that could not be issued after a conversion.",
	})
	reg.MustRegister(duration, ordersCreated, ordersFailed, couponRedemptions, referralConversions, rewardFailures)
	return &CheckoutMetrics{
		duration:            duration,
		ordersCreated:       ordersCreated,
		ordersFailed:        ordersFailed,
		couponRedemptions:   couponRedemptions,
		referralConversions: referralConversions,
		rewardFailures:      rewardFailures,
	}
}

// ObserveDuration records the submission duration with its outcome label.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncOrdersCreated increments the successful order counter.
func (c *CheckoutMetrics) IncOrdersCreated() {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.Inc()
}

// IncOrdersFailed increments the failed submission counter.
func (c *CheckoutMetrics) IncOrdersFailed() {
	if c == nil || c.ordersFailed == nil {
		return
	}
	c.ordersFailed.Inc()
}

// IncCouponRedemptions increments the committed coupon usage counter.
func (c *CheckoutMetrics) IncCouponRedemptions() {
	if c == nil || c.couponRedemptions == nil {
		return
	}
	c.couponRedemptions.Inc()
}

// IncReferralConversions increments the converted referral counter.
func (c *CheckoutMetrics) IncReferralConversions() {
	if c == nil || c.referralConversions == nil {
		return
	}
	c.referralConversions.Inc()
}

// IncRewardFailures increments the failed reward issuance counter.
func (c *CheckoutMetrics) IncRewardFailures() {
	if c == nil || c.rewardFailures == nil {
		return
	}
	c.rewardFailures.Inc()
}
