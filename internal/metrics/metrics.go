// Package metrics registers the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaywallDenials counts requests rejected by the entitlement middleware.
	PaywallDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "selah_paywall_denials_total",
		Help: "Requests rejected because the trial expired or was blocked.",
	})

	// QuotaDenials counts message sends rejected by the daily trial quota.
	QuotaDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "selah_quota_denials_total",
		Help: "Message consumptions rejected by the daily trial quota.",
	})

	// PremiumActivations counts successful premium activations by source.
	PremiumActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "selah_premium_activations_total",
		Help: "Premium activations by source (checkout, webhook, restore, code).",
	}, []string{"source"})
)
