package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// IdeaGenerationTotal counts generation calls by outcome.
	IdeaGenerationTotal *prometheus.CounterVec
	// IdeaGenerationLatency records generation latency in milliseconds.
	IdeaGenerationLatency *prometheus.HistogramVec
	// IdeasGeneratedTotal counts ideas appended to session pools.
	IdeasGeneratedTotal prometheus.Counter
	// ShareTotal counts share link operations by outcome.
	ShareTotal *prometheus.CounterVec
	// ShareIDCollisions counts share identifiers drawn that were already taken.
	ShareIDCollisions prometheus.Counter
	// CheckoutSessionTotal counts checkout session creations by provider and outcome.
	CheckoutSessionTotal *prometheus.CounterVec
	// CheckoutWebhookTotal counts inbound checkout webhooks by outcome.
	CheckoutWebhookTotal *prometheus.CounterVec
	// QuoteExportTotal counts rendered quote documents by format.
	QuoteExportTotal *prometheus.CounterVec
	// WebsiteAnalysisTotal counts website analyses by outcome.
	WebsiteAnalysisTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		IdeaGenerationTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idea_generation_total",
			Help:      "Count of idea generation calls by outcome.",
		}, []string{"result"}))
		IdeaGenerationLatency = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "idea_generation_duration_ms",
			Help:      "Latency of idea generation calls in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2500, 5000, 10000, 20000, 40000},
		}, []string{"result"}))
		IdeasGeneratedTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ideas_generated_total",
			Help:      "Number of ideas added to session pools.",
		}))
		ShareTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_operations_total",
			Help:      "Count of share link operations by outcome.",
		}, []string{"operation", "result"}))
		ShareIDCollisions = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_id_collisions_total",
			Help:      "Number of drawn share identifiers that were already taken.",
		}))
		CheckoutSessionTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_session_total",
			Help:      "Count of checkout session creations by outcome.",
		}, []string{"provider", "result"}))
		CheckoutWebhookTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_webhook_total",
			Help:      "Count of processed checkout webhooks by outcome.",
		}, []string{"provider", "result"}))
		QuoteExportTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_export_total",
			Help:      "Count of rendered quote documents by format.",
		}, []string{"format"}))
		WebsiteAnalysisTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "website_analysis_total",
			Help:      "Count of website analyses by outcome.",
		}, []string{"result"}))
	})
}

// ObserveGeneration records one generation call. Safe before registration.
func ObserveGeneration(result string, took time.Duration, ideas int) {
	if IdeaGenerationTotal != nil {
		IdeaGenerationTotal.WithLabelValues(result).Inc()
	}
	if IdeaGenerationLatency != nil {
		IdeaGenerationLatency.WithLabelValues(result).Observe(DurationMillis(took))
	}
	if IdeasGeneratedTotal != nil && ideas > 0 {
		IdeasGeneratedTotal.Add(float64(ideas))
	}
}

// ObserveShare records a share operation outcome.
func ObserveShare(operation, result string) {
	if ShareTotal != nil {
		ShareTotal.WithLabelValues(operation, result).Inc()
	}
}

// ObserveShareCollision records a drawn identifier that was already taken.
func ObserveShareCollision() {
	if ShareIDCollisions != nil {
		ShareIDCollisions.Inc()
	}
}

// ObserveCheckout records a checkout session creation outcome.
func ObserveCheckout(provider, result string) {
	if CheckoutSessionTotal != nil {
		CheckoutSessionTotal.WithLabelValues(provider, result).Inc()
	}
}

// ObserveCheckoutWebhook records a checkout webhook outcome.
func ObserveCheckoutWebhook(provider, result string) {
	if CheckoutWebhookTotal != nil {
		CheckoutWebhookTotal.WithLabelValues(provider, result).Inc()
	}
}

// ObserveQuoteExport records a rendered quote document.
func ObserveQuoteExport(format string) {
	if QuoteExportTotal != nil {
		QuoteExportTotal.WithLabelValues(format).Inc()
	}
}

// ObserveWebsiteAnalysis records a website analysis outcome.
func ObserveWebsiteAnalysis(result string) {
	if WebsiteAnalysisTotal != nil {
		WebsiteAnalysisTotal.WithLabelValues(result).Inc()
	}
}
