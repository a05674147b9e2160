package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the client.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ErrorsTotal      *prometheus.CounterVec
	RetriesTotal     prometheus.Counter
	ProductsLoaded   prometheus.Counter
	FallbacksTotal   prometheus.Counter
	ScrollTriggers   *prometheus.CounterVec
	CampaignsCreated prometheus.Counter
	ExportedTotal    prometheus.Counter
	ExportSkipped    *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigns_api_requests_total",
			Help: "Total HTTP requests issued to the campaign API.",
		},
		[]string{"endpoint"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campaigns_api_request_duration_seconds",
			Help:    "HTTP request latency for campaign API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigns_api_errors_total",
			Help: "Total number of API errors by type.",
		},
		[]string{"error_type"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigns_api_retries_total",
			Help: "Total number of retry attempts for listing requests.",
		},
	)
	productsLoaded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigns_catalog_products_loaded_total",
			Help: "Total number of products merged into catalog state.",
		},
	)
	fallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigns_catalog_fallbacks_total",
			Help: "Total number of fetches answered with the built-in sample catalog.",
		},
	)
	scrollTriggers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigns_scroll_triggers_total",
			Help: "Total number of load-more triggers by detection source.",
		},
		[]string{"source"},
	)
	campaigns := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigns_generated_total",
			Help: "Total number of campaigns generated successfully.",
		},
	)

	exported := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigns_export_products_total",
			Help: "Total number of products written by catalog exports.",
		},
	)
	exportSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigns_export_skipped_total",
			Help: "Products left out of catalog exports by reason.",
		},
		[]string{"reason"},
	)

	registry.MustRegister(requests, requestDuration, errorsTotal, retries, productsLoaded, fallbacks, scrollTriggers, campaigns, exported, exportSkipped)

	return &Metrics{
		Registry:         registry,
		RequestsTotal:    requests,
		RequestDuration:  requestDuration,
		ErrorsTotal:      errorsTotal,
		RetriesTotal:     retries,
		ProductsLoaded:   productsLoaded,
		FallbacksTotal:   fallbacks,
		ScrollTriggers:   scrollTriggers,
		CampaignsCreated: campaigns,
		ExportedTotal:    exported,
		ExportSkipped:    exportSkipped,
	}
}

// IncRequest increments the requests counter for an endpoint.
func (m *Metrics) IncRequest(endpoint string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// AddProducts adds n to the loaded products counter.
func (m *Metrics) AddProducts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ProductsLoaded.Add(float64(n))
}

// IncFallback increments the fallback counter.
func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.FallbacksTotal.Inc()
}

// IncScrollTrigger increments the trigger counter for a detection source.
func (m *Metrics) IncScrollTrigger(source string) {
	if m == nil {
		return
	}
	m.ScrollTriggers.WithLabelValues(source).Inc()
}

// IncCampaigns increments the generated campaigns counter.
func (m *Metrics) IncCampaigns() {
	if m == nil {
		return
	}
	m.CampaignsCreated.Inc()
}

// AddExported adds n to the exported products counter.
func (m *Metrics) AddExported(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ExportedTotal.Add(float64(n))
}

// IncExportSkipped counts one product left out of an export.
func (m *Metrics) IncExportSkipped(reason string) {
	if m == nil {
		return
	}
	m.ExportSkipped.WithLabelValues(reason).Inc()
}
