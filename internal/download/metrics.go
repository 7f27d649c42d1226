package download

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/handiism/apkpure-downloader/internal/model"
)

// Metrics counts what a Manager did. It owns its registry so several
// managers (and tests) never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	outcomes        *prometheus.CounterVec
	attempts        prometheus.Counter
	active          prometheus.Gauge
	listingDuration prometheus.Histogram
}

// NewMetrics creates and registers the download metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apkpure",
			Name:      "requests_total",
			Help:      "Download requests by terminal outcome.",
		}, []string{"outcome"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "apkpure",
			Name:      "download_attempts_total",
			Help:      "Calls to the download capability, retries included.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "apkpure",
			Name:      "active_requests",
			Help:      "Requests currently holding a concurrency slot.",
		}),
		listingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apkpure",
			Name:      "listing_fetch_seconds",
			Help:      "Time spent fetching version listing pages.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(m.outcomes, m.attempts, m.active, m.listingDuration)

	// Pre-create every outcome series so exports show zeros.
	for _, o := range model.Outcomes() {
		m.outcomes.WithLabelValues(o.String())
	}

	return m
}

// Registry returns the registry holding the download metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format, suitable
// for the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeOutcome(o model.Outcome) {
	m.outcomes.WithLabelValues(o.String()).Inc()
}

func (m *Metrics) observeListing(d time.Duration) {
	m.listingDuration.Observe(d.Seconds())
}
