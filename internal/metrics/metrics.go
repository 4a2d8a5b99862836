// Package metrics exposes Prometheus collectors for scrape runs.
package metrics

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Row outcomes recorded by the enricher.
const (
	RowUpdated         = "updated"
	RowNotFound        = "not_found"
	RowFailed          = "failed"
	RowSkippedComplete = "skipped_complete"
	RowSkippedBlank    = "skipped_blank"
)

// Recorder owns a private registry so runs and tests never collide on the
// global default registerer. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	rowsTotal             *prometheus.CounterVec
	fetchesTotal          *prometheus.CounterVec
	fetchBytesTotal       *prometheus.CounterVec
	fetchDurationSeconds  *prometheus.HistogramVec
	rateLimitDelaySeconds *prometheus.HistogramVec
}

// New registers the scrape collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_scraper_rows_total",
				Help: "Total number of table rows processed, labeled by outcome.",
			},
			[]string{"outcome"},
		),
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_scraper_fetches_total",
				Help: "Total number of HTTP fetches, labeled by kind and status code.",
			},
			[]string{"kind", "code"},
		),
		fetchBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mission_scraper_fetch_bytes_total",
				Help: "Total number of body bytes fetched, labeled by site.",
			},
			[]string{"site"},
		),
		fetchDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mission_scraper_fetch_duration_seconds",
				Help:    "Histogram of fetch latencies, labeled by kind.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"kind"},
		),
		rateLimitDelaySeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mission_scraper_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		),
	}
	r.registry.MustRegister(
		r.rowsTotal,
		r.fetchesTotal,
		r.fetchBytesTotal,
		r.fetchDurationSeconds,
		r.rateLimitDelaySeconds,
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRow increments the row counter for the given outcome.
func (r *Recorder) ObserveRow(outcome string) {
	if r == nil {
		return
	}
	r.rowsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records one HTTP fetch. A zero code marks a transport failure.
func (r *Recorder) ObserveFetch(kind, rawURL string, code, bodyBytes int, duration time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	r.fetchesTotal.WithLabelValues(kind, label).Inc()
	r.fetchDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
	if bodyBytes > 0 {
		r.fetchBytesTotal.WithLabelValues(SanitizeSite(rawURL)).Add(float64(bodyBytes))
	}
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func (r *Recorder) ObserveRateLimitDelay(domain string, duration time.Duration) {
	if r == nil {
		return
	}
	r.rateLimitDelaySeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
