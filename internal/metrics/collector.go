package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leozw/domainy/internal/config"
	"github.com/leozw/domainy/internal/status"
)

type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	whoisLookups        *prometheus.CounterVec
	whoisLookupDuration *prometheus.HistogramVec
	domainStatus        *prometheus.CounterVec
	refreshJobs         *prometheus.CounterVec
	refreshQueueLength  prometheus.Gauge
}

// NewCollector registers every metric on a private registry so several
// collectors can coexist in one process (tests, multiple binaries).
func NewCollector(cfg config.MetricsConfig) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		config:   cfg,
		registry: reg,

		whoisLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domainy_whois_lookups_total",
				Help: "WHOIS lookups by provider and result",
			},
			[]string{"provider", "result"},
		),
		whoisLookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "domainy_whois_lookup_duration_seconds",
				Help:    "WHOIS lookup latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),
		domainStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domainy_domain_status_total",
				Help: "Domain classifications served, by status",
			},
			[]string{"status"},
		),
		refreshJobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domainy_refresh_jobs_total",
				Help: "WHOIS refresh jobs processed, by result",
			},
			[]string{"result"},
		),
		refreshQueueLength: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "domainy_refresh_queue_length",
				Help: "Refresh jobs waiting in the queue",
			},
		),
	}
}

func (c *Collector) RecordLookup(provider string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.whoisLookups.WithLabelValues(provider, result).Inc()
	c.whoisLookupDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (c *Collector) RecordStatus(s status.Status) {
	c.domainStatus.WithLabelValues(string(s)).Inc()
}

func (c *Collector) RecordRefreshJob(result string) {
	c.refreshJobs.WithLabelValues(result).Inc()
}

func (c *Collector) SetQueueLength(n int64) {
	c.refreshQueueLength.Set(float64(n))
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
