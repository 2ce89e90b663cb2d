package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "league_activation"

// Collector records engine metrics in Prometheus.
type Collector struct {
	activations     *prometheus.CounterVec
	activationTime  *prometheus.HistogramVec
	probes          *prometheus.CounterVec
	seasonWrites    *prometheus.CounterVec
	refreshLeagues  *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
	lastRefreshRuns prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activations_total",
			Help:      "Activation requests by platform and outcome.",
		}, []string{"platform", "status"}),
		activationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "activation_duration_seconds",
			Help:      "Activation latency in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"platform"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "season_probes_total",
			Help:      "Season probes by platform and result.",
		}, []string{"platform", "result"}),
		seasonWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "season_writes_total",
			Help:      "Season store writes by mode and result.",
		}, []string{"mode", "result"}),
		refreshLeagues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_leagues_total",
			Help:      "Leagues handled by the refresh job.",
		}, []string{"result"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Platform fetch failures by endpoint and reason.",
		}, []string{"platform", "endpoint", "reason"}),
		lastRefreshRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_last_run_timestamp_seconds",
			Help:      "Unix time of the last refresh run.",
		}),
	}

	reg.MustRegister(
		c.activations,
		c.activationTime,
		c.probes,
		c.seasonWrites,
		c.refreshLeagues,
		c.fetchFailures,
		c.lastRefreshRuns,
	)
	return c
}

func (c *Collector) ObserveActivation(platform, status string, elapsed time.Duration) {
	c.activations.WithLabelValues(platform, status).Inc()
	c.activationTime.WithLabelValues(platform).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveProbe(platform string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.probes.WithLabelValues(platform, result).Inc()
}

func (c *Collector) ObserveSeasonWrite(mode string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.seasonWrites.WithLabelValues(mode, result).Inc()
}

func (c *Collector) ObserveRefresh(processed, failed int) {
	c.refreshLeagues.WithLabelValues("processed").Add(float64(processed))
	c.refreshLeagues.WithLabelValues("failed").Add(float64(failed))
	c.lastRefreshRuns.SetToCurrentTime()
}

func (c *Collector) ObserveFetch(platform, endpoint, reason string) {
	c.fetchFailures.WithLabelValues(platform, endpoint, reason).Inc()
}

// Handler serves the registry for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
