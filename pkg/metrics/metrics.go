package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace          = "egdqm"
	downloadSubsystem  = "download"
	statusLabelKey     = "status"
	versionLabelKey    = "version"
	defaultTextfileExt = ".prom"
)

// DownloadMetrics collects statistics of a single download session. It
// implements downloader.MetricRegister.
type DownloadMetrics struct {
	registry *prometheus.Registry

	attempts   prometheus.Counter
	runs       *prometheus.CounterVec
	histograms prometheus.Counter
	lastRun    prometheus.Gauge
}

// NewDownloadMetrics creates metrics registered in a private registry.
func NewDownloadMetrics(version string) *DownloadMetrics {
	m := &DownloadMetrics{
		registry: prometheus.NewRegistry(),

		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: downloadSubsystem,
			Name:      "fetch_attempts_total",
			Help:      "Number of attempts to fetch a run from the DQM GUI",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: downloadSubsystem,
			Name:      "runs_total",
			Help:      "Number of processed runs by outcome",
		}, []string{statusLabelKey}),
		histograms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: downloadSubsystem,
			Name:      "histograms_total",
			Help:      "Number of histograms stored in the archive",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: downloadSubsystem,
			Name:      "last_completion_timestamp_seconds",
			Help:      "Time the download session finished",
		}),
	}

	m.registry.MustRegister(m.attempts, m.runs, m.histograms, m.lastRun)
	registerVersionMetric(m.registry, version)

	return m
}

// IncFetchAttempts increments the number of fetch attempts.
func (m *DownloadMetrics) IncFetchAttempts() {
	m.attempts.Inc()
}

// AddRunResult counts a processed run by its status.
func (m *DownloadMetrics) AddRunResult(status string) {
	m.runs.WithLabelValues(status).Inc()
}

// AddHistograms counts stored histograms.
func (m *DownloadMetrics) AddHistograms(n int) {
	m.histograms.Add(float64(n))
}

// Registry returns the registry holding all session metrics.
func (m *DownloadMetrics) Registry() *prometheus.Registry {
	return m.registry
}
