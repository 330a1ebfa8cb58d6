package serve

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus instruments exported by the scan service.
type metrics struct {
	scansTotal   *prometheus.CounterVec
	scanDuration prometheus.Histogram
	scannedBytes prometheus.Counter
	scanFailures prometheus.Counter
	registry     *prometheus.Registry
}

func newMetrics() *metrics {
	m := &metrics{
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptwall",
			Name:      "scans_total",
			Help:      "Completed scans by risk band.",
		}, []string{"band"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "promptwall",
			Name:      "scan_duration_seconds",
			Help:      "Wall time of a single scan.",
			Buckets:   prometheus.DefBuckets,
		}),
		scannedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "promptwall",
			Name:      "scanned_bytes_total",
			Help:      "Total bytes of input scanned.",
		}),
		scanFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "promptwall",
			Name:      "scan_failures_total",
			Help:      "Scans aborted by an error.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.scansTotal, m.scanDuration, m.scannedBytes, m.scanFailures)
	return m
}
