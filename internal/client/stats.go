package client

import "github.com/prometheus/client_golang/prometheus"

var stats = metrics{
	sent: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "client",
		Name:      "files_sent_total",
		Help:      "Number of files shipped and removed from the watched directory",
	}),

	skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "client",
		Name:      "files_skipped_total",
		Help:      "Number of created files that were not shipped, by reason",
	}, []string{
		"reason",
	}),

	failed: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "client",
		Name:      "files_failed_total",
		Help:      "Number of files that could not be shipped, by stage",
	}, []string{
		"stage",
	}),

	connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "client",
		Name:      "connect_failures_total",
		Help:      "Number of failed attempts to connect to the server",
	}),
}

type metrics struct {
	sent            prometheus.Counter
	skipped         *prometheus.CounterVec
	failed          *prometheus.CounterVec
	connectFailures prometheus.Counter
}

func init() {
	prometheus.MustRegister(stats.sent)
	prometheus.MustRegister(stats.skipped)
	prometheus.MustRegister(stats.failed)
	prometheus.MustRegister(stats.connectFailures)
}

func (m *metrics) FileSent() {
	m.sent.Inc()
}

func (m *metrics) FileSkipped(reason string) {
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *metrics) FileFailed(stage string) {
	m.failed.WithLabelValues(stage).Inc()
}

func (m *metrics) ConnectFailed() {
	m.connectFailures.Inc()
}
