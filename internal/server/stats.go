package server

import "github.com/prometheus/client_golang/prometheus"

var stats = metrics{
	accepted: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "server",
		Name:      "connections_accepted_total",
		Help:      "Number of client connections accepted",
	}),

	active: prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "propship",
		Subsystem: "server",
		Name:      "connections_active",
		Help:      "Number of connection workers currently running",
	}),

	closed: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "server",
		Name:      "connections_closed_total",
		Help:      "Number of connection workers that stopped, by reason",
	}, []string{
		"reason",
	}),

	readFailures: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "server",
		Name:      "read_failures_total",
		Help:      "Number of failed reads or decodes of record sets",
	}),

	bindFailures: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "server",
		Name:      "bind_failures_total",
		Help:      "Number of failed bind or accept attempts",
	}),

	written: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "server",
		Name:      "files_written_total",
		Help:      "Number of received files written to the destination directory",
	}),

	refused: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propship",
		Subsystem: "server",
		Name:      "files_refused_total",
		Help:      "Number of received files that were not written, by reason",
	}, []string{
		"reason",
	}),
}

type metrics struct {
	accepted     prometheus.Counter
	active       prometheus.Gauge
	closed       *prometheus.CounterVec
	readFailures prometheus.Counter
	bindFailures prometheus.Counter
	written      prometheus.Counter
	refused      *prometheus.CounterVec
}

func init() {
	prometheus.MustRegister(stats.accepted)
	prometheus.MustRegister(stats.active)
	prometheus.MustRegister(stats.closed)
	prometheus.MustRegister(stats.readFailures)
	prometheus.MustRegister(stats.bindFailures)
	prometheus.MustRegister(stats.written)
	prometheus.MustRegister(stats.refused)
}

func (m *metrics) ConnectionOpened() {
	m.accepted.Inc()
	m.active.Inc()
}

func (m *metrics) ConnectionClosed(reason string) {
	m.active.Dec()
	m.closed.WithLabelValues(reason).Inc()
}

func (m *metrics) ReadFailed() {
	m.readFailures.Inc()
}

func (m *metrics) BindFailed() {
	m.bindFailures.Inc()
}

func (m *metrics) FileWritten() {
	m.written.Inc()
}

func (m *metrics) FileRefused(reason string) {
	m.refused.WithLabelValues(reason).Inc()
}
