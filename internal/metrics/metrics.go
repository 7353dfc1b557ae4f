package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors the storefront exports. Each instance owns
// its registry so tests can build as many as they need.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	CartOps      *prometheus.CounterVec
	Uploads      *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cart", Name: "operations_total",
			Help: "Cart operations by kind and outcome.",
		}, []string{"op", "result"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "media", Name: "uploads_total",
			Help: "Image uploads to the media host by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.HTTPRequests, m.HTTPDuration, m.CartOps, m.Uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CartOp counts one cart operation. Safe on a nil receiver.
func (m *Metrics) CartOp(op string, err error) {
	if m == nil {
		return
	}
	m.CartOps.WithLabelValues(op, result(err)).Inc()
}

// Upload counts one media upload. Safe on a nil receiver.
func (m *Metrics) Upload(err error) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
