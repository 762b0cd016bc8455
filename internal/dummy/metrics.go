package dummy

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runsActive     prometheus.Gauge
	sampleRequests *prometheus.CounterVec
	sampleDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadcompose_dummy_runs_total",
				Help: "Finished test runs by final status",
			},
			[]string{"status"},
		),
		runsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "loadcompose_dummy_runs_active",
				Help: "Test runs currently executing",
			},
		),
		sampleRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loadcompose_dummy_sample_requests_total",
				Help: "Requests served by the sample endpoints",
			},
			[]string{"endpoint", "code"},
		),
		sampleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loadcompose_dummy_sample_duration_seconds",
				Help:    "Sample endpoint latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
	m.registry.MustRegister(m.runsTotal, m.runsActive, m.sampleRequests, m.sampleDuration)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts and times a sample endpoint.
func (m *metrics) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		m.sampleDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		m.sampleRequests.WithLabelValues(endpoint, strconv.Itoa(rec.code)).Inc()
	}
}
