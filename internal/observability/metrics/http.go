package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	improvementsTotal  *prometheus.CounterVec
	batchItemsTotal    *prometheus.CounterVec
	seoGuideTotal      *prometheus.CounterVec
	ragRequestsTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fichepro",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fichepro",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fichepro",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	generationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fichepro",
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Total description generations by provider/model and outcome.",
		},
		[]string{"service", "model", "outcome"},
	)
	generationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fichepro",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Description generation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "model"},
	)
	improvementsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fichepro",
			Subsystem: "generation",
			Name:      "improvements_total",
			Help:      "Total self-improvement chain runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	batchItemsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fichepro",
			Subsystem: "batch",
			Name:      "items_total",
			Help:      "Total batch items by terminal status.",
		},
		[]string{"service", "status"},
	)
	seoGuideTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fichepro",
			Subsystem: "seo",
			Name:      "guide_requests_total",
			Help:      "Total SEO guide lookups by cache outcome.",
		},
		[]string{"service", "outcome"},
	)
	ragRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fichepro",
			Subsystem: "rag",
			Name:      "requests_total",
			Help:      "Total retrieval-augmented generations.",
		},
		[]string{"service", "endpoint"},
	)
	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		generationsTotal,
		generationDuration,
		improvementsTotal,
		batchItemsTotal,
		seoGuideTotal,
		ragRequestsTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		generationsTotal:   generationsTotal,
		generationDuration: generationDuration,
		improvementsTotal:  improvementsTotal,
		batchItemsTotal:    batchItemsTotal,
		seoGuideTotal:      seoGuideTotal,
		ragRequestsTotal:   ragRequestsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/client-data/"):
		return "/client-data/{client_id}"
	case strings.HasPrefix(path, "/client-document/"):
		return "/client-document/{document_id}"
	case strings.HasPrefix(path, "/prompts/"):
		return "/prompts/{prompt_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordGeneration(service, model string, duration time.Duration, err error) {
	if model == "" {
		model = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.generationsTotal.WithLabelValues(service, model, outcome).Inc()
	m.generationDuration.WithLabelValues(service, model).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordImprovement(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.improvementsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordBatchItems(service string, succeeded, failed int) {
	if succeeded > 0 {
		m.batchItemsTotal.WithLabelValues(service, "completed").Add(float64(succeeded))
	}
	if failed > 0 {
		m.batchItemsTotal.WithLabelValues(service, "failed").Add(float64(failed))
	}
}

func (m *HTTPServerMetrics) RecordSeoGuide(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.seoGuideTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordRAGRequest(service, endpoint string) {
	m.ragRequestsTotal.WithLabelValues(service, endpoint).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
