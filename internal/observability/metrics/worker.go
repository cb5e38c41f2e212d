package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Indexing runs extract+embed per document and can take minutes on a
// large handbook PDF; queue lag is normally sub-second unless workers
// fall behind.
var (
	processDurationBuckets = []float64{0.5, 1, 2.5, 5, 15, 30, 60, 120, 300}
	queueLagBuckets        = []float64{0.1, 0.5, 1, 5, 15, 60, 300}
)

// WorkerMetrics covers the indexing pipeline: outcomes and latency per
// document, passage throughput, and how long uploads wait on the queue.
type WorkerMetrics struct {
	registry *prometheus.Registry

	documentsProcessed *prometheus.CounterVec
	processDuration    *prometheus.HistogramVec
	documentsInFlight  prometheus.Gauge
	passagesIndexed    *prometheus.CounterVec
	queueLag           *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	m := &WorkerMetrics{registry: prometheus.NewRegistry()}

	m.documentsProcessed = prometheus.NewCounterVec(
		workerCounterOpts("documents_processed_total", "Documents taken through the indexing pipeline, by outcome."),
		[]string{"service", "status"},
	)
	m.processDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "krishi",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "End-to-end extract/chunk/embed/index latency per document.",
			Buckets:   processDurationBuckets,
		},
		[]string{"service", "status"},
	)
	m.documentsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "krishi",
		Subsystem:   "worker",
		Name:        "documents_in_flight",
		Help:        "Documents currently being indexed.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	m.passagesIndexed = prometheus.NewCounterVec(
		workerCounterOpts("passages_indexed_total", "Embedded passages written to the vector store."),
		[]string{"service"},
	)
	m.queueLag = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "krishi",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document upload and processing start.",
			Buckets:   queueLagBuckets,
		},
		[]string{"service"},
	)

	m.registry.MustRegister(
		m.documentsProcessed,
		m.processDuration,
		m.documentsInFlight,
		m.passagesIndexed,
		m.queueLag,
	)
	return m
}

func workerCounterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: "krishi",
		Subsystem: "worker",
		Name:      name,
		Help:      help,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.documentsInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.documentsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.documentsProcessed.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) AddPassagesIndexed(service string, count int) {
	if count <= 0 {
		return
	}
	m.passagesIndexed.WithLabelValues(service).Add(float64(count))
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
