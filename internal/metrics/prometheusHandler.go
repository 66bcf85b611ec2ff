package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var gradingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "grading_requests_total",
	Help: "Grading requests by outcome (scored, manual_review, failed)",
}, []string{"outcome"})

var ingestedChunks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingested_chunks_total",
	Help: "Chunks stored in the vector index by document kind",
}, []string{"kind"})

var ingestionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingestion_runs_total",
	Help: "Ingestion requests by terminal state",
}, []string{"state"})

var embeddingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "embedding_fallback_total",
	Help: "Batches embedded with the deterministic generator because the provider was unreachable",
})

var embeddingItemFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "embedding_item_failures_total",
	Help: "Single texts that could not be embedded and were replaced by a zero vector",
})

var vectorUpsertFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vector_upsert_failures_total",
	Help: "Vector records skipped or rejected during upsert",
}, []string{"collection"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses (mcp over http) working behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func CaptureGradingOutcome(outcome string) {
	gradingRequests.WithLabelValues(outcome).Inc()
}

func AddIngestedChunks(kind string, n int) {
	ingestedChunks.WithLabelValues(kind).Add(float64(n))
}

func CaptureIngestionState(state string) {
	ingestionRuns.WithLabelValues(state).Inc()
}

func IncrementEmbeddingFallback() {
	embeddingFallbacks.Inc()
}

func AddEmbeddingItemFailures(n int) {
	embeddingItemFailures.Add(float64(n))
}

func AddVectorUpsertFailures(collection string, n int) {
	vectorUpsertFailures.WithLabelValues(collection).Add(float64(n))
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent in a grading or ingestion request.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"operation", "status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureRequestMetrics(operation string, status string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(operation, status).Observe(timeElapsed.Seconds())
}
