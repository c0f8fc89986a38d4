package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Parser metrics
	EventsParsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siloflow_events_parsed_total",
			Help: "Total number of log events successfully parsed",
		},
	)

	ParseMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siloflow_parse_misses_total",
			Help: "Total number of log events that did not match their schema's regex",
		},
	)

	// Ingress worker metrics
	TasksOK = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siloflow_tasks_ok_total",
			Help: "Total number of ingress tasks processed successfully",
		},
	)

	TasksFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siloflow_tasks_failed_total",
			Help: "Total number of ingress tasks that failed, by reason",
		},
		[]string{"reason"},
	)

	QueueRedeliveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siloflow_queue_redeliveries_total",
			Help: "Total number of task queue redeliveries observed",
		},
	)

	// Agent metrics
	UploadRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siloflow_upload_retries_total",
			Help: "Total number of uploader retry attempts",
		},
	)

	AgentTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siloflow_agent_tick_duration_seconds",
			Help:    "Time taken to complete one Agent Loop tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Ingress worker latency
	ParseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siloflow_parse_duration_seconds",
			Help:    "Time taken to parse one raw buffer into a row batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	WriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siloflow_write_duration_seconds",
			Help:    "Time taken to encode one row batch to an OutputFile",
			Buckets: prometheus.DefBuckets,
		},
	)

	TaskDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siloflow_task_duration_seconds",
			Help:    "End-to-end time to process one ingress task",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Schema Registry raft metrics
	RegistryIsLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "siloflow_registry_is_leader",
			Help: "Whether this Control Service replica is the Schema Registry raft leader",
		},
	)

	RegistryApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siloflow_registry_apply_duration_seconds",
			Help:    "Time taken to apply a Schema Registry raft log entry",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Control Service RPC metrics
	ControlRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siloflow_control_requests_total",
			Help: "Total number of Control Service RPCs by method and status",
		},
		[]string{"method", "status"},
	)

	AgentBufferDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siloflow_agent_buffer_dropped_total",
			Help: "Total number of tailed buffers dropped from the in-memory upload retry buffer, after exhausting retries or when the buffer is full (data loss)",
		},
	)
)

func init() {
	prometheus.MustRegister(
		EventsParsed,
		ParseMisses,
		TasksOK,
		TasksFailed,
		QueueRedeliveries,
		UploadRetries,
		AgentTickDuration,
		ParseDuration,
		WriteDuration,
		TaskDuration,
		RegistryIsLeader,
		RegistryApplyDuration,
		ControlRequestsTotal,
		AgentBufferDropped,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
