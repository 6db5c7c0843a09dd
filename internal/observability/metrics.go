package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec

	submissionsSubmittedTotal  *prometheus.CounterVec
	submissionsGradedTotal     *prometheus.CounterVec
	attendanceMarksTotal       *prometheus.CounterVec
	videoClassTransitionsTotal *prometheus.CounterVec

	uploadRequestsTotal *prometheus.CounterVec
	uploadRejectedTotal *prometheus.CounterVec
	uploadLatencySecs   prometheus.Histogram

	notificationsPublishedTotal *prometheus.CounterVec
	sseClientsActive            prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		submissionsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_submitted_total",
			Help: "Total number of assignment submissions handed in.",
		}, []string{"type"})

		submissionsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_graded_total",
			Help: "Total number of submissions graded, by grading mode.",
		}, []string{"mode"})

		attendanceMarksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_marks_total",
			Help: "Total number of attendance records written, by status.",
		}, []string{"status"})

		videoClassTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "video_class_transitions_total",
			Help: "Total number of video class lifecycle transitions.",
		}, []string{"status"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_requests_total",
			Help: "Total number of stored uploads, by detected type.",
		}, []string{"type"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Total number of rejected uploads, by reason.",
		}, []string{"reason"})

		uploadLatencySecs = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Latency distribution for upload handling.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		})

		notificationsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications published, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sse_clients_active",
			Help: "Number of currently connected SSE notification clients.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			submissionsSubmittedTotal, submissionsGradedTotal,
			attendanceMarksTotal, videoClassTransitionsTotal,
			uploadRequestsTotal, uploadRejectedTotal, uploadLatencySecs,
			notificationsPublishedTotal, sseClientsActive,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SubmissionsSubmittedTotal exposes the counter for handed-in submissions.
func SubmissionsSubmittedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsSubmittedTotal
}

// SubmissionsGradedTotal exposes the counter for graded submissions.
func SubmissionsGradedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsGradedTotal
}

// AttendanceMarksTotal exposes the counter for attendance records.
func AttendanceMarksTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return attendanceMarksTotal
}

// VideoClassTransitionsTotal exposes the counter for lifecycle transitions.
func VideoClassTransitionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return videoClassTransitionsTotal
}

// UploadRequests exposes the counter for stored uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySecs
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublishedTotal
}

// SSEClientsActive exposes the gauge of connected SSE clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
