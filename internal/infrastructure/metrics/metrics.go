// Package metrics provides Prometheus metrics for the video-conference-api service.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

var (
	// SessionsCreated tracks the total number of sessions created.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_sessions_created_total",
			Help: "Total number of video sessions created",
		},
	)

	// SessionsRemoved tracks the total number of sessions removed by an admin.
	SessionsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_sessions_removed_total",
			Help: "Total number of video sessions removed",
		},
	)

	// SessionStateTransitions tracks session state changes by cause.
	SessionStateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_session_state_transitions_total",
			Help: "Total number of session state transitions",
		},
		[]string{"to_state", "trigger"},
	)

	// TokensIssued tracks participant credentials handed out.
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_session_tokens_issued_total",
			Help: "Total number of participant tokens issued",
		},
		[]string{"role"},
	)

	// TokenGenerationDuration tracks token generation time.
	TokenGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_session_token_generation_duration_seconds",
			Help:    "Duration of LiveKit token generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	// OperationErrors tracks failed lifecycle operations by error kind.
	OperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_session_operation_errors_total",
			Help: "Total number of failed session operations",
		},
		[]string{"operation", "kind"},
	)

	// ReconcileDuration tracks the duration of room reconciliation passes.
	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_session_reconcile_duration_seconds",
			Help:    "Duration of LiveKit room reconciliation passes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ReconcileErrors tracks passes that could not complete.
	ReconcileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_session_reconcile_errors_total",
			Help: "Total number of errors during room reconciliation",
		},
	)

	// ReconcileSkippedRounds tracks rounds left to another replica.
	ReconcileSkippedRounds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_session_reconcile_skipped_rounds_total",
			Help: "Total number of reconciliation rounds skipped because another replica held the lock",
		},
	)
)

// RecordStateTransition records a session state change.
func RecordStateTransition(toState videosession.Status, trigger string) {
	SessionStateTransitions.WithLabelValues(string(toState), trigger).Inc()
}

// RecordReconcile records the outcome of one reconciliation pass.
func RecordReconcile(report *videosession.ReconcileReport) {
	if report == nil {
		return
	}
	if report.Completed > 0 {
		SessionStateTransitions.WithLabelValues(string(videosession.StatusCompleted), "reconcile").Add(float64(report.Completed))
	}
	if report.Cancelled > 0 {
		SessionStateTransitions.WithLabelValues(string(videosession.StatusCancelled), "reconcile").Add(float64(report.Cancelled))
	}
	if report.Failed > 0 {
		ReconcileErrors.Add(float64(report.Failed))
	}
}

// RecordOperationError counts a failed operation under a coarse error kind.
func RecordOperationError(operation string, err error) {
	if err == nil {
		return
	}
	OperationErrors.WithLabelValues(operation, ErrorKind(err)).Inc()
}

// ErrorKind maps err to a low-cardinality label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, videosession.ErrNotFound):
		return "not_found"
	case errors.Is(err, videosession.ErrConflict):
		return "conflict"
	case errors.Is(err, videosession.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, videosession.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, videosession.ErrForbidden):
		return "forbidden"
	case errors.Is(err, videosession.ErrValidation):
		return "validation"
	case errors.Is(err, videosession.ErrRoomCreation):
		return "room_creation"
	case errors.Is(err, videosession.ErrTokenIssuance):
		return "token_issuance"
	default:
		return "internal"
	}
}
