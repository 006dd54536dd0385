// Package metrics exposes Prometheus collectors for matrix persistence and
// the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "tableflip.dev/pricematrix/pkg/errors"
)

// Persistence metrics
var (
	// MatrixOpsTotal counts load and save operations by status.
	MatrixOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricematrix_operations_total",
			Help: "Total matrix load/save operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// MatrixOpDuration tracks load and save latency in seconds.
	MatrixOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricematrix_operation_duration_seconds",
			Help:    "Matrix operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"operation"},
	)

	// RuleViolationsTotal counts cells rejected by validation rules.
	RuleViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricematrix_rule_violations_total",
			Help: "Total cells rejected by validation rules",
		},
	)

	// MatrixCells tracks the number of cells in the last stored matrix.
	MatrixCells = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricematrix_cells",
			Help: "Number of cells in the last loaded or saved matrix",
		},
	)
)

// HTTP metrics
var (
	// HTTPErrorsTotal counts error responses by error type.
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricematrix_http_errors_total",
			Help: "Total HTTP error responses by error type",
		},
		[]string{"type"},
	)
)

// Operation names used as label values.
const (
	OpLoad = "load"
	OpSave = "save"
)

// Status returns the status label for err.
func Status(err error) string {
	if err == nil {
		return "success"
	}
	return "error"
}

// ErrorRecorder feeds HTTPErrorsTotal from the error middleware.
type ErrorRecorder struct{}

var _ apperrors.Recorder = ErrorRecorder{}

// RecordError implements errors.Recorder.
func (ErrorRecorder) RecordError(t apperrors.ErrorType) {
	HTTPErrorsTotal.WithLabelValues(string(t)).Inc()
}
