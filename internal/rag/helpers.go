package rag

import (
	"errors"
	"time"

	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/metrics"
)

// outcome buckets an error for the request histogram.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gradingModel.ErrInvalidInput), errors.Is(err, gradingModel.ErrDocumentNotFound):
		return "invalid"
	case errors.Is(err, gradingModel.ErrGradingUnavailable):
		return "unavailable"
	case gradingModel.IsStorageError(err):
		return "storage_error"
	}
	return "error"
}

func captureRequest(operation string, start time.Time, err error) {
	metrics.CaptureRequestMetrics(operation, outcome(err), time.Since(start))
}
