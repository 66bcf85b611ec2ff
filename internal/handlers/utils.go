package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akolanti/GradeRAG/internal/adapter"
	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

var errEmptyBody = errors.New("request body is empty")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left but to log it
		logger_i.NewLogger("handlers").Error("Error encoding response", "error", err)
	}
}

func traceId(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func validateContext(ctx context.Context, log *logger_i.Logger) bool {
	if ctx.Err() != nil {
		log.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, into any, log *logger_i.Logger) bool {
	defer r.Body.Close()
	err := json.NewDecoder(io.LimitReader(r.Body, config.MaxUploadSize)).Decode(into)
	if errors.Is(err, io.EOF) {
		err = errEmptyBody
	}
	if err != nil {
		log.WithTrace(r.Context()).Warn("Bad request body", "error", err, "path", r.URL.Path)
		WriteErrorResponse(w, r, http.StatusBadRequest, "Bad Request: "+err.Error())
		return false
	}
	return true
}

// statusFor maps service errors onto http codes and whether a retry can help.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, gradingModel.ErrInvalidInput):
		return http.StatusBadRequest, false
	case errors.Is(err, gradingModel.ErrDocumentNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, gradingModel.ErrGradingUnavailable):
		return http.StatusBadGateway, true
	case gradingModel.IsStorageError(err):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, true
	}
	return http.StatusInternalServerError, false
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, log *logger_i.Logger) {
	code, retry := statusFor(err)
	log.WithTrace(r.Context()).Warn("request failed", "path", r.URL.Path, "code", code, "error", err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "Internal Server Error"
	}
	writeJsonResponse(w, code, adapter.ErrorResponse(traceId(r.Context()), message, code, retry))
}

func WriteErrorResponse(w http.ResponseWriter, r *http.Request, httpCode int, message string) {
	trace := ""
	if r != nil {
		trace = traceId(r.Context())
	}
	writeJsonResponse(w, httpCode, adapter.ErrorResponse(trace, message, httpCode, false))
}
