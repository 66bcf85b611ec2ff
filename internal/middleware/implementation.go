package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/metrics"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Middleware struct {
	cfg     config.ServerConfig
	limiter *IPRateLimiter
}

func New(cfg config.ServerConfig) *Middleware {
	m := &Middleware{cfg: cfg}
	if cfg.RateLimit {
		m.limiter = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT)
	}
	return m
}

// Wrap runs trace injection, auth and rate limiting before next.
func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return m.chain(next, m.authenticate, m.rateLimiter)
}

// WrapPublic only injects the trace id; used for health.
func (m *Middleware) WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return m.chain(next)
}

// WrapHandler is Wrap for handlers mounted as http.Handler (the mcp endpoint).
func (m *Middleware) WrapHandler(next http.Handler) http.Handler {
	return m.Wrap(next.ServeHTTP)
}

func (m *Middleware) chain(next http.HandlerFunc, steps ...func(requestResponseStruct) requestResponseStruct) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, steps...)

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct, steps ...func(requestResponseStruct) requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received", "path", re.req.URL.Path)
	re = injectTrace(re)
	for _, step := range steps {
		if re.badRequest.isBadRequest {
			break
		}
		re = step(re)
	}
	return re
}
