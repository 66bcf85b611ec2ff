package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/GradeRAG/internal/adapter/utils"
	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/handlers"
	"github.com/akolanti/GradeRAG/internal/middleware"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type ShutdownParams struct {
	Server           *http.Server
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    func()
}

// Routes mounts the v1 api, health, metrics, swagger and, when given, the
// mcp streamable http endpoint.
func Routes(h *handlers.Handler, mw *middleware.Middleware, mcpHandler http.Handler) *chi.Mux {
	r := utils.NewRouter()

	r.Get("/health", mw.WrapPublic(h.GetHealth))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/documents", mw.Wrap(h.IngestDocument))
		r.Post("/documents/upload", mw.Wrap(h.UploadDocument))
		r.Get("/documents/{kind}/{id}/status", mw.Wrap(h.IngestionStatus))
		r.Get("/documents/{kind}/{id}/text", mw.Wrap(h.DocumentText))
		r.Delete("/documents/{kind}/{id}", mw.Wrap(h.RemoveDocument))
		r.Post("/search", mw.Wrap(h.Search))
		r.Post("/grade", mw.Wrap(h.Grade))
	})

	if mcpHandler != nil {
		r.Handle("/mcp", mw.WrapHandler(mcpHandler))
	}
	return r
}

func CreateServer(listenAddr string, handler http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
}

func ListenAndServe(server *http.Server) {
	logger := logger_i.NewLogger("Server")
	logger.Info("Server is listening at", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server crashed", "error", err.Error(), "addr", server.Addr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	logger := logger_i.NewLogger("Server")
	state := <-shutdownParams.GracefulShutdown
	logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		shutdownParams.Server.SetKeepAlivesEnabled(false)

		if err := shutdownParams.Server.Shutdown(ctx); err != nil {
			logger.Error("Could not shutdown gracefully", "error", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Gracefully shut down")
	case <-ctx.Done():
		logger.Info("Force Shut down")
		os.Exit(1)
	}
}
