package handlers

import (
	"github.com/akolanti/GradeRAG/internal/rag"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

// Handler serves the http surface of the rag service. It owns no state of its
// own; every request goes straight to the service.
type Handler struct {
	service rag.Service
	logger  *logger_i.Logger
}

func NewHandler(service rag.Service) *Handler {
	return &Handler{
		service: service,
		logger:  logger_i.NewLogger("handlers"),
	}
}
