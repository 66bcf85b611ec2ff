package handlers

import (
	"net/http"

	"github.com/akolanti/GradeRAG/internal/adapter"
	"github.com/akolanti/GradeRAG/internal/api"
)

// GetHealth godoc
// @Summary      Health check
// @Description  Reports whether the vector store answers and which embedding mode is active. Always 200 so a degraded store stays observable.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, adapter.ToHealthResponse(h.service.Health(r.Context())))
}

// Search godoc
// @Summary      Search chunks of an assignment
// @Description  Semantic search over the chunks of one document kind, scoped to a single assignment.
// @Tags         Retrieval
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest  true  "Query and scope"
// @Success      200      {object}  api.SearchResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      503      {object}  api.ErrorResponse
// @Router       /v1/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	var req api.SearchRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	hits, err := h.service.Search(r.Context(), adapter.ToSearchRequest(req))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(hits))
}

// Grade godoc
// @Summary      Grade a submission
// @Description  Extracts key points from the model answer, retrieves the model answer passages closest to the submission and asks the model for a graded report. A null score means the report needs manual review.
// @Tags         Grading
// @Accept       json
// @Produce      json
// @Param        request  body      api.GradeRequest  true  "Assignment, model answer and student answer"
// @Success      200      {object}  api.GradeResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse  "Completion provider failed"
// @Router       /v1/grade [post]
func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	var req api.GradeRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	result, err := h.service.Grade(r.Context(), adapter.ToGradeRequest(req))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToGradeResponse(result))
}
