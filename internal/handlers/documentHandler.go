package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/akolanti/GradeRAG/internal/adapter"
	"github.com/akolanti/GradeRAG/internal/adapter/utils"
	"github.com/akolanti/GradeRAG/internal/api"
	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
)

// IngestDocument godoc
// @Summary      Ingest a document
// @Description  Extracts, chunks and embeds a model answer or student submission and replaces any vectors stored for the same document id. Binary files (pdf, docx) must be sent base64 encoded.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestDocumentRequest  true  "Document and its metadata"
// @Success      200      {object}  api.IngestResponse
// @Failure      400      {object}  api.IngestResponse  "Invalid input"
// @Failure      503      {object}  api.IngestResponse  "Vector store unavailable"
// @Router       /v1/documents [post]
func (h *Handler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	var req api.IngestDocumentRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.ingest(w, r, adapter.ToIngestRequest(req))
}

// UploadDocument godoc
// @Summary      Upload a document for ingestion
// @Description  Multipart variant of document ingestion, for pdf, docx and plain text files.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_id    formData  string  true   "Document id"
// @Param        assignment_id  formData  string  true   "Assignment id"
// @Param        kind           formData  string  true   "model_answer or student_answer"
// @Param        owner_id       formData  string  false  "Teacher or student id"
// @Param        document       formData  file    true   "The file to ingest"
// @Success      200  {object}  api.IngestResponse
// @Failure      400  {object}  api.ErrorResponse  "Missing fields or file too large"
// @Failure      503  {object}  api.IngestResponse "Vector store unavailable"
// @Router       /v1/documents/upload [post]
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "File too large or bad request")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "Could not read file")
		return
	}

	h.ingest(w, r, gradingModel.IngestRequest{
		DocumentId:   r.FormValue("document_id"),
		AssignmentId: r.FormValue("assignment_id"),
		Kind:         gradingModel.Kind(r.FormValue("kind")),
		OwnerId:      r.FormValue("owner_id"),
		Content:      content,
		FileName:     header.Filename,
	})
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, req gradingModel.IngestRequest) {
	result, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		code, retry := statusFor(err)
		h.logger.WithTrace(r.Context()).Warn("ingestion failed", "documentId", req.DocumentId, "code", code, "error", err)
		writeJsonResponse(w, code, api.IngestResponse{
			Result: result,
			Error:  &api.ErrorBody{Code: code, Message: err.Error(), Retry: retry},
		})
		return
	}
	writeJsonResponse(w, http.StatusOK, api.IngestResponse{Result: result})
}

// RemoveDocument godoc
// @Summary      Delete a document
// @Description  Removes every vector stored for the document.
// @Tags         Documents
// @Produce      json
// @Param        kind  path  string  true  "model_answer or student_answer"
// @Param        id    path  string  true  "Document id"
// @Success      204
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /v1/documents/{kind}/{id} [delete]
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	kind, id := utils.GetChiURLParam(r, "kind"), utils.GetChiURLParam(r, "id")
	if err := h.service.RemoveDocument(r.Context(), gradingModel.Kind(kind), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DocumentText godoc
// @Summary      Get the text of an ingested document
// @Description  Rebuilds the document text from its stored chunks.
// @Tags         Documents
// @Produce      json
// @Param        kind  path      string  true  "model_answer or student_answer"
// @Param        id    path      string  true  "Document id"
// @Success      200   {object}  api.DocumentTextResponse
// @Failure      404   {object}  api.ErrorResponse
// @Router       /v1/documents/{kind}/{id}/text [get]
func (h *Handler) DocumentText(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	kind, id := utils.GetChiURLParam(r, "kind"), utils.GetChiURLParam(r, "id")
	text, err := h.service.DocumentText(r.Context(), gradingModel.Kind(kind), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentTextResponse{DocumentId: id, Kind: kind, Text: text})
}

// IngestionStatus godoc
// @Summary      Get ingestion status
// @Description  Latest ingestion state of a document and the states it went through.
// @Tags         Documents
// @Produce      json
// @Param        kind  path      string  true  "model_answer or student_answer"
// @Param        id    path      string  true  "Document id"
// @Success      200   {object}  api.StatusResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      404   {object}  api.ErrorResponse
// @Router       /v1/documents/{kind}/{id}/status [get]
func (h *Handler) IngestionStatus(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	kind, id := gradingModel.Kind(utils.GetChiURLParam(r, "kind")), utils.GetChiURLParam(r, "id")
	if !kind.Valid() {
		writeServiceError(w, r, gradingModel.InvalidInput("unknown document kind %q", kind), h.logger)
		return
	}
	status, found := h.service.IngestionStatus(r.Context(), kind, id)
	if !found {
		writeServiceError(w, r, fmt.Errorf("%w: no ingestion recorded for %q", gradingModel.ErrDocumentNotFound, id), h.logger)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToStatusResponse(status))
}
