package adapter

import (
	"github.com/akolanti/GradeRAG/internal/api"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
)

func ToIngestRequest(req api.IngestDocumentRequest) gradingModel.IngestRequest {
	return gradingModel.IngestRequest{
		DocumentId:   req.DocumentId,
		AssignmentId: req.AssignmentId,
		Kind:         gradingModel.Kind(req.Kind),
		OwnerId:      req.OwnerId,
		Content:      []byte(req.Content),
		Encoding:     gradingModel.Encoding(req.Encoding),
		FileName:     req.FileName,
	}
}

func ToSearchRequest(req api.SearchRequest) gradingModel.SearchRequest {
	return gradingModel.SearchRequest{
		AssignmentId: req.AssignmentId,
		Kind:         gradingModel.Kind(req.Kind),
		Query:        req.Query,
		TopK:         req.TopK,
	}
}

func ToGradeRequest(req api.GradeRequest) gradingModel.GradeRequest {
	return gradingModel.GradeRequest{
		AssignmentPrompt:      req.AssignmentPrompt,
		ModelAnswer:           req.ModelAnswer,
		ModelAnswerDocumentId: req.ModelAnswerDocumentId,
		StudentAnswer:         req.StudentAnswer,
		AssignmentId:          req.AssignmentId,
		SubmissionId:          req.SubmissionId,
	}
}

func ToSearchResponse(hits []gradingModel.SearchHit) api.SearchResponse {
	if hits == nil {
		hits = []gradingModel.SearchHit{}
	}
	return api.SearchResponse{Results: hits, Count: len(hits)}
}

func ToGradeResponse(result gradingModel.GradingResult) api.GradeResponse {
	return api.GradeResponse{GradingResult: result, NeedsManualReview: result.NeedsManualReview()}
}

func ToStatusResponse(status gradingModel.IngestionStatus) api.StatusResponse {
	r := status.Record
	history := status.History
	if history == nil {
		history = []string{}
	}
	return api.StatusResponse{
		DocumentId: r.DocumentId,
		State:      string(r.State),
		Message:    r.Message,
		Incomplete: r.Incomplete,
		Chunks:     r.ChunkCount,
		Vectors:    r.VectorCount,
		StartedAt:  r.StartedAt,
		UpdatedAt:  r.UpdatedAt,
		History:    history,
	}
}

func ToHealthResponse(report gradingModel.HealthReport) api.HealthResponse {
	status := "ok"
	if !report.VectorStore {
		status = "degraded"
	}
	return api.HealthResponse{Status: status, HealthReport: report}
}

func ErrorResponse(traceId string, message string, code int, retry bool) api.ErrorResponse {
	return api.ErrorResponse{
		TraceId: traceId,
		Error: api.ErrorBody{
			Code:    code,
			Message: message,
			Retry:   retry,
		},
	}
}
