package api

import (
	"time"

	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
)

type ErrorBody struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"invalid input: student_answer is required"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ErrorResponse struct {
	TraceId string    `json:"trace_id,omitempty" example:"2b1f0c8e-5d1a-4c07-9f7e-0f4f3c1d2a9b"`
	Error   ErrorBody `json:"error"`
}

// requests---------------------

type IngestDocumentRequest struct {
	DocumentId   string `json:"document_id" example:"ma-101"`
	AssignmentId string `json:"assignment_id" example:"asg-7"`
	Kind         string `json:"kind" example:"model_answer" enums:"model_answer,student_answer"`
	OwnerId      string `json:"owner_id" example:"teacher-3"`
	Content      string `json:"content" example:"UGhvdG9zeW50aGVzaXMgaGFwcGVucyBpbi4uLg=="`
	Encoding     string `json:"encoding,omitempty" example:"base64" enums:"base64"`
	FileName     string `json:"file_name,omitempty" example:"answer.pdf"`
}

type SearchRequest struct {
	AssignmentId string `json:"assignment_id" example:"asg-7"`
	Kind         string `json:"kind" example:"model_answer" enums:"model_answer,student_answer"`
	Query        string `json:"query" example:"light dependent reactions"`
	TopK         int    `json:"top_k,omitempty" example:"5"`
}

type GradeRequest struct {
	AssignmentPrompt      string `json:"assignment_prompt" example:"Explain photosynthesis."`
	ModelAnswer           string `json:"model_answer,omitempty"`
	ModelAnswerDocumentId string `json:"model_answer_document_id,omitempty" example:"ma-101"`
	StudentAnswer         string `json:"student_answer" example:"Plants use sunlight to make sugar."`
	AssignmentId          string `json:"assignment_id,omitempty" example:"asg-7"`
	SubmissionId          string `json:"submission_id,omitempty" example:"sub-55"`
}

// responses---------------------

type IngestResponse struct {
	Result gradingModel.IngestionResult `json:"result"`
	Error  *ErrorBody                   `json:"error,omitempty"`
}

type SearchResponse struct {
	Results []gradingModel.SearchHit `json:"results"`
	Count   int                      `json:"count" example:"3"`
}

type GradeResponse struct {
	gradingModel.GradingResult
	NeedsManualReview bool `json:"needs_manual_review" example:"false"`
}

type DocumentTextResponse struct {
	DocumentId string `json:"document_id" example:"sub-55"`
	Kind       string `json:"kind" example:"student_answer"`
	Text       string `json:"text"`
}

type StatusResponse struct {
	DocumentId string    `json:"document_id" example:"sub-55"`
	State      string    `json:"state" example:"STORED"`
	Message    string    `json:"message,omitempty"`
	Incomplete bool      `json:"incomplete"`
	Chunks     int       `json:"chunk_count" example:"4"`
	Vectors    int       `json:"vector_count" example:"4"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	History    []string  `json:"history"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok" enums:"ok,degraded"`
	gradingModel.HealthReport
}
