package mcpserver

import (
	"context"

	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type IngestInput struct {
	DocumentId   string `json:"document_id" jsonschema:"stable id of the document, re-ingesting the same id replaces it"`
	AssignmentId string `json:"assignment_id" jsonschema:"assignment the document belongs to"`
	Kind         string `json:"kind" jsonschema:"model_answer or student_answer"`
	OwnerId      string `json:"owner_id,omitempty" jsonschema:"teacher or student id"`
	Content      string `json:"content" jsonschema:"document text, or base64 file bytes when encoding is base64"`
	Encoding     string `json:"encoding,omitempty" jsonschema:"base64 for binary files, empty for plain text"`
}

type IngestOutput struct {
	Success     bool   `json:"success"`
	State       string `json:"state"`
	ChunkCount  int    `json:"chunk_count"`
	VectorCount int    `json:"vector_count"`
	Incomplete  bool   `json:"incomplete"`
	Message     string `json:"message,omitempty"`
}

type SearchInput struct {
	AssignmentId string `json:"assignment_id" jsonschema:"only chunks of this assignment are searched"`
	Kind         string `json:"kind" jsonschema:"model_answer or student_answer"`
	Query        string `json:"query" jsonschema:"text to find similar chunks for"`
	TopK         int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks (default 5)"`
}

type SearchOutput struct {
	Results []gradingModel.SearchHit `json:"results"`
	Count   int                      `json:"count"`
}

type GradeInput struct {
	AssignmentPrompt      string `json:"assignment_prompt,omitempty" jsonschema:"the question the students answered"`
	ModelAnswer           string `json:"model_answer,omitempty" jsonschema:"teacher's model answer, or leave empty and give model_answer_document_id"`
	ModelAnswerDocumentId string `json:"model_answer_document_id,omitempty" jsonschema:"id of an ingested model answer"`
	StudentAnswer         string `json:"student_answer" jsonschema:"the answer to grade"`
	AssignmentId          string `json:"assignment_id,omitempty" jsonschema:"with submission_id, enables retrieval of relevant model answer passages"`
	SubmissionId          string `json:"submission_id,omitempty" jsonschema:"document id of the ingested submission"`
}

type GradeOutput struct {
	GradingText          string `json:"grading_text"`
	KeyPoints            string `json:"key_points"`
	Score                *int   `json:"score"`
	NeedsManualReview    bool   `json:"needs_manual_review"`
	UsedRetrievedContext bool   `json:"used_retrieved_context"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Chunk, embed and store a model answer or student submission",
	}, s.handleIngest)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_chunks",
		Description: "Find the stored chunks of one assignment most similar to a query",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "grade_submission",
		Description: "Grade a student answer against the model answer and return a report with a total score out of 100",
	}, s.handleGrade)
}

func (s *Server) handleIngest(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, IngestOutput, error) {
	result, err := s.service.Ingest(ctx, gradingModel.IngestRequest{
		DocumentId:   input.DocumentId,
		AssignmentId: input.AssignmentId,
		Kind:         gradingModel.Kind(input.Kind),
		OwnerId:      input.OwnerId,
		Content:      []byte(input.Content),
		Encoding:     gradingModel.Encoding(input.Encoding),
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{
		Success:     result.Success,
		State:       string(result.State),
		ChunkCount:  result.ChunkCount,
		VectorCount: result.VectorCount,
		Incomplete:  result.Incomplete,
		Message:     result.Message,
	}, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	hits, err := s.service.Search(ctx, gradingModel.SearchRequest{
		AssignmentId: input.AssignmentId,
		Kind:         gradingModel.Kind(input.Kind),
		Query:        input.Query,
		TopK:         input.TopK,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if hits == nil {
		hits = []gradingModel.SearchHit{}
	}
	return nil, SearchOutput{Results: hits, Count: len(hits)}, nil
}

func (s *Server) handleGrade(ctx context.Context, _ *mcp.CallToolRequest, input GradeInput) (*mcp.CallToolResult, GradeOutput, error) {
	result, err := s.service.Grade(ctx, gradingModel.GradeRequest{
		AssignmentPrompt:      input.AssignmentPrompt,
		ModelAnswer:           input.ModelAnswer,
		ModelAnswerDocumentId: input.ModelAnswerDocumentId,
		StudentAnswer:         input.StudentAnswer,
		AssignmentId:          input.AssignmentId,
		SubmissionId:          input.SubmissionId,
	})
	if err != nil {
		return nil, GradeOutput{}, err
	}
	return nil, GradeOutput{
		GradingText:          result.GradingText,
		KeyPoints:            result.KeyPointsText,
		Score:                result.Score,
		NeedsManualReview:    result.NeedsManualReview(),
		UsedRetrievedContext: result.UsedRetrievedContext,
	}, nil
}
