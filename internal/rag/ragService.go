package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/data/store"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/rag/chunker"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/internal/rag/grading"
	"github.com/akolanti/GradeRAG/internal/rag/ingest"
	"github.com/akolanti/GradeRAG/internal/rag/llm"
	"github.com/akolanti/GradeRAG/internal/rag/retriever"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/go-playground/validator/v10"
)

/*
Service is the only thing the transports (http, mcp) see. The private struct
holds the index, the embedder and the llm so handlers cannot reach around it,
and tests swap those for the memory index and mocks through NewService.
*/
type Service interface {
	Ingest(ctx context.Context, req gradingModel.IngestRequest) (gradingModel.IngestionResult, error)
	RemoveDocument(ctx context.Context, kind gradingModel.Kind, documentId string) error
	Search(ctx context.Context, req gradingModel.SearchRequest) ([]gradingModel.SearchHit, error)
	DocumentText(ctx context.Context, kind gradingModel.Kind, documentId string) (string, error)
	Grade(ctx context.Context, req gradingModel.GradeRequest) (gradingModel.GradingResult, error)
	IngestionStatus(ctx context.Context, kind gradingModel.Kind, documentId string) (gradingModel.IngestionStatus, bool)
	Health(ctx context.Context) gradingModel.HealthReport
}

type service struct {
	pipeline  *ingest.Pipeline
	retriever *retriever.Retriever
	grader    *grading.Grader
	index     vectorDB.Index
	embedder  embedding.Embedder
	validate  *validator.Validate
	logger    *logger_i.Logger
}

// NewService assembles the pipeline, retriever and grader around already
// connected backends.
func NewService(cfg *config.Config, index vectorDB.Index, em embedding.Embedder, provider llm.Provider, ingestionStore store.IngestionStore) Service {
	c := chunker.FromConfig(cfg.Chunker)
	r := retriever.New(em, index, c.Options())
	return &service{
		pipeline:  ingest.NewPipeline(c, em, index, ingestionStore, cfg.Chunker.MinTextRunes),
		retriever: r,
		grader:    grading.NewGrader(provider, r, grading.OptionsFromConfig(cfg.Grading, cfg.Completion)),
		index:     index,
		embedder:  em,
		validate:  validator.New(),
		logger:    logger_i.NewLogger("rag_service"),
	}
}

func (s *service) Ingest(ctx context.Context, req gradingModel.IngestRequest) (gradingModel.IngestionResult, error) {
	start := time.Now()
	result, err := s.pipeline.Ingest(ctx, req)
	captureRequest("ingest", start, err)
	return result, err
}

func (s *service) RemoveDocument(ctx context.Context, kind gradingModel.Kind, documentId string) error {
	start := time.Now()
	err := s.pipeline.Remove(ctx, kind, documentId)
	captureRequest("remove", start, err)
	return err
}

func (s *service) Search(ctx context.Context, req gradingModel.SearchRequest) ([]gradingModel.SearchHit, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, gradingModel.InvalidInput("%v", err)
	}
	start := time.Now()
	hits, err := s.retriever.Retrieve(ctx, req.AssignmentId, req.Kind, req.Query, req.TopK)
	captureRequest("search", start, err)
	return hits, err
}

func (s *service) DocumentText(ctx context.Context, kind gradingModel.Kind, documentId string) (string, error) {
	if !kind.Valid() {
		return "", gradingModel.InvalidInput("unknown document kind %q", kind)
	}
	if documentId == "" {
		return "", gradingModel.InvalidInput("document id is required")
	}
	start := time.Now()
	text, err := s.retriever.ReconstructDocument(ctx, kind, documentId)
	captureRequest("document_text", start, err)
	return text, err
}

func (s *service) Grade(ctx context.Context, req gradingModel.GradeRequest) (gradingModel.GradingResult, error) {
	start := time.Now()
	result, err := s.grader.Grade(ctx, req)
	captureRequest("grade", start, err)
	return result, err
}

func (s *service) IngestionStatus(ctx context.Context, kind gradingModel.Kind, documentId string) (gradingModel.IngestionStatus, bool) {
	record, history, ok := s.pipeline.Status(ctx, kind, documentId)
	if !ok {
		return gradingModel.IngestionStatus{}, false
	}
	return gradingModel.IngestionStatus{Record: record, History: history}, true
}

// Health reports the vector store and the embedding mode. A failing store is
// reported, not returned, so the endpoint can answer while degraded.
func (s *service) Health(ctx context.Context) gradingModel.HealthReport {
	report := gradingModel.HealthReport{EmbeddingMode: s.embedder.Mode()}

	ctx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	collections, err := s.index.ListCollections(ctx)
	if err != nil {
		s.logger.WithTrace(ctx).Error("health check failed", "error", err)
		report.Error = err.Error()
		return report
	}
	report.VectorStore = true
	report.Collections = collections
	return report
}

// Kinds the service manages; both collections are created at startup.
var Kinds = []gradingModel.Kind{gradingModel.KindModelAnswer, gradingModel.KindStudentAnswer}

// EnsureCollections creates the collection of every kind. Failures are joined
// so one unreachable collection does not hide the other.
func EnsureCollections(ctx context.Context, index vectorDB.Index, dim int) error {
	var errs []error
	for _, kind := range Kinds {
		if err := index.EnsureCollection(ctx, kind.Collection(), dim); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
