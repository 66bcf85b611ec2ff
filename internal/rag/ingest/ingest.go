package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/data/store"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/metrics"
	"github.com/akolanti/GradeRAG/internal/rag/chunker"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/go-playground/validator/v10"
)

type Pipeline struct {
	chunker      *chunker.Chunker
	embedder     embedding.Embedder
	index        vectorDB.Index
	store        store.IngestionStore
	validate     *validator.Validate
	minTextRunes int
	logger       *logger_i.Logger
	now          func() time.Time
}

func NewPipeline(c *chunker.Chunker, e embedding.Embedder, index vectorDB.Index, s store.IngestionStore, minTextRunes int) *Pipeline {
	if minTextRunes <= 0 {
		minTextRunes = config.MinTextRunes
	}
	return &Pipeline{
		chunker:      c,
		embedder:     e,
		index:        index,
		store:        s,
		validate:     validator.New(),
		minTextRunes: minTextRunes,
		logger:       logger_i.NewLogger("ingestion"),
		now:          time.Now,
	}
}

// run carries one ingestion through its states and mirrors each transition
// into the ingestion store.
type run struct {
	p      *Pipeline
	ctx    context.Context
	log    *logger_i.Logger
	record gradingModel.IngestionRecord
	result gradingModel.IngestionResult
}

func (r *run) advance(state gradingModel.IngestionState, msg string) {
	r.record.State = state
	r.record.Message = msg
	r.record.UpdatedAt = r.p.now()
	r.record.ChunkCount = r.result.ChunkCount
	r.record.VectorCount = r.result.VectorCount
	r.record.Incomplete = r.result.Incomplete
	r.result.State = state
	r.result.Message = msg

	r.log.Debug("ingestion state", "state", state, "message", msg)
	if err := r.p.store.SaveRecord(r.ctx, r.record); err != nil {
		r.log.Warn("could not record ingestion state", "state", state, "error", err)
	}
}

func (r *run) fail(err error, msg string) (gradingModel.IngestionResult, error) {
	r.result.Success = false
	r.advance(gradingModel.StateFailed, msg)
	metrics.CaptureIngestionState(string(gradingModel.StateFailed))
	r.log.Error("ingestion failed", "message", msg, "error", err)
	return r.result, err
}

// Ingest turns one document into the vector records of its collection,
// replacing any records left by a previous ingestion of the same document.
func (p *Pipeline) Ingest(ctx context.Context, req gradingModel.IngestRequest) (gradingModel.IngestionResult, error) {
	if err := p.validate.Struct(req); err != nil {
		return gradingModel.IngestionResult{
			DocumentId: req.DocumentId,
			Kind:       req.Kind,
			State:      gradingModel.StateFailed,
			Message:    err.Error(),
		}, gradingModel.InvalidInput("%v", err)
	}

	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	now := p.now()
	r := &run{
		p:   p,
		ctx: ctx,
		log: p.logger.WithTrace(ctx).With("documentId", req.DocumentId, "kind", req.Kind),
		record: gradingModel.IngestionRecord{
			DocumentId:   req.DocumentId,
			AssignmentId: req.AssignmentId,
			Kind:         req.Kind,
			TraceId:      traceId,
			StartedAt:    now,
		},
		result: gradingModel.IngestionResult{DocumentId: req.DocumentId, Kind: req.Kind},
	}
	r.advance(gradingModel.StateReceived, "")

	raw, err := decode(req.Content, req.Encoding)
	if err != nil {
		return r.fail(gradingModel.InvalidInput("%v", err), "content could not be decoded")
	}
	r.advance(gradingModel.StateDecoded, "")

	start := time.Now()
	extracted := p.extractText(raw)
	metrics.CaptureExecutionMetrics("extract", time.Since(start))
	r.result.UsedBinaryExtraction = extracted.binary

	text := chunker.Sanitize(extracted.text)
	if utf8.RuneCountInString(text) < p.minTextRunes {
		r.log.Warn("extracted text too short, storing placeholder", "mime", extracted.mime, "runes", utf8.RuneCountInString(text))
		text = config.EmptyTextSentinel
	}
	r.advance(gradingModel.StateTextExtracted, extracted.mime)

	parts := p.chunker.Split(text)
	if len(parts) == 0 {
		parts = []string{config.EmptyTextSentinel}
	}
	chunks := make([]gradingModel.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = gradingModel.Chunk{
			DocumentId:   req.DocumentId,
			AssignmentId: req.AssignmentId,
			Kind:         req.Kind,
			OwnerId:      req.OwnerId,
			Index:        i,
			Text:         part,
		}
	}
	r.result.ChunkCount = len(chunks)
	r.advance(gradingModel.StateChunked, "")

	start = time.Now()
	batch, err := p.embedder.BatchEmbedding(ctx, parts)
	metrics.CaptureExecutionMetrics("embed_batch", time.Since(start))
	if err != nil {
		return r.fail(err, "embedding was interrupted")
	}
	r.result.UsedFallbackVectors = batch.UsedFallback

	// a short vector list is tolerated, the tail of the document is dropped
	n := min(len(chunks), len(batch.Vectors))
	if n < len(chunks) {
		r.log.Warn("fewer vectors than chunks, truncating", "chunks", len(chunks), "vectors", n)
	}
	ingestedAt := p.now()
	records := make([]gradingModel.VectorRecord, n)
	for i := 0; i < n; i++ {
		records[i] = gradingModel.NewVectorRecord(chunks[i], batch.Vectors[i], ingestedAt)
	}
	msg := ""
	if batch.Failed > 0 {
		msg = fmt.Sprintf("%d chunks could not be embedded", batch.Failed)
	}
	r.advance(gradingModel.StateEmbedded, msg)

	collection := req.Kind.Collection()
	start = time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_write", time.Since(start)) }()

	if err := p.index.EnsureCollection(ctx, collection, p.embedder.Dimension()); err != nil {
		return r.fail(err, "vector collection unavailable")
	}
	if err := p.index.DeleteByOwner(ctx, collection, req.DocumentId); err != nil {
		return r.fail(err, "could not remove previous vectors, previous version kept")
	}

	upserted, err := p.index.Upsert(ctx, collection, records)
	r.result.VectorCount = upserted.Succeeded
	if err != nil {
		r.result.Incomplete = true
		return r.fail(err, "previous vectors removed but new vectors were not stored")
	}
	if upserted.Succeeded == 0 {
		r.result.Incomplete = true
		return r.fail(errors.New("no valid vectors to store"), "no vectors stored")
	}

	r.result.Success = true
	if upserted.Failed() > 0 {
		msg = fmt.Sprintf("%d of %d vectors stored", upserted.Succeeded, upserted.Attempted)
	}
	r.advance(gradingModel.StateStored, msg)
	metrics.CaptureIngestionState(string(gradingModel.StateStored))
	metrics.AddIngestedChunks(collection, upserted.Succeeded)
	r.log.Info("document ingested", "chunks", r.result.ChunkCount, "vectors", r.result.VectorCount,
		"binary", r.result.UsedBinaryExtraction, "fallbackVectors", r.result.UsedFallbackVectors)
	return r.result, nil
}

// Remove permanently deletes every vector of a document.
func (p *Pipeline) Remove(ctx context.Context, kind gradingModel.Kind, documentId string) error {
	if !kind.Valid() {
		return gradingModel.InvalidInput("unknown document kind %q", kind)
	}
	if strings.TrimSpace(documentId) == "" {
		return gradingModel.InvalidInput("document id is required")
	}
	if err := p.index.DeleteByOwner(ctx, kind.Collection(), documentId); err != nil {
		return err
	}
	p.store.DeleteRecord(ctx, kind, documentId)
	p.logger.WithTrace(ctx).Info("document removed", "documentId", documentId, "kind", kind)
	return nil
}

// Status reports the latest ingestion of a document and its transitions.
func (p *Pipeline) Status(ctx context.Context, kind gradingModel.Kind, documentId string) (gradingModel.IngestionRecord, []string, bool) {
	record, found := p.store.GetRecord(ctx, kind, documentId)
	if !found {
		return record, nil, false
	}
	history, err := p.store.History(ctx, kind, documentId)
	if err != nil {
		p.logger.WithTrace(ctx).Warn("could not read ingestion history", "documentId", documentId, "kind", kind, "error", err)
	}
	return record, history, true
}

// decode returns raw content untouched unless base64 was declared. Standard,
// url-safe and unpadded alphabets are accepted, as is a data: url prefix.
func decode(content []byte, encoding gradingModel.Encoding) ([]byte, error) {
	if encoding != gradingModel.EncodingBase64 {
		return content, nil
	}

	s := string(content)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if out, err := enc.DecodeString(s); err == nil {
			if len(out) == 0 {
				return nil, errors.New("base64 content is empty")
			}
			return out, nil
		}
	}
	return nil, errors.New("content is not valid base64")
}
