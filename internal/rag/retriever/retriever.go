package retriever

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/metrics"
	"github.com/akolanti/GradeRAG/internal/rag/chunker"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

type Retriever struct {
	embedder embedding.Embedder
	index    vectorDB.Index
	chunking chunker.Options
	logger   *logger_i.Logger
}

// New needs the chunker options the documents were split with so that
// ReconstructDocument knows how much text consecutive chunks share.
func New(e embedding.Embedder, index vectorDB.Index, chunking chunker.Options) *Retriever {
	return &Retriever{
		embedder: e,
		index:    index,
		chunking: chunking,
		logger:   logger_i.NewLogger("retriever"),
	}
}

// Retrieve returns the chunks of one assignment most similar to query. Hits
// from any other assignment are dropped even if the index returned them.
func (r *Retriever) Retrieve(ctx context.Context, assignmentId string, kind gradingModel.Kind, query string, topK int) ([]gradingModel.SearchHit, error) {
	log := r.logger.WithTrace(ctx).With("assignmentId", assignmentId, "kind", kind)
	if strings.TrimSpace(assignmentId) == "" {
		return nil, gradingModel.InvalidInput("assignment id is required")
	}
	if !kind.Valid() {
		return nil, gradingModel.InvalidInput("unknown document kind %q", kind)
	}
	if strings.TrimSpace(query) == "" {
		return nil, gradingModel.InvalidInput("query is empty")
	}
	topK = clampTopK(topK)

	start := time.Now()
	vec, err := r.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("query_embedding", time.Since(start))
	if err != nil {
		log.Error("query embedding failed", "error", err)
		return nil, err
	}

	start = time.Now()
	hits, err := r.index.Search(ctx, kind.Collection(), vec, gradingModel.Filter{AssignmentId: assignmentId, Kind: kind}, topK)
	metrics.CaptureExecutionMetrics("search", time.Since(start))
	if err != nil {
		return nil, err
	}

	scoped := hits[:0]
	for _, h := range hits {
		if h.AssignmentId != assignmentId {
			log.Warn("index returned a chunk from another assignment", "recordId", h.RecordId, "got", h.AssignmentId)
			continue
		}
		scoped = append(scoped, h)
	}
	log.Debug("retrieved", "hits", len(scoped))
	return scoped, nil
}

// DocumentChunks lists every stored chunk of a document in chunk order.
func (r *Retriever) DocumentChunks(ctx context.Context, kind gradingModel.Kind, documentId string) ([]gradingModel.SearchHit, error) {
	if !kind.Valid() {
		return nil, gradingModel.InvalidInput("unknown document kind %q", kind)
	}
	if strings.TrimSpace(documentId) == "" {
		return nil, gradingModel.InvalidInput("document id is required")
	}

	hits, err := r.index.Search(ctx, kind.Collection(), nil, gradingModel.Filter{DocumentId: documentId}, config.ScrollLimit)
	if err != nil {
		return nil, err
	}
	sortByChunk(hits)
	return hits, nil
}

// ReconstructDocument joins the chunks of a document back into its text.
func (r *Retriever) ReconstructDocument(ctx context.Context, kind gradingModel.Kind, documentId string) (string, error) {
	chunks, err := r.DocumentChunks(ctx, kind, documentId)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", gradingModel.ErrDocumentNotFound
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	if r.chunking.Unit == config.ChunkUnitWords {
		return joinWords(texts, r.chunking.Overlap), nil
	}
	return joinRunes(texts, r.chunking.Overlap), nil
}

func clampTopK(topK int) int {
	if topK <= 0 {
		return config.DefaultSearchLimit
	}
	return min(topK, config.MaxSearchLimit)
}

func sortByChunk(hits []gradingModel.SearchHit) {
	// insertion sort: scrolls are small and usually already ordered
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].ChunkIndex < hits[j-1].ChunkIndex; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// character chunks share between overlap and 2*overlap runes, the chunker
// moves each window start back to a word boundary
func joinRunes(texts []string, overlap int) string {
	out := []rune(texts[0])
	for _, t := range texts[1:] {
		next := []rune(t)
		k := sharedLen(out, next, overlap, 2*overlap)
		if k == 0 && len(out) > 0 && len(next) > 0 && !unicode.IsSpace(out[len(out)-1]) && !unicode.IsSpace(next[0]) {
			out = append(out, ' ')
		}
		out = append(out, next[k:]...)
	}
	return string(out)
}

func joinWords(texts []string, overlap int) string {
	words := strings.Fields(texts[0])
	for _, t := range texts[1:] {
		next := strings.Fields(t)
		k := sharedLen(words, next, overlap, overlap)
		words = append(words, next[k:]...)
	}
	return strings.Join(words, " ")
}

// sharedLen returns the smallest k in [lo, hi] for which the last k items of
// prev equal the first k items of next, or 0 when there is none.
func sharedLen[T comparable](prev, next []T, lo, hi int) int {
	lo = max(lo, 1)
	hi = min(hi, len(prev), len(next))
	for k := lo; k <= hi; k++ {
		match := true
		for i := 0; i < k; i++ {
			if prev[len(prev)-k+i] != next[i] {
				match = false
				break
			}
		}
		if match {
			return k
		}
	}
	return 0
}
