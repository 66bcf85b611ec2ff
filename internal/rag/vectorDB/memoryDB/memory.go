package memoryDB

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/metrics"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

type collection struct {
	dim     int
	records map[string]gradingModel.VectorRecord
}

// Store is a brute-force cosine index held in process memory. It backs tests
// and single-node development; nothing survives a restart.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	dimension   int
	batchSize   int
	logger      *logger_i.Logger
}

func New(dimension int, batchSize int) *Store {
	if batchSize < 1 {
		batchSize = config.UpsertBatchSize
	}
	return &Store{
		collections: make(map[string]*collection),
		dimension:   dimension,
		batchSize:   batchSize,
		logger:      logger_i.NewLogger("memory_index"),
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) EnsureCollection(ctx context.Context, name string, dim int) error {
	if name == "" {
		return gradingModel.NewStorageError("ensure_collection", name, gradingModel.ErrCollectionNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked(name, dim)
	return nil
}

func (s *Store) ensureLocked(name string, dim int) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{dim: dim, records: make(map[string]gradingModel.VectorRecord)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Upsert(ctx context.Context, name string, records []gradingModel.VectorRecord) (gradingModel.UpsertResult, error) {
	log := s.logger.WithTrace(ctx).With("collection", name)
	result := gradingModel.UpsertResult{Attempted: len(records)}

	s.mu.Lock()
	c := s.ensureLocked(name, s.dimension)
	s.mu.Unlock()

	valid := make([]gradingModel.VectorRecord, 0, len(records))
	for _, r := range records {
		if !vectorDB.ValidVector(r.Vector, c.dim) {
			log.Warn("skipping invalid vector", "recordId", r.Id, "length", len(r.Vector))
			continue
		}
		valid = append(valid, r)
	}

	for _, batch := range vectorDB.SplitBatches(valid, s.batchSize) {
		if err := ctx.Err(); err != nil {
			break
		}
		s.mu.Lock()
		for _, r := range batch {
			r.Vector = append([]float32(nil), r.Vector...)
			c.records[r.Id] = r
		}
		s.mu.Unlock()
		result.Succeeded += len(batch)
	}

	if result.Failed() > 0 {
		metrics.AddVectorUpsertFailures(name, result.Failed())
	}
	if result.Succeeded == 0 && len(valid) > 0 {
		return result, gradingModel.NewStorageError("upsert", name, ctx.Err())
	}
	return result, nil
}

func (s *Store) DeleteByOwner(ctx context.Context, name string, documentId string) error {
	if documentId == "" {
		return gradingModel.InvalidInput("document id is required for delete")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureLocked(name, s.dimension)
	for id, r := range c.records {
		if r.Chunk.DocumentId == documentId {
			delete(c.records, id)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, name string, query []float32, filter gradingModel.Filter, topK int) ([]gradingModel.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []gradingModel.SearchHit{}, nil
	}

	hits := make([]gradingModel.SearchHit, 0)
	for _, r := range c.records {
		if !matches(r.Chunk, filter) {
			continue
		}
		var score float32
		if query != nil {
			score = cosine(query, r.Vector)
		}
		hits = append(hits, toHit(r, score))
	}

	if query == nil {
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].DocumentId != hits[j].DocumentId {
				return hits[i].DocumentId < hits[j].DocumentId
			}
			return hits[i].ChunkIndex < hits[j].ChunkIndex
		})
		if topK <= 0 {
			topK = config.ScrollLimit
		}
	} else {
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].Score != hits[j].Score {
				return hits[i].Score > hits[j].Score
			}
			return hits[i].RecordId < hits[j].RecordId
		})
		if topK <= 0 {
			topK = config.DefaultSearchLimit
		}
	}

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func matches(c gradingModel.Chunk, f gradingModel.Filter) bool {
	return (f.AssignmentId == "" || c.AssignmentId == f.AssignmentId) &&
		(f.DocumentId == "" || c.DocumentId == f.DocumentId) &&
		(f.OwnerId == "" || c.OwnerId == f.OwnerId) &&
		(f.Kind == "" || c.Kind == f.Kind)
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func toHit(r gradingModel.VectorRecord, score float32) gradingModel.SearchHit {
	return gradingModel.SearchHit{
		RecordId:     r.Id,
		Content:      r.Chunk.Text,
		Score:        score,
		DocumentId:   r.Chunk.DocumentId,
		AssignmentId: r.Chunk.AssignmentId,
		OwnerId:      r.Chunk.OwnerId,
		Kind:         r.Chunk.Kind,
		ChunkIndex:   r.Chunk.Index,
	}
}
