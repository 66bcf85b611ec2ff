package vectorDB

import (
	"context"
	"math"

	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
)

// Index is the collection-oriented vector store the pipeline writes to and
// retrieves from. One collection holds one document kind, one dimension and
// cosine distance.
type Index interface {
	EnsureCollection(ctx context.Context, name string, dim int) error
	// Upsert writes records in small sequential batches. Invalid vectors and
	// failed batches are counted, not fatal; a StorageError is returned only
	// when storage failures left nothing written.
	Upsert(ctx context.Context, collection string, records []gradingModel.VectorRecord) (gradingModel.UpsertResult, error)
	DeleteByOwner(ctx context.Context, collection string, documentId string) error
	// Search ranks by cosine similarity; a nil query lists matching records
	// by metadata only.
	Search(ctx context.Context, collection string, query []float32, filter gradingModel.Filter, topK int) ([]gradingModel.SearchHit, error)
	ListCollections(ctx context.Context) ([]string, error)
	Close() error
}

// payload keys shared by every implementation
const (
	FieldRecordId     = "record_id"
	FieldDocumentId   = "document_id"
	FieldAssignmentId = "assignment_id"
	FieldOwnerId      = "owner_id"
	FieldKind         = "kind"
	FieldChunkIndex   = "chunk_index"
	FieldChunkText    = "chunk_text"
	FieldIngestedAt   = "ingested_at"
)

// ValidVector rejects vectors that would poison similarity search: wrong
// length, non-finite values, or the all-zero placeholder of a failed embed.
func ValidVector(v []float32, dim int) bool {
	if len(v) == 0 || len(v) != dim {
		return false
	}
	nonZero := false
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		if x != 0 {
			nonZero = true
		}
	}
	return nonZero
}

// SplitBatches cuts records into consecutive groups of at most size.
func SplitBatches(records []gradingModel.VectorRecord, size int) [][]gradingModel.VectorRecord {
	if size < 1 {
		size = 1
	}
	var out [][]gradingModel.VectorRecord
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end])
	}
	return out
}
