package gradingModel

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindModelAnswer   Kind = "model_answer"
	KindStudentAnswer Kind = "student_answer"
)

func (k Kind) Valid() bool {
	return k == KindModelAnswer || k == KindStudentAnswer
}

// Collection is the vector collection holding chunks of this kind.
func (k Kind) Collection() string {
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown document kind %q", ErrInvalidInput, s)
	}
	return k, nil
}

type Encoding string

const (
	EncodingRaw    Encoding = ""
	EncodingBase64 Encoding = "base64"
)

// IngestRequest is one document handed over by the CRUD layer: a model answer
// (owner = teacher) or a student submission (owner = student).
type IngestRequest struct {
	DocumentId   string   `json:"document_id" validate:"required"`
	AssignmentId string   `json:"assignment_id" validate:"required"`
	Kind         Kind     `json:"kind" validate:"required,oneof=model_answer student_answer"`
	OwnerId      string   `json:"owner_id"`
	Content      []byte   `json:"-" validate:"required,min=1"`
	Encoding     Encoding `json:"encoding,omitempty" validate:"omitempty,oneof=base64"`
	FileName     string   `json:"file_name,omitempty"`
}

type Chunk struct {
	DocumentId   string `json:"document_id"`
	AssignmentId string `json:"assignment_id"`
	Kind         Kind   `json:"kind"`
	OwnerId      string `json:"owner_id"`
	Index        int    `json:"chunk_index"`
	Text         string `json:"chunk_text"`
}

// RecordId is deterministic so re-upserting the same chunk overwrites it.
func RecordId(documentId string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", documentId, chunkIndex)
}

type VectorRecord struct {
	Id         string
	Vector     []float32
	Chunk      Chunk
	IngestedAt time.Time
}

func NewVectorRecord(chunk Chunk, vector []float32, ingestedAt time.Time) VectorRecord {
	return VectorRecord{
		Id:         RecordId(chunk.DocumentId, chunk.Index),
		Vector:     vector,
		Chunk:      chunk,
		IngestedAt: ingestedAt,
	}
}

type UpsertResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

func (r UpsertResult) Failed() int {
	return r.Attempted - r.Succeeded
}

// Filter is an equality match on payload fields; empty fields are ignored.
type Filter struct {
	AssignmentId string
	DocumentId   string
	OwnerId      string
	Kind         Kind
}

func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

type SearchHit struct {
	RecordId     string  `json:"record_id"`
	Content      string  `json:"content"`
	Score        float32 `json:"score"`
	DocumentId   string  `json:"document_id"`
	AssignmentId string  `json:"assignment_id"`
	OwnerId      string  `json:"owner_id,omitempty"`
	Kind         Kind    `json:"kind"`
	ChunkIndex   int     `json:"chunk_index"`
}

type IngestionState string

const (
	StateReceived      IngestionState = "RECEIVED"
	StateDecoded       IngestionState = "DECODED"
	StateTextExtracted IngestionState = "TEXT_EXTRACTED"
	StateChunked       IngestionState = "CHUNKED"
	StateEmbedded      IngestionState = "EMBEDDED"
	StateStored        IngestionState = "STORED"
	StateFailed        IngestionState = "FAILED"
)

func (s IngestionState) Terminal() bool {
	return s == StateStored || s == StateFailed
}

type IngestionResult struct {
	Success              bool           `json:"success"`
	DocumentId           string         `json:"document_id"`
	Kind                 Kind           `json:"kind"`
	State                IngestionState `json:"state"`
	ChunkCount           int            `json:"chunk_count"`
	VectorCount          int            `json:"vector_count"`
	UsedBinaryExtraction bool           `json:"used_binary_extraction"`
	UsedFallbackVectors  bool           `json:"used_fallback_vectors"`
	// Incomplete means the old vectors were deleted but the new set was not stored.
	Incomplete bool   `json:"incomplete"`
	Message    string `json:"message,omitempty"`
}

// IngestionRecord is the observable progress of the latest ingestion of a document.
type IngestionRecord struct {
	DocumentId   string         `json:"document_id"`
	AssignmentId string         `json:"assignment_id"`
	Kind         Kind           `json:"kind"`
	TraceId      string         `json:"trace_id,omitempty"`
	State        IngestionState `json:"state"`
	Message      string         `json:"message,omitempty"`
	ChunkCount   int            `json:"chunk_count"`
	VectorCount  int            `json:"vector_count"`
	Incomplete   bool           `json:"incomplete"`
	StartedAt    time.Time      `json:"started_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type GradeRequest struct {
	AssignmentPrompt      string `json:"assignment_prompt"`
	ModelAnswer           string `json:"model_answer" validate:"required_without=ModelAnswerDocumentId"`
	ModelAnswerDocumentId string `json:"model_answer_document_id,omitempty"`
	StudentAnswer         string `json:"student_answer" validate:"required"`
	AssignmentId          string `json:"assignment_id,omitempty"`
	SubmissionId          string `json:"submission_id,omitempty"`
}

type GradingResult struct {
	Success              bool        `json:"success"`
	GradingText          string      `json:"grading_text"`
	KeyPointsText        string      `json:"key_points_text"`
	Score                *int        `json:"score"`
	UsedRetrievedContext bool        `json:"used_retrieved_context"`
	ContextExcerpts      []SearchHit `json:"context_excerpts,omitempty"`
}

// NeedsManualReview is true whenever no score could be read from the model output.
func (r GradingResult) NeedsManualReview() bool {
	return r.Score == nil
}

type SearchRequest struct {
	AssignmentId string `json:"assignment_id" validate:"required"`
	Kind         Kind   `json:"kind" validate:"required,oneof=model_answer student_answer"`
	Query        string `json:"query" validate:"required"`
	TopK         int    `json:"top_k,omitempty" validate:"omitempty,min=1"`
}

type IngestionStatus struct {
	Record  IngestionRecord `json:"record"`
	History []string        `json:"history"`
}

type HealthReport struct {
	VectorStore   bool     `json:"vector_store"`
	Collections   []string `json:"collections,omitempty"`
	EmbeddingMode string   `json:"embedding_mode"`
	Error         string   `json:"error,omitempty"`
}
