package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/data/store"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/internal/rag/chunker"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/internal/rag/vectorDB/memoryDB"
)

const dim = 8

// MockIndex wraps the memory index so single operations can be made to fail.
type MockIndex struct {
	*memoryDB.Store
	OnDelete func(ctx context.Context, collection, documentId string) error
	OnUpsert func(ctx context.Context, collection string, records []gradingModel.VectorRecord) (gradingModel.UpsertResult, error)
}

func (m *MockIndex) DeleteByOwner(ctx context.Context, collection, documentId string) error {
	if m.OnDelete != nil {
		return m.OnDelete(ctx, collection, documentId)
	}
	return m.Store.DeleteByOwner(ctx, collection, documentId)
}

func (m *MockIndex) Upsert(ctx context.Context, collection string, records []gradingModel.VectorRecord) (gradingModel.UpsertResult, error) {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, collection, records)
	}
	return m.Store.Upsert(ctx, collection, records)
}

type MockProvider struct {
	OnEmbedText func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return m.OnEmbedText(ctx, text)
}

func (m *MockProvider) ModelName() string { return "test" }

type fixture struct {
	pipeline *Pipeline
	index    *MockIndex
	store    *store.InMemoryIngestionStore
}

func newFixture(provider embedding.Provider, mode string) *fixture {
	index := &MockIndex{Store: memoryDB.New(dim, config.UpsertBatchSize)}
	s := store.NewInMemoryIngestionStore()
	embedder := embedding.NewManager(provider, embedding.Options{Mode: mode, Dimension: dim})
	c := chunker.New(chunker.Options{Unit: config.ChunkUnitCharacters, Size: 500, Overlap: 50})
	return &fixture{
		pipeline: NewPipeline(c, embedder, index, s, config.MinTextRunes),
		index:    index,
		store:    s,
	}
}

func mockFixture() *fixture {
	return newFixture(nil, config.EmbeddingModeMock)
}

func modelAnswer(id string, content string) gradingModel.IngestRequest {
	return gradingModel.IngestRequest{
		DocumentId:   id,
		AssignmentId: "asg-1",
		Kind:         gradingModel.KindModelAnswer,
		OwnerId:      "teacher-1",
		Content:      []byte(content),
	}
}

func (f *fixture) storedChunks(t *testing.T, kind gradingModel.Kind, documentId string) []gradingModel.SearchHit {
	t.Helper()
	hits, err := f.index.Search(context.Background(), kind.Collection(), nil, gradingModel.Filter{DocumentId: documentId}, 0)
	if err != nil {
		t.Fatalf("scroll failed: %v", err)
	}
	return hits
}

func TestIngest_1200CharacterModelAnswer(t *testing.T) {
	f := mockFixture()
	text := strings.Repeat("abcdefghi ", 120)

	result, err := f.pipeline.Ingest(context.Background(), modelAnswer("doc-1", text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.State != gradingModel.StateStored {
		t.Fatalf("ingestion not stored: %+v", result)
	}
	if result.ChunkCount != 3 || result.VectorCount != 3 {
		t.Errorf("got %d chunks and %d vectors, want 3 and 3", result.ChunkCount, result.VectorCount)
	}
	if result.UsedBinaryExtraction || result.UsedFallbackVectors {
		t.Errorf("plain text should not be degraded: %+v", result)
	}

	hits := f.storedChunks(t, gradingModel.KindModelAnswer, "doc-1")
	if len(hits) != 3 {
		t.Fatalf("collection model_answer holds %d records, want 3", len(hits))
	}
	for i, h := range hits {
		if h.RecordId != fmt.Sprintf("doc-1_%d", i) || h.ChunkIndex != i {
			t.Errorf("record %d has id %s", i, h.RecordId)
		}
	}
}

func TestIngest_IsIdempotent(t *testing.T) {
	f := mockFixture()
	req := modelAnswer("doc-1", strings.Repeat("abcdefghi ", 120))

	for i := 0; i < 2; i++ {
		if _, err := f.pipeline.Ingest(context.Background(), req); err != nil {
			t.Fatalf("ingest %d failed: %v", i, err)
		}
	}
	if n := len(f.storedChunks(t, gradingModel.KindModelAnswer, "doc-1")); n != 3 {
		t.Errorf("got %d records after re-ingest, want 3", n)
	}
}

func TestIngest_EditedDocumentReplacesOldChunks(t *testing.T) {
	f := mockFixture()
	ctx := context.Background()

	if _, err := f.pipeline.Ingest(ctx, modelAnswer("doc-1", strings.Repeat("abcdefghi ", 120))); err != nil {
		t.Fatal(err)
	}
	result, err := f.pipeline.Ingest(ctx, modelAnswer("doc-1", "Photosynthesis turns light into chemical energy."))
	if err != nil {
		t.Fatal(err)
	}

	hits := f.storedChunks(t, gradingModel.KindModelAnswer, "doc-1")
	if len(hits) != 1 || result.ChunkCount != 1 {
		t.Fatalf("got %d stored records for %d chunks, want 1", len(hits), result.ChunkCount)
	}
	if !strings.HasPrefix(hits[0].Content, "Photosynthesis") {
		t.Errorf("old content still reachable: %q", hits[0].Content)
	}
}

func TestIngest_InvalidInputHasNoSideEffects(t *testing.T) {
	f := mockFixture()
	cases := map[string]gradingModel.IngestRequest{
		"missing document id": {AssignmentId: "a", Kind: gradingModel.KindModelAnswer, Content: []byte("text")},
		"missing content":     {DocumentId: "d", AssignmentId: "a", Kind: gradingModel.KindModelAnswer},
		"unknown kind":        {DocumentId: "d", AssignmentId: "a", Kind: "essay", Content: []byte("text")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := f.pipeline.Ingest(context.Background(), req)
			if !errors.Is(err, gradingModel.ErrInvalidInput) {
				t.Fatalf("got %v, want ErrInvalidInput", err)
			}
			if result.Success {
				t.Error("invalid input reported success")
			}
			if _, found := f.store.GetRecord(context.Background(), req.Kind, req.DocumentId); found {
				t.Error("invalid input left an ingestion record")
			}
		})
	}
	if names, _ := f.index.ListCollections(context.Background()); len(names) != 0 {
		t.Errorf("invalid input touched the index: %v", names)
	}
}

func TestIngest_Base64(t *testing.T) {
	f := mockFixture()
	text := "The mitochondria is the powerhouse of the cell."

	req := modelAnswer("doc-b64", base64.StdEncoding.EncodeToString([]byte(text)))
	req.Encoding = gradingModel.EncodingBase64
	result, err := f.pipeline.Ingest(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	hits := f.storedChunks(t, gradingModel.KindModelAnswer, "doc-b64")
	if !result.Success || len(hits) != 1 || hits[0].Content != text {
		t.Fatalf("decoded content not stored: %+v", hits)
	}

	req = modelAnswer("doc-bad", "%%% not base64 %%%")
	req.Encoding = gradingModel.EncodingBase64
	result, err = f.pipeline.Ingest(context.Background(), req)
	if !errors.Is(err, gradingModel.ErrInvalidInput) || result.State != gradingModel.StateFailed {
		t.Fatalf("got %v / %s, want input error and FAILED", err, result.State)
	}
}

func TestIngest_ShortTextStoresPlaceholder(t *testing.T) {
	f := mockFixture()
	result, err := f.pipeline.Ingest(context.Background(), modelAnswer("doc-short", "ok"))
	if err != nil {
		t.Fatal(err)
	}
	hits := f.storedChunks(t, gradingModel.KindModelAnswer, "doc-short")
	if !result.Success || len(hits) != 1 || hits[0].Content != config.EmptyTextSentinel {
		t.Fatalf("expected a single placeholder chunk, got %+v", hits)
	}
}

func TestIngest_BinaryContentIsScanned(t *testing.T) {
	f := mockFixture()
	content := append([]byte{0x00, 0x01, 0xfe, 0xff, 0x02}, []byte("Photosynthesis converts light energy")...)
	content = append(content, 0x00, 0x03, 0x9c)

	req := modelAnswer("doc-bin", "")
	req.Content = content
	result, err := f.pipeline.Ingest(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.UsedBinaryExtraction {
		t.Error("expected binary extraction flag")
	}
	hits := f.storedChunks(t, gradingModel.KindModelAnswer, "doc-bin")
	if len(hits) != 1 || !strings.Contains(hits[0].Content, "Photosynthesis converts light energy") {
		t.Fatalf("printable text not recovered: %+v", hits)
	}
}

func TestIngest_DeleteFailureKeepsPreviousVersion(t *testing.T) {
	f := mockFixture()
	ctx := context.Background()
	if _, err := f.pipeline.Ingest(ctx, modelAnswer("doc-1", strings.Repeat("abcdefghi ", 120))); err != nil {
		t.Fatal(err)
	}

	f.index.OnDelete = func(ctx context.Context, collection, documentId string) error {
		return gradingModel.NewStorageError("delete", collection, errors.New("connection refused"))
	}
	result, err := f.pipeline.Ingest(ctx, modelAnswer("doc-1", "A completely new answer text."))
	if !gradingModel.IsStorageError(err) {
		t.Fatalf("got %v, want a storage error", err)
	}
	if result.State != gradingModel.StateFailed || result.Incomplete {
		t.Errorf("unexpected result %+v", result)
	}
	if n := len(f.storedChunks(t, gradingModel.KindModelAnswer, "doc-1")); n != 3 {
		t.Errorf("previous version lost: %d records left", n)
	}
}

func TestIngest_UpsertFailureAfterDeleteIsIncomplete(t *testing.T) {
	f := mockFixture()
	f.index.OnUpsert = func(ctx context.Context, collection string, records []gradingModel.VectorRecord) (gradingModel.UpsertResult, error) {
		return gradingModel.UpsertResult{Attempted: len(records)}, gradingModel.NewStorageError("upsert", collection, errors.New("unavailable"))
	}

	result, err := f.pipeline.Ingest(context.Background(), modelAnswer("doc-1", strings.Repeat("abcdefghi ", 120)))
	if !gradingModel.IsStorageError(err) {
		t.Fatalf("got %v, want a storage error", err)
	}
	if !result.Incomplete || result.Success || result.VectorCount != 0 {
		t.Errorf("unexpected result %+v", result)
	}

	record, history, found := f.pipeline.Status(context.Background(), gradingModel.KindModelAnswer, "doc-1")
	if !found || record.State != gradingModel.StateFailed || !record.Incomplete {
		t.Fatalf("status not recorded: %+v", record)
	}
	if len(history) != 6 {
		t.Errorf("got %d transitions, want RECEIVED..EMBEDDED plus FAILED: %q", len(history), history)
	}
}

func TestIngest_ProviderDownUsesFallbackVectors(t *testing.T) {
	down := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("connection reset")
	}}
	f := newFixture(down, config.EmbeddingModeReal)

	result, err := f.pipeline.Ingest(context.Background(), modelAnswer("doc-1", strings.Repeat("abcdefghi ", 120)))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || !result.UsedFallbackVectors || result.VectorCount != 3 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestIngest_PartialEmbeddingFailureStoresTheRest(t *testing.T) {
	flaky := &MockProvider{OnEmbedText: func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "poison") {
			return nil, errors.New("rejected")
		}
		return embedding.DeterministicVector(text, dim), nil
	}}
	f := newFixture(flaky, config.EmbeddingModeReal)

	text := strings.Repeat("abcdefghi ", 50) + strings.Repeat("poison ", 80) + strings.Repeat("zyxwvuts ", 60)
	result, err := f.pipeline.Ingest(context.Background(), modelAnswer("doc-1", text))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.VectorCount == 0 || result.VectorCount >= result.ChunkCount {
		t.Errorf("expected a partial store, got %+v", result)
	}
}

func TestRemove(t *testing.T) {
	f := mockFixture()
	ctx := context.Background()
	if _, err := f.pipeline.Ingest(ctx, modelAnswer("doc-1", strings.Repeat("abcdefghi ", 120))); err != nil {
		t.Fatal(err)
	}

	if err := f.pipeline.Remove(ctx, gradingModel.KindModelAnswer, "doc-1"); err != nil {
		t.Fatal(err)
	}
	if n := len(f.storedChunks(t, gradingModel.KindModelAnswer, "doc-1")); n != 0 {
		t.Errorf("%d records survived Remove", n)
	}
	if _, _, found := f.pipeline.Status(ctx, gradingModel.KindModelAnswer, "doc-1"); found {
		t.Error("status survived Remove")
	}
	if err := f.pipeline.Remove(ctx, "essay", "doc-1"); !errors.Is(err, gradingModel.ErrInvalidInput) {
		t.Errorf("got %v for unknown kind", err)
	}
}

func TestPrintableRuns(t *testing.T) {
	in := []byte("\x00\x01ab\x02hello world\x00\x00พืชใช้แสง\xff")
	got := printableRuns(in)
	if got != "hello world พืชใช้แสง" {
		t.Errorf("printableRuns = %q", got)
	}
}

func TestDecode(t *testing.T) {
	raw := []byte("plain")
	if out, err := decode(raw, gradingModel.EncodingRaw); err != nil || string(out) != "plain" {
		t.Errorf("raw content changed: %q %v", out, err)
	}

	encoded := base64.URLEncoding.EncodeToString([]byte("ข้อความ?>"))
	if out, err := decode([]byte(encoded), gradingModel.EncodingBase64); err != nil || string(out) != "ข้อความ?>" {
		t.Errorf("url-safe base64: %q %v", out, err)
	}

	dataURL := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi there"))
	if out, err := decode([]byte(dataURL), gradingModel.EncodingBase64); err != nil || string(out) != "hi there" {
		t.Errorf("data url: %q %v", out, err)
	}
}
