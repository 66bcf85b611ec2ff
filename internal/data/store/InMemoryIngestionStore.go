package store

import (
	"context"
	"sync"

	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("inmem_ingestion_store")

type InMemoryIngestionStore struct {
	mu      sync.RWMutex
	records map[string]gradingModel.IngestionRecord
	history map[string][]string
}

func NewInMemoryIngestionStore() *InMemoryIngestionStore {
	return &InMemoryIngestionStore{
		records: make(map[string]gradingModel.IngestionRecord),
		history: make(map[string][]string),
	}
}

func (s *InMemoryIngestionStore) SaveRecord(ctx context.Context, record gradingModel.IngestionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := docKey(record.Kind, record.DocumentId)
	if record.State == gradingModel.StateReceived {
		s.history[key] = nil
	}
	s.records[key] = record
	s.history[key] = append(s.history[key], historyEntry(record))
	inMemLogger.Debug("Saved ingestion record", "documentId", record.DocumentId, "state", record.State)
	return nil
}

func (s *InMemoryIngestionStore) GetRecord(ctx context.Context, kind gradingModel.Kind, documentId string) (gradingModel.IngestionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, found := s.records[docKey(kind, documentId)]
	return record, found
}

func (s *InMemoryIngestionStore) History(ctx context.Context, kind gradingModel.Kind, documentId string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[docKey(kind, documentId)]
	out := make([]string, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *InMemoryIngestionStore) DeleteRecord(ctx context.Context, kind gradingModel.Kind, documentId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := docKey(kind, documentId)
	delete(s.records, key)
	delete(s.history, key)
}
