package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/GradeRAG/internal/data/redisStore"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

type RedisIngestionStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedisIngestionStore(store *redisStore.Store, ttl time.Duration) *RedisIngestionStore {
	return &RedisIngestionStore{
		store:  store,
		ttl:    ttl,
		logger: logger_i.NewLogger("ingestion_store"),
	}
}

func (s *RedisIngestionStore) SaveRecord(ctx context.Context, record gradingModel.IngestionRecord) error {
	log := s.logger.WithTrace(ctx).With("documentId", record.DocumentId, "kind", record.Kind, "state", record.State)
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if record.State == gradingModel.StateReceived {
		// a new run starts a fresh history
		if err := s.store.Del(ctx, historyKey(record.Kind, record.DocumentId)); err != nil {
			log.Warn("could not reset ingestion history", "error", err)
		}
	}

	if err = s.store.Set(ctx, recordKey(record.Kind, record.DocumentId), data, s.ttl); err != nil {
		log.Error("saving ingestion record failed", "error", err)
		return err
	}
	if err = s.store.ListPush(ctx, historyKey(record.Kind, record.DocumentId), historyEntry(record), s.ttl); err != nil {
		log.Error("appending ingestion history failed", "error", err)
		return err
	}
	log.Debug("Saved ingestion record to Redis")
	return nil
}

func (s *RedisIngestionStore) GetRecord(ctx context.Context, kind gradingModel.Kind, documentId string) (gradingModel.IngestionRecord, bool) {
	var record gradingModel.IngestionRecord
	log := s.logger.WithTrace(ctx).With("documentId", documentId, "kind", kind)

	val, err := s.store.Get(ctx, recordKey(kind, documentId))
	if s.store.IsNil(err) {
		return record, false
	} else if err != nil {
		log.Error("reading ingestion record failed", "error", err)
		return record, false
	}

	if err = json.Unmarshal([]byte(val), &record); err != nil {
		log.Error("ingestion record is corrupt", "error", err)
		return record, false
	}
	return record, true
}

func (s *RedisIngestionStore) History(ctx context.Context, kind gradingModel.Kind, documentId string) ([]string, error) {
	return s.store.ListGetAll(ctx, historyKey(kind, documentId))
}

func (s *RedisIngestionStore) DeleteRecord(ctx context.Context, kind gradingModel.Kind, documentId string) {
	if err := s.store.Del(ctx, recordKey(kind, documentId), historyKey(kind, documentId)); err != nil {
		s.logger.WithTrace(ctx).Error("Error deleting ingestion record from Redis", "documentId", documentId, "kind", kind, "error", err)
		return
	}
	s.logger.Debug("Ingestion record deleted from Redis", "documentId", documentId, "kind", kind)
}
