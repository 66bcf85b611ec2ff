package store_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/internal/data/redisStore"
	"github.com/akolanti/GradeRAG/internal/data/store"
	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisIngestionStore(t *testing.T) (*store.RedisIngestionStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisIngestionStore(redisStore.NewTestStore(client), time.Hour), mr
}

func record(state gradingModel.IngestionState, msg string) gradingModel.IngestionRecord {
	now := time.Now()
	return gradingModel.IngestionRecord{
		DocumentId:   "doc-1",
		AssignmentId: "asg-1",
		Kind:         gradingModel.KindModelAnswer,
		State:        state,
		Message:      msg,
		StartedAt:    now,
		UpdatedAt:    now,
	}
}

func TestIngestionStores_Lifecycle(t *testing.T) {
	redisImpl, mr := newRedisIngestionStore(t)
	stores := map[string]store.IngestionStore{
		"redis":  redisImpl,
		"memory": store.NewInMemoryIngestionStore(),
	}
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			for _, st := range []gradingModel.IngestionState{gradingModel.StateReceived, gradingModel.StateChunked} {
				if err := s.SaveRecord(ctx, record(st, "")); err != nil {
					t.Fatalf("SaveRecord(%s) failed: %v", st, err)
				}
			}
			stored := record(gradingModel.StateStored, "3 vectors")
			stored.VectorCount = 3
			if err := s.SaveRecord(ctx, stored); err != nil {
				t.Fatalf("SaveRecord failed: %v", err)
			}

			got, found := s.GetRecord(ctx, gradingModel.KindModelAnswer, "doc-1")
			if !found {
				t.Fatal("record was saved but not found")
			}
			if got.State != gradingModel.StateStored || got.VectorCount != 3 {
				t.Errorf("got state %s with %d vectors", got.State, got.VectorCount)
			}

			history, err := s.History(ctx, gradingModel.KindModelAnswer, "doc-1")
			if err != nil {
				t.Fatalf("History failed: %v", err)
			}
			if len(history) != 3 || !strings.Contains(history[2], "STORED 3 vectors") {
				t.Errorf("unexpected history %q", history)
			}

			// a re-ingestion starts a new history
			if err := s.SaveRecord(ctx, record(gradingModel.StateReceived, "")); err != nil {
				t.Fatal(err)
			}
			history, _ = s.History(ctx, gradingModel.KindModelAnswer, "doc-1")
			if len(history) != 1 {
				t.Errorf("history not reset, got %d entries", len(history))
			}

			if _, found := s.GetRecord(ctx, gradingModel.KindModelAnswer, "ghost-id"); found {
				t.Error("expected found=false for unknown document")
			}

			s.DeleteRecord(ctx, gradingModel.KindModelAnswer, "doc-1")
			if _, found := s.GetRecord(ctx, gradingModel.KindModelAnswer, "doc-1"); found {
				t.Error("record still present after DeleteRecord")
			}
		})
	}

	if mr.Exists("ingestion:model_answer:doc-1") {
		t.Error("redis key survived DeleteRecord")
	}
}

func TestRedisIngestionStore_AppliesTTL(t *testing.T) {
	s, mr := newRedisIngestionStore(t)
	ctx := context.Background()
	if err := s.SaveRecord(ctx, record(gradingModel.StateReceived, "")); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("ingestion:model_answer:doc-1"); ttl != time.Hour {
		t.Errorf("record ttl = %v, want 1h", ttl)
	}
	if ttl := mr.TTL("ingestion:model_answer:doc-1:history"); ttl != time.Hour {
		t.Errorf("history ttl = %v, want 1h", ttl)
	}
}

func TestInMemoryIngestionStore_Concurrent(t *testing.T) {
	s := store.NewInMemoryIngestionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SaveRecord(ctx, record(gradingModel.StateChunked, ""))
			_, _ = s.GetRecord(ctx, gradingModel.KindModelAnswer, "doc-1")
		}()
	}
	wg.Wait()

	if _, found := s.GetRecord(ctx, gradingModel.KindModelAnswer, "doc-1"); !found {
		t.Fatal("record missing after concurrent saves")
	}
}

func TestIngestionStores_KindsDoNotCollide(t *testing.T) {
	redisImpl, _ := newRedisIngestionStore(t)
	stores := map[string]store.IngestionStore{
		"redis":  redisImpl,
		"memory": store.NewInMemoryIngestionStore(),
	}
	ctx := context.Background()

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			model := record(gradingModel.StateStored, "")
			submission := record(gradingModel.StateFailed, "no text")
			submission.Kind = gradingModel.KindStudentAnswer
			for _, r := range []gradingModel.IngestionRecord{model, submission} {
				if err := s.SaveRecord(ctx, r); err != nil {
					t.Fatal(err)
				}
			}

			got, found := s.GetRecord(ctx, gradingModel.KindModelAnswer, "doc-1")
			if !found || got.State != gradingModel.StateStored {
				t.Errorf("model answer record overwritten, got %+v", got)
			}
			got, found = s.GetRecord(ctx, gradingModel.KindStudentAnswer, "doc-1")
			if !found || got.State != gradingModel.StateFailed {
				t.Errorf("student answer record wrong, got %+v", got)
			}

			s.DeleteRecord(ctx, gradingModel.KindStudentAnswer, "doc-1")
			if _, found := s.GetRecord(ctx, gradingModel.KindModelAnswer, "doc-1"); !found {
				t.Error("deleting one kind removed the other")
			}
		})
	}
}
