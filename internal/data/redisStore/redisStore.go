package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	DB     int
	logger *logger_i.Logger
}

// Open connects to one logical redis database and pings it. The caller owns
// the returned store and closes it on shutdown.
func Open(ctx context.Context, cfg config.RedisConfig, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    db,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	log := logger_i.NewLogger("redis_store").With("db", db, "addr", cfg.Addr)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		log.Error("Redis is offline", "error", err)
		return nil, fmt.Errorf("redis %s db %d: %w", cfg.Addr, db, err)
	}

	log.Info("Redis store init successfully")
	return &Store{client: client, DB: db, logger: log}, nil
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis store")
	return s.client.Close()
}

// NewTestStore wraps an existing client, used with miniredis in tests.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("redis_store_test"),
	}
}
