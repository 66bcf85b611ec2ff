package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/akolanti/GradeRAG/internal/data/redisStore"
	"github.com/akolanti/GradeRAG/internal/rag/embedding"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

// cachedProvider puts a redis lookup in front of a provider. Cache failures
// are logged and the provider is called as if the entry were missing.
type cachedProvider struct {
	next   embedding.Provider
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func New(next embedding.Provider, store *redisStore.Store, ttl time.Duration) embedding.Provider {
	return &cachedProvider{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger_i.NewLogger("embedding_cache"),
	}
}

func (c *cachedProvider) ModelName() string {
	return c.next.ModelName()
}

func (c *cachedProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.WithTrace(ctx)
	key := Key(c.next.ModelName(), text)

	raw, err := c.store.GetBytes(ctx, key)
	switch {
	case err == nil:
		if vec, ok := decode(raw); ok {
			log.Debug("embedding cache hit")
			return vec, nil
		}
		log.Warn("dropping malformed cache entry", "key", key)
	case !c.store.IsNil(err):
		log.Warn("embedding cache read failed", "error", err)
	}

	vec, err := c.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, encode(vec), c.ttl); err != nil {
		log.Warn("embedding cache write failed", "error", err)
	}
	return vec, nil
}

func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

func encode(vec []float32) []byte {
	out := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

func decode(raw []byte) ([]float32, bool) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec, true
}
