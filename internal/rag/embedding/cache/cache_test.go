package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/GradeRAG/internal/data/redisStore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	p.calls.Add(1)
	return []float32{0.25, -1.5, 3}, nil
}

func (p *countingProvider) ModelName() string { return "m1" }

func setup(t *testing.T) (*miniredis.Miniredis, *countingProvider, *cachedProvider) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	p := &countingProvider{}
	c := New(p, redisStore.NewTestStore(client), time.Hour).(*cachedProvider)
	return mr, p, c
}

func TestCache_SecondCallIsServedFromRedis(t *testing.T) {
	mr, p, c := setup(t)
	ctx := context.Background()

	first, err := c.EmbedText(ctx, "hello")
	require.NoError(t, err)
	second, err := c.EmbedText(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, p.calls.Load())
	assert.True(t, mr.Exists(Key("m1", "hello")))
	assert.Equal(t, time.Hour, mr.TTL(Key("m1", "hello")))
}

func TestCache_MalformedEntryFallsThrough(t *testing.T) {
	mr, p, c := setup(t)
	require.NoError(t, mr.Set(Key("m1", "hello"), "abc"))

	vec, err := c.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestCache_RedisDownStillEmbeds(t *testing.T) {
	mr, p, c := setup(t)
	mr.Close()

	vec, err := c.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -1.5, 3}, vec)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestKey_SeparatesModels(t *testing.T) {
	assert.NotEqual(t, Key("a", "text"), Key("b", "text"))
	assert.Equal(t, Key("a", "text"), Key("a", "text"))
}
