package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_ChunkSizeAboveRuneCap(t *testing.T) {
	cfg := Default()
	cfg.Chunker.Size = 6000

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_chunk_runes")
}

func TestValidate_WordSizeIsNotRuneBound(t *testing.T) {
	cfg := Default()
	cfg.Chunker.Unit = ChunkUnitWords
	cfg.Chunker.Size = 6000
	cfg.Chunker.Overlap = 50

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MaxChunkRunesMustBePositive(t *testing.T) {
	cfg := Default()
	cfg.Chunker.MaxChunkRunes = 0

	assert.Error(t, cfg.Validate())
}

func TestServerWriteTimeout_CoversTwoCompletions(t *testing.T) {
	cfg := Default()
	cfg.Completion.Timeout = 60 * time.Second
	cfg.Completion.Retries = 1
	cfg.Completion.Backoff = 2 * time.Second

	// two calls of (60s + 60s + 2s backoff) plus slack
	assert.Equal(t, 2*122*time.Second+WriteTimeoutSlack, cfg.ServerWriteTimeout())
}

func TestServerWriteTimeout_NeverBelowFloor(t *testing.T) {
	cfg := Default()
	cfg.Completion.Timeout = time.Second
	cfg.Completion.Retries = 0

	assert.Equal(t, WriteTimeout, cfg.ServerWriteTimeout())
}
