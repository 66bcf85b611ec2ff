package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// DeterministicVector derives a unit vector from the text alone. Equal texts
// give equal vectors, so re-ingesting a document is stable, but distances
// between different texts carry no meaning.
func DeterministicVector(text string, dim int) []float32 {
	sum := sha256.Sum256([]byte(text))
	src := rand.NewPCG(binary.LittleEndian.Uint64(sum[0:8]), binary.LittleEndian.Uint64(sum[8:16]))
	r := rand.New(src)

	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		x := r.NormFloat64()
		vec[i] = float32(x)
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

type mockProvider struct {
	dim int
}

// NewMockProvider serves DeterministicVector, for embedding_mode mock and tests.
func NewMockProvider(dim int) Provider {
	return &mockProvider{dim: dim}
}

func (p *mockProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DeterministicVector(text, p.dim), nil
}

func (p *mockProvider) ModelName() string {
	return "mock"
}
