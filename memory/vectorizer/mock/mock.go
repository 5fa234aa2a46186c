// Package mock provides a deterministic Vectorizer for testing the memory
// pipeline without real model files or network access.
package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/fablekeep/fable-go-sdk/vector"
)

// Vectorizer generates hash-seeded dense vectors. The same text always
// yields the same vector, which is enough for pipeline tests even though
// the values carry no semantic similarity.
type Vectorizer struct {
	dimensions int
	err        error
	empty      bool
}

// New creates a mock vectorizer with all-MiniLM-L6-v2 dimensions.
func New() *Vectorizer {
	return &Vectorizer{dimensions: 384}
}

// NewFailing creates a mock whose every call fails with err, for testing
// the fallback chain.
func NewFailing(err error) *Vectorizer {
	return &Vectorizer{dimensions: 384, err: err}
}

// NewEmpty creates a mock that returns empty dense vectors, for testing
// the post-backend validity check.
func NewEmpty() *Vectorizer {
	return &Vectorizer{empty: true}
}

// Vectorize returns a deterministic unit-normalized dense vector.
func (m *Vectorizer) Vectorize(ctx context.Context, text string) (vector.Vector, error) {
	if m.err != nil {
		return vector.Vector{}, m.err
	}
	if m.empty {
		return vector.Dense(nil), nil
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	values := make([]float64, m.dimensions)
	var norm float64
	for i := range values {
		// LCG keeps the sequence deterministic per seed.
		seed = seed*6364136223846793005 + 1442695040888963407
		values[i] = float64(int64(seed)) / float64(math.MaxInt64)
		norm += values[i] * values[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range values {
			values[i] /= norm
		}
	}
	return vector.Dense(values), nil
}
