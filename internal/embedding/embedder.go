// Package embedding converts free text into numeric vector representations.
package embedding

import (
	"context"
	"math/rand/v2"
)

// DefaultDimension matches the VECTOR(1536) column the store was built for.
const DefaultDimension = 1536

// Embedder converts free text into a fixed-length numeric vector. The only
// guarantee is the vector length; implementations need not be semantic.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// Mock returns random vectors of a fixed dimension. It stands in for a real
// embedding model; callers must not rely on the values, only the shape.
type Mock struct {
	dim int
}

// NewMock creates a mock embedder. A non-positive dimension falls back to
// DefaultDimension.
func NewMock(dim int) *Mock {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Mock{dim: dim}
}

func (m *Mock) Embed(_ context.Context, _ string) ([]float64, error) {
	vec := make([]float64, m.dim)
	for i := range vec {
		vec[i] = rand.Float64()
	}
	return vec, nil
}

func (m *Mock) Dimension() int {
	return m.dim
}
