// Package embedding provides text embedders and the vector math built on them.
package embedding

import (
	"context"
	"fmt"
)

// DefaultDimension is the embedding width of the reference deployment
const DefaultDimension = 384

// Embedder turns text into fixed-length vectors. Implementations must be
// deterministic for a given text and safe for concurrent use, and must
// return a zero vector for empty text.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float64, error)
	EncodeBatch(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}

// Error reports a failed call to an embedding backend
type Error struct {
	Backend string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedding backend %s failed: %v", e.Backend, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Fit pads v with zeros or truncates it to width
func Fit(v []float64, width int) []float64 {
	out := make([]float64, width)
	copy(out, v)
	return out
}

// Fit32 converts v to float64 and pads or truncates it to width
func Fit32(v []float32, width int) []float64 {
	out := make([]float64, width)
	for i := 0; i < len(v) && i < width; i++ {
		out[i] = float64(v[i])
	}
	return out
}

// encodeEach runs encode over texts in order
func encodeEach(ctx context.Context, texts []string, encode func(context.Context, string) ([]float64, error)) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := encode(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
