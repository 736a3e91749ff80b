// Package embedding generates vector embeddings for text.
//
// Two backends are provided: Gemini (via Genkit's googlegenai plugin,
// the default) and any OpenAI-compatible embeddings endpoint. Both
// satisfy Embedder. The model identifier and vector dimension are
// fixed configuration, set once at process start.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrDimensionMismatch indicates the backend returned a vector whose
// length does not match the configured dimension. This is an internal
// invariant violation (wrong model configured), not a recoverable
// condition.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder generates vector embeddings for text.
//
// Implementations must be deterministic for a fixed model version and
// must accept empty strings (producing some vector, not an error).
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for the given texts, one per
	// input, in input order. Each result is independent of the others.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// checkDimensions validates that the backend returned one vector per
// input, each of the expected length.
func checkDimensions(vectors [][]float32, inputs, dimension int) error {
	if len(vectors) != inputs {
		return fmt.Errorf("%w: got %d vectors for %d inputs",
			ErrDimensionMismatch, len(vectors), inputs)
	}
	for i, vec := range vectors {
		if len(vec) != dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				ErrDimensionMismatch, i, len(vec), dimension)
		}
	}
	return nil
}
