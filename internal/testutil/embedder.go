// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// FakeEmbedder is a deterministic in-process embedder for tests. The
// vector for a text is a pure function of the text bytes, so equal
// texts always embed to equal vectors and distinct texts almost
// surely do not.
type FakeEmbedder struct {
	// Dim is the vector dimension produced. Zero is invalid.
	Dim int

	// Err, if set, is returned by every call.
	Err error

	calls atomic.Int64
}

// Embed generates the embedding for a single text.
func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for the given texts in input order.
func (f *FakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deriveVector(text, f.Dim)
	}
	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (f *FakeEmbedder) Dimension() int { return f.Dim }

// ModelName returns the name of the embedding model.
func (f *FakeEmbedder) ModelName() string { return "fake-embedder" }

// Calls returns how many embedding requests were made.
func (f *FakeEmbedder) Calls() int64 { return f.calls.Load() }

// deriveVector expands a text into dim floats by hashing the text with
// a per-position counter. Values land in [0, 1).
func deriveVector(text string, dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s", i, text))
		bits := binary.BigEndian.Uint32(sum[:4])
		vec[i] = float32(bits) / float32(1<<32)
	}
	return vec
}
