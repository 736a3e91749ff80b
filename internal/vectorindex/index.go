// Package vectorindex provides an in-memory exact nearest-neighbor
// index over embedding vectors.
//
// The index is a flat append-only collection searched with a linear
// scan under the squared-Euclidean metric. At the target scale (one
// vector per ingested document) exact brute-force search is cheaper
// and simpler than any approximate structure: no build latency, no
// recall loss.
//
// Each entry pairs a vector with the session that owns it, so a search
// result can always be resolved back to its owning session without
// relying on call-order correlation with any other store.
package vectorindex

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDimensionMismatch indicates a vector whose length does not
	// match the index dimension. This is an internal invariant
	// violation: it means the embedder and index were configured with
	// different dimensions.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyIndex indicates a search against an index with no
	// entries. Searching an empty index is an error rather than an
	// empty result so that callers cannot silently treat "nothing
	// ingested yet" as "no good match".
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrInvalidK indicates a search with k < 1.
	ErrInvalidK = errors.New("k must be at least 1")
)

// Match is a single search result.
type Match struct {
	// SessionID identifies the session owning the matched vector.
	SessionID string

	// Position is the insertion-order position of the matched vector.
	Position int

	// Distance is the squared-Euclidean distance to the query.
	Distance float64
}

// Index is an append-only flat vector index.
//
// Index is safe for concurrent use: appends take a write lock,
// searches take a read lock and may proceed concurrently with each
// other.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float32
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrDimensionMismatch, dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Dimension returns the vector dimension the index accepts.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Add appends a vector owned by sessionID. Vectors are append-only:
// there is no update or delete.
func (ix *Index) Add(sessionID string, vector []float32) error {
	if len(vector) != ix.dimension {
		return fmt.Errorf("%w: got %d dimensions, index expects %d",
			ErrDimensionMismatch, len(vector), ix.dimension)
	}

	// Copy so later caller mutations cannot corrupt stored entries.
	stored := make([]float32, len(vector))
	copy(stored, vector)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.ids = append(ix.ids, sessionID)
	ix.vectors = append(ix.vectors, stored)
	return nil
}

// Search returns the k entries nearest to query, ordered nearest
// first. Equal distances are broken stably by insertion order. If the
// index holds fewer than k entries, all entries are returned.
// Searching an empty index fails with ErrEmptyIndex.
func (ix *Index) Search(query []float32, k int) ([]Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			ErrDimensionMismatch, len(query), ix.dimension)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 {
		return nil, ErrEmptyIndex
	}

	matches := make([]Match, len(ix.vectors))
	for i, vec := range ix.vectors {
		matches[i] = Match{
			SessionID: ix.ids[i],
			Position:  i,
			Distance:  squaredL2(query, vec),
		}
	}

	// SliceStable keeps insertion order for equal distances.
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// squaredL2 computes the squared Euclidean distance between two
// vectors of equal length. Accumulation is done in float64 to limit
// rounding error over long vectors.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
