package vectorindex

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestNew_InvalidDimension(t *testing.T) {
	for _, dim := range []int{0, -1} {
		if _, err := New(dim); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("New(%d) error = %v, want ErrDimensionMismatch", dim, err)
		}
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	ix, err := New(3)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		name string
		vec  []float32
	}{
		{"too short", []float32{1, 2}},
		{"too long", []float32{1, 2, 3, 4}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ix.Add("s1", tt.vec); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Add() error = %v, want ErrDimensionMismatch", err)
			}
		})
	}

	if ix.Len() != 0 {
		t.Errorf("Len() = %d after rejected adds, want 0", ix.Len())
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix, _ := New(2)

	if _, err := ix.Search([]float32{0, 0}, 1); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("Search() error = %v, want ErrEmptyIndex", err)
	}
}

func TestSearch_InvalidK(t *testing.T) {
	ix, _ := New(2)
	_ = ix.Add("s1", []float32{0, 0})

	for _, k := range []int{0, -5} {
		if _, err := ix.Search([]float32{0, 0}, k); !errors.Is(err, ErrInvalidK) {
			t.Errorf("Search(k=%d) error = %v, want ErrInvalidK", k, err)
		}
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix, _ := New(3)
	_ = ix.Add("s1", []float32{1, 2, 3})

	if _, err := ix.Search([]float32{1, 2}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Search() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestSearch_NearestFirst(t *testing.T) {
	ix, _ := New(2)
	_ = ix.Add("far", []float32{10, 10})
	_ = ix.Add("near", []float32{1, 1})
	_ = ix.Add("mid", []float32{5, 5})

	matches, err := ix.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	want := []string{"near", "mid", "far"}
	for i, id := range want {
		if matches[i].SessionID != id {
			t.Errorf("matches[%d].SessionID = %q, want %q", i, matches[i].SessionID, id)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Distance < matches[i-1].Distance {
			t.Errorf("matches not ordered: distance[%d]=%v < distance[%d]=%v",
				i, matches[i].Distance, i-1, matches[i-1].Distance)
		}
	}
}

func TestSearch_SquaredDistance(t *testing.T) {
	ix, _ := New(2)
	_ = ix.Add("s1", []float32{3, 4})

	matches, err := ix.Search([]float32{0, 0}, 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	// Squared, not plain Euclidean: 3*3 + 4*4 = 25, not 5.
	if matches[0].Distance != 25 {
		t.Errorf("Distance = %v, want 25", matches[0].Distance)
	}
}

func TestSearch_StableTieBreaking(t *testing.T) {
	ix, _ := New(2)

	// Three identical vectors: ties must resolve in insertion order.
	for i := range 3 {
		_ = ix.Add(fmt.Sprintf("s%d", i), []float32{1, 1})
	}

	matches, err := ix.Search([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	for i, m := range matches {
		if m.Position != i {
			t.Errorf("matches[%d].Position = %d, want %d (insertion order)", i, m.Position, i)
		}
		if want := fmt.Sprintf("s%d", i); m.SessionID != want {
			t.Errorf("matches[%d].SessionID = %q, want %q", i, m.SessionID, want)
		}
	}
}

func TestSearch_KExceedsEntries(t *testing.T) {
	ix, _ := New(1)
	_ = ix.Add("a", []float32{1})
	_ = ix.Add("b", []float32{2})

	matches, err := ix.Search([]float32{0}, 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}
}

func TestAdd_CopiesVector(t *testing.T) {
	ix, _ := New(2)
	vec := []float32{1, 1}
	_ = ix.Add("s1", vec)

	// Mutating the caller's slice must not affect the stored entry.
	vec[0] = 100
	vec[1] = 100

	matches, err := ix.Search([]float32{1, 1}, 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if matches[0].Distance != 0 {
		t.Errorf("Distance = %v, want 0 (stored vector was mutated)", matches[0].Distance)
	}
}

func TestIndex_ConcurrentAddSearch(t *testing.T) {
	defer goleak.VerifyNone(t)

	ix, _ := New(2)
	_ = ix.Add("seed", []float32{0, 0})

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				id := fmt.Sprintf("w%d-%d", w, i)
				if err := ix.Add(id, []float32{float32(w), float32(i)}); err != nil {
					t.Errorf("Add() error: %v", err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for range perWorker {
				if _, err := ix.Search([]float32{1, 1}, 1); err != nil {
					t.Errorf("Search() error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if want := 1 + workers*perWorker; ix.Len() != want {
		t.Errorf("Len() = %d, want %d", ix.Len(), want)
	}
}
