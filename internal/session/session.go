// Package session stores ingested document sessions in memory.
//
// A session is created per ingested document and holds the normalized
// text that answers are served from. Records are immutable once
// stored; the store is append-only within a process lifetime and all
// state is lost on restart.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateSession indicates an attempt to store a record under
	// an ID that already exists. IDs are random UUIDs, so this only
	// happens on a caller bug.
	ErrDuplicateSession = errors.New("session already exists")

	// ErrSessionNotFound indicates a lookup for an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")
)

// SourceKind identifies where a session's document came from.
type SourceKind string

const (
	SourceURL SourceKind = "url"
	SourcePDF SourceKind = "pdf"
)

// Record is one ingested document: its identity, provenance, and the
// normalized text served as the answer for queries against it.
type Record struct {
	ID        string
	Kind      SourceKind
	Source    string
	Content   string
	CreatedAt time.Time
}

// Store is an in-memory session store keyed by session ID.
//
// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// New creates an empty store.
func New() *Store {
	return &Store{records: make(map[string]Record)}
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// Put stores a record under its ID. Storing an ID that already exists
// fails with ErrDuplicateSession and leaves the existing record
// untouched.
func (s *Store) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return ErrDuplicateSession
	}
	s.records[rec.ID] = rec
	return nil
}

// Get returns the record for id, or ErrSessionNotFound.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return rec, nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
