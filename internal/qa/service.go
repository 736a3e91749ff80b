// Package qa wires extraction, embedding, the vector index, and the
// session store into the two pipelines the API exposes: document
// ingestion and question answering.
package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/session"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

// URLExtractor fetches a URL and extracts its readable text.
type URLExtractor interface {
	ExtractURL(ctx context.Context, rawURL string) (string, error)
}

// PDFExtractor extracts text from a PDF document.
type PDFExtractor interface {
	Extract(r io.Reader) (string, error)
}

// Session is the ingestion result returned to callers.
type Session struct {
	ID        string
	Kind      session.SourceKind
	Source    string
	CreatedAt time.Time
}

// Answer is the response to a question against a session.
//
// Content is always the asked session's own document text. The
// nearest-neighbor fields report which stored vector the question
// landed closest to across all sessions; they are diagnostic and do
// not influence Content.
type Answer struct {
	SessionID        string
	Content          string
	MatchedSessionID string
	Distance         float64
}

// Stats is a point-in-time snapshot of service state.
type Stats struct {
	Sessions     int
	IndexEntries int
	Model        string
	Dimension    int
}

// Service implements the ingestion and query pipelines.
type Service struct {
	embedder embedding.Embedder
	index    *vectorindex.Index
	sessions *session.Store
	urls     URLExtractor
	pdfs     PDFExtractor
	logger   *slog.Logger

	// ingestMu serializes the index append and the session write so
	// the two stores never disagree about which sessions exist.
	ingestMu sync.Mutex
}

// New creates a Service. The embedder and index must agree on
// dimension.
func New(embedder embedding.Embedder, index *vectorindex.Index, sessions *session.Store,
	urls URLExtractor, pdfs PDFExtractor, logger *slog.Logger) (*Service, error) {
	if embedder.Dimension() != index.Dimension() {
		return nil, fmt.Errorf("%w: embedder produces %d dimensions, index expects %d",
			vectorindex.ErrDimensionMismatch, embedder.Dimension(), index.Dimension())
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		embedder: embedder,
		index:    index,
		sessions: sessions,
		urls:     urls,
		pdfs:     pdfs,
		logger:   logger,
	}, nil
}

// IngestURL fetches rawURL, extracts and normalizes its text, embeds
// it, and stores it under a new session.
func (s *Service) IngestURL(ctx context.Context, rawURL string) (Session, error) {
	text, err := s.urls.ExtractURL(ctx, rawURL)
	if err != nil {
		return Session{}, err
	}
	return s.ingest(ctx, session.SourceURL, rawURL, text)
}

// IngestPDF extracts and normalizes text from the PDF read from r,
// embeds it, and stores it under a new session. name is the uploaded
// filename, kept for provenance only.
func (s *Service) IngestPDF(ctx context.Context, name string, r io.Reader) (Session, error) {
	text, err := s.pdfs.Extract(r)
	if err != nil {
		return Session{}, err
	}
	return s.ingest(ctx, session.SourcePDF, name, text)
}

// ingest is the shared tail of both pipelines: normalize, embed, then
// write the vector and the record as one unit.
func (s *Service) ingest(ctx context.Context, kind session.SourceKind, source, text string) (Session, error) {
	normalized := extract.Normalize(text)

	vector, err := s.embedder.Embed(ctx, normalized)
	if err != nil {
		return Session{}, fmt.Errorf("embedding document: %w", err)
	}

	rec := session.Record{
		ID:        session.NewID(),
		Kind:      kind,
		Source:    source,
		Content:   normalized,
		CreatedAt: time.Now().UTC(),
	}

	// Both writes in one critical section: a session must never be
	// visible without its vector, nor a vector without its session.
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	if err := s.index.Add(rec.ID, vector); err != nil {
		return Session{}, fmt.Errorf("indexing document: %w", err)
	}
	if err := s.sessions.Put(rec); err != nil {
		// Unreachable with random IDs; the index entry it would orphan
		// is harmless because nothing resolves to the missing session.
		return Session{}, fmt.Errorf("storing session: %w", err)
	}

	s.logger.Info("document ingested",
		"session_id", rec.ID,
		"kind", string(kind),
		"content_chars", len(normalized),
	)
	return Session{ID: rec.ID, Kind: kind, Source: source, CreatedAt: rec.CreatedAt}, nil
}

// Answer answers a question against the session identified by id.
//
// The answer content is the session's own stored document text: a
// caller always gets back what it ingested, regardless of what other
// sessions hold. The question is still embedded and run through the
// index so the response can report the globally nearest session and
// its distance.
func (s *Service) Answer(ctx context.Context, id, question string) (Answer, error) {
	rec, err := s.sessions.Get(id)
	if err != nil {
		return Answer{}, err
	}

	ans := Answer{SessionID: rec.ID, Content: rec.Content}

	vector, err := s.embedder.Embed(ctx, extract.Normalize(question))
	if err != nil {
		return Answer{}, fmt.Errorf("embedding question: %w", err)
	}

	matches, err := s.index.Search(vector, 1)
	switch {
	case errors.Is(err, vectorindex.ErrEmptyIndex):
		// The session exists, so its vector should too. Serve the
		// content anyway and flag the inconsistency.
		s.logger.Error("session exists but vector index is empty", "session_id", id)
	case err != nil:
		return Answer{}, fmt.Errorf("searching index: %w", err)
	default:
		ans.MatchedSessionID = matches[0].SessionID
		ans.Distance = matches[0].Distance
	}

	s.logger.Info("question answered",
		"session_id", id,
		"matched_session_id", ans.MatchedSessionID,
		"distance", ans.Distance,
	)
	return ans, nil
}

// Stats reports current store sizes and embedder configuration.
func (s *Service) Stats() Stats {
	return Stats{
		Sessions:     s.sessions.Len(),
		IndexEntries: s.index.Len(),
		Model:        s.embedder.ModelName(),
		Dimension:    s.embedder.Dimension(),
	}
}
