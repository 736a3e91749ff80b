package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/log"
	"github.com/docuchat/docuchat/internal/session"
	"github.com/docuchat/docuchat/internal/testutil"
	"github.com/docuchat/docuchat/internal/vectorindex"
)

const testDim = 8

type fakeURLExtractor struct {
	text string
	err  error
}

func (f *fakeURLExtractor) ExtractURL(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type fakePDFExtractor struct {
	text string
	err  error
}

func (f *fakePDFExtractor) Extract(_ io.Reader) (string, error) {
	return f.text, f.err
}

func newTestService(t *testing.T, urls URLExtractor, pdfs PDFExtractor) *Service {
	t.Helper()

	ix, err := vectorindex.New(testDim)
	if err != nil {
		t.Fatalf("vectorindex.New() error: %v", err)
	}
	svc, err := New(&testutil.FakeEmbedder{Dim: testDim}, ix, session.New(), urls, pdfs, log.NewNop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return svc
}

func TestNew_DimensionDisagreement(t *testing.T) {
	ix, _ := vectorindex.New(4)

	_, err := New(&testutil.FakeEmbedder{Dim: 8}, ix, session.New(), nil, nil, log.NewNop())
	if !errors.Is(err, vectorindex.ErrDimensionMismatch) {
		t.Errorf("New() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestIngestURL_ThenAnswer(t *testing.T) {
	raw := "Hello   world\n\nthis is\tthe document"
	svc := newTestService(t, &fakeURLExtractor{text: raw}, nil)

	sess, err := svc.IngestURL(context.Background(), "https://example.com/doc")
	if err != nil {
		t.Fatalf("IngestURL() error: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("IngestURL() returned empty session ID")
	}
	if sess.Kind != session.SourceURL {
		t.Errorf("Kind = %q, want %q", sess.Kind, session.SourceURL)
	}

	ans, err := svc.Answer(context.Background(), sess.ID, "what does it say?")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}
	if want := extract.Normalize(raw); ans.Content != want {
		t.Errorf("Answer().Content = %q, want normalized document %q", ans.Content, want)
	}
	if ans.SessionID != sess.ID {
		t.Errorf("Answer().SessionID = %q, want %q", ans.SessionID, sess.ID)
	}
	if ans.MatchedSessionID == "" {
		t.Error("Answer().MatchedSessionID is empty, want nearest-neighbor diagnostics")
	}
}

func TestIngestPDF(t *testing.T) {
	svc := newTestService(t, nil, &fakePDFExtractor{text: "pdf   body text"})

	sess, err := svc.IngestPDF(context.Background(), "report.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("IngestPDF() error: %v", err)
	}
	if sess.Kind != session.SourcePDF {
		t.Errorf("Kind = %q, want %q", sess.Kind, session.SourcePDF)
	}
	if sess.Source != "report.pdf" {
		t.Errorf("Source = %q, want %q", sess.Source, "report.pdf")
	}

	ans, err := svc.Answer(context.Background(), sess.ID, "summary?")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}
	if ans.Content != "pdf body text" {
		t.Errorf("Content = %q, want %q", ans.Content, "pdf body text")
	}
}

func TestAnswer_SessionScoped(t *testing.T) {
	// Two sessions; each caller must get its own content back even
	// when the question embeds closer to the other session's vector.
	svc := newTestService(t, nil, nil)

	extA := &fakeURLExtractor{text: "document alpha"}
	extB := &fakeURLExtractor{text: "document beta"}

	svc.urls = extA
	sessA, err := svc.IngestURL(context.Background(), "https://a.example")
	if err != nil {
		t.Fatalf("IngestURL(a) error: %v", err)
	}
	svc.urls = extB
	sessB, err := svc.IngestURL(context.Background(), "https://b.example")
	if err != nil {
		t.Fatalf("IngestURL(b) error: %v", err)
	}

	ansA, err := svc.Answer(context.Background(), sessA.ID, "document beta")
	if err != nil {
		t.Fatalf("Answer(a) error: %v", err)
	}
	if ansA.Content != "document alpha" {
		t.Errorf("Answer(a).Content = %q, want %q", ansA.Content, "document alpha")
	}

	ansB, err := svc.Answer(context.Background(), sessB.ID, "document alpha")
	if err != nil {
		t.Fatalf("Answer(b) error: %v", err)
	}
	if ansB.Content != "document beta" {
		t.Errorf("Answer(b).Content = %q, want %q", ansB.Content, "document beta")
	}
}

func TestAnswer_UnknownSession(t *testing.T) {
	svc := newTestService(t, &fakeURLExtractor{text: "doc"}, nil)

	if _, err := svc.IngestURL(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("IngestURL() error: %v", err)
	}

	before := svc.Stats()
	_, err := svc.Answer(context.Background(), "no-such-session", "question")
	if !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("Answer() error = %v, want ErrSessionNotFound", err)
	}

	// A failed lookup must leave stores untouched.
	if after := svc.Stats(); after != before {
		t.Errorf("Stats changed on failed Answer: before %+v, after %+v", before, after)
	}
}

func TestIngestURL_ExtractionError(t *testing.T) {
	svc := newTestService(t, &fakeURLExtractor{err: extract.ErrFetch}, nil)

	_, err := svc.IngestURL(context.Background(), "https://down.example")
	if !errors.Is(err, extract.ErrFetch) {
		t.Fatalf("IngestURL() error = %v, want ErrFetch passthrough", err)
	}

	// Nothing must be stored on a failed ingestion.
	if st := svc.Stats(); st.Sessions != 0 || st.IndexEntries != 0 {
		t.Errorf("Stats after failed ingest = %+v, want empty stores", st)
	}
}

func TestIngest_EmbedderError(t *testing.T) {
	ix, _ := vectorindex.New(testDim)
	embErr := errors.New("backend unavailable")
	svc, err := New(&testutil.FakeEmbedder{Dim: testDim, Err: embErr},
		ix, session.New(), &fakeURLExtractor{text: "doc"}, nil, log.NewNop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := svc.IngestURL(context.Background(), "https://example.com"); !errors.Is(err, embErr) {
		t.Fatalf("IngestURL() error = %v, want embedder error passthrough", err)
	}
	if st := svc.Stats(); st.Sessions != 0 || st.IndexEntries != 0 {
		t.Errorf("Stats after failed ingest = %+v, want empty stores", st)
	}
}

func TestIngest_EmptyDocumentAccepted(t *testing.T) {
	svc := newTestService(t, &fakeURLExtractor{text: "   \n\t  "}, nil)

	sess, err := svc.IngestURL(context.Background(), "https://blank.example")
	if err != nil {
		t.Fatalf("IngestURL() error: %v", err)
	}

	ans, err := svc.Answer(context.Background(), sess.ID, "anything?")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}
	if ans.Content != "" {
		t.Errorf("Content = %q, want empty string for whitespace-only document", ans.Content)
	}
}

func TestStats_CountsTrackIngests(t *testing.T) {
	ext := &fakeURLExtractor{}
	svc := newTestService(t, ext, nil)

	const n = 5
	for i := range n {
		ext.text = fmt.Sprintf("document %d", i)
		if _, err := svc.IngestURL(context.Background(), "https://example.com"); err != nil {
			t.Fatalf("IngestURL() error: %v", err)
		}
	}

	st := svc.Stats()
	if st.Sessions != n || st.IndexEntries != n {
		t.Errorf("Stats = %+v, want %d sessions and %d index entries", st, n, n)
	}
	if st.Model != "fake-embedder" || st.Dimension != testDim {
		t.Errorf("Stats embedder info = %+v", st)
	}
}

func TestIngest_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := newTestService(t, nil, nil)

	const workers = 8
	type result struct {
		id   string
		text string
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []result
	)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text := fmt.Sprintf("document for worker %d", w)
			// Each goroutine gets its own extractor; the service under
			// test is shared.
			sess, err := svc.ingest(context.Background(), session.SourceURL, "concurrent", text)
			if err != nil {
				t.Errorf("ingest() error: %v", err)
				return
			}
			mu.Lock()
			results = append(results, result{id: sess.ID, text: text})
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(results) != workers {
		t.Fatalf("got %d results, want %d", len(results), workers)
	}

	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.id] {
			t.Errorf("duplicate session ID %q", r.id)
		}
		seen[r.id] = true

		ans, err := svc.Answer(context.Background(), r.id, "q")
		if err != nil {
			t.Errorf("Answer(%q) error: %v", r.id, err)
			continue
		}
		if ans.Content != r.text {
			t.Errorf("Answer(%q).Content = %q, want %q", r.id, ans.Content, r.text)
		}
	}

	if st := svc.Stats(); st.Sessions != workers || st.IndexEntries != workers {
		t.Errorf("Stats = %+v, want %d in both stores", st, workers)
	}
}
