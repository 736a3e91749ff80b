package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// HTML extracts readable text from web pages.
//
// Pages are fetched with an explicitly bounded HTTP client: request
// timeout and response size limit are mandatory to keep ingestion
// from blocking indefinitely on a slow or hostile server.
//
// HTML is safe for concurrent use.
type HTML struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewHTML creates an HTML extractor. timeout bounds the whole fetch,
// maxBytes bounds the response body size.
func NewHTML(timeout time.Duration, maxBytes int64, logger *slog.Logger) *HTML {
	if logger == nil {
		logger = slog.Default()
	}

	return &HTML{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// ExtractURL fetches rawURL and returns the page's readable text.
// The result is raw extracted text; callers normalize it.
//
// Fetch problems (bad URL, network failure, non-2xx status) wrap
// ErrFetch; a non-HTML content type wraps ErrUnsupported; pages whose
// markup cannot be parsed wrap ErrParse.
func (h *HTML) ExtractURL(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: parsing url %q: %v", ErrFetch, rawURL, err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrFetch, pageURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrFetch, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrFetch, rawURL, resp.StatusCode)
	}

	if err := checkHTMLContentType(resp.Header.Get("Content-Type")); err != nil {
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response body: %v", ErrFetch, err)
	}

	text, err := h.extractText(body, pageURL)
	if err != nil {
		return "", err
	}

	h.logger.Debug("extracted url content",
		"url", rawURL,
		"body_bytes", len(body),
		"text_bytes", len(text))
	return text, nil
}

// extractText runs readability article extraction over the page and
// falls back to a full-document text strip for pages readability
// cannot reduce to an article (index pages, dashboards).
func (h *HTML) extractText(body []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.TextContent, nil
	}
	if err != nil {
		h.logger.Debug("readability extraction failed, falling back",
			"url", pageURL.String(),
			"error", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: parsing html: %v", ErrParse, err)
	}
	doc.Find("script, style, noscript, template").Remove()
	return doc.Text(), nil
}

// checkHTMLContentType accepts HTML media types. Servers that omit
// the header are given the benefit of the doubt; the parser decides.
func checkHTMLContentType(header string) error {
	if header == "" {
		return nil
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return fmt.Errorf("%w: malformed content type %q", ErrUnsupported, header)
	}

	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupported, mediaType)
}
