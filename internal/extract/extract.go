// Package extract converts ingestion sources into plain text.
//
// Two extractors are provided: HTML fetches a web page and extracts
// its readable text, PDF extracts text from an uploaded document.
// Both return raw extracted text; callers normalize it with Normalize.
//
// Extraction failures are final: they are surfaced to the caller and
// never retried internally. The sentinel errors distinguish failure
// kinds so callers can decide whether a retry makes sense (transient
// network issue) or not (malformed document):
//
//	if errors.Is(err, extract.ErrFetch) { ... }
package extract

import "errors"

var (
	// ErrFetch indicates the source could not be retrieved (network
	// failure, non-2xx response, invalid URL).
	ErrFetch = errors.New("source fetch failed")

	// ErrParse indicates the retrieved content could not be parsed.
	ErrParse = errors.New("source parse failed")

	// ErrUnsupported indicates the source has a content type the
	// extractor does not handle.
	ErrUnsupported = errors.New("unsupported content type")
)
