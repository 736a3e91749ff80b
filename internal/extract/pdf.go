package extract

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// PDF extracts text from PDF documents.
//
// PDF is safe for concurrent use.
type PDF struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewPDF creates a PDF extractor. maxBytes bounds how much of the
// input stream is read.
func NewPDF(maxBytes int64, logger *slog.Logger) *PDF {
	if logger == nil {
		logger = slog.Default()
	}

	return &PDF{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Extract reads a PDF document from r and returns its text content.
// The result is raw extracted text; callers normalize it.
// Malformed or non-PDF input wraps ErrParse.
func (p *PDF) Extract(r io.Reader) (text string, err error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading upload: %v", ErrParse, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrParse)
	}

	// The pdf library panics on some malformed inputs; convert those
	// to a parse error instead of crashing the request.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrParse, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extracting text: %v", ErrParse, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: reading text: %v", ErrParse, err)
	}

	p.logger.Debug("extracted pdf content",
		"document_bytes", len(data),
		"text_bytes", buf.Len(),
		"pages", reader.NumPage())
	return buf.String(), nil
}
