package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const maxJSONBodyBytes = 1 << 20 // 1 MiB is plenty for a URL or question

// documentsHandler serves the ingestion endpoints.
type documentsHandler struct {
	service   DocumentService
	maxUpload int64
	logger    *slog.Logger
}

type ingestURLRequest struct {
	URL string `json:"url"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// ingestURL handles POST /api/v1/documents/url.
func (h *documentsHandler) ingestURL(w http.ResponseWriter, r *http.Request) {
	var req ingestURLRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	if !validIngestURL(req.URL) {
		writeError(w, http.StatusBadRequest, "invalid_url", "url must be a valid http or https URL", h.logger)
		return
	}

	sess, err := h.service.IngestURL(r.Context(), req.URL)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID,
		Kind:      string(sess.Kind),
		Source:    sess.Source,
		CreatedAt: sess.CreatedAt,
	}, h.logger)
}

const maxBatchURLs = 20

type ingestURLsRequest struct {
	URLs []string `json:"urls"`
}

// ingestURLs handles POST /api/v1/documents/urls. URLs are fetched
// concurrently; the batch fails as a whole on the first error.
func (h *documentsHandler) ingestURLs(w http.ResponseWriter, r *http.Request) {
	var req ingestURLsRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "missing_urls", "urls must not be empty", h.logger)
		return
	}
	if len(req.URLs) > maxBatchURLs {
		writeError(w, http.StatusBadRequest, "too_many_urls", "at most 20 urls per batch", h.logger)
		return
	}
	for _, raw := range req.URLs {
		if !validIngestURL(raw) {
			writeError(w, http.StatusBadRequest, "invalid_url", "every url must be a valid http or https URL", h.logger)
			return
		}
	}

	sessions, err := h.service.IngestURLs(r.Context(), req.URLs)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	out := make([]sessionResponse, len(sessions))
	for i, sess := range sessions {
		out[i] = sessionResponse{
			SessionID: sess.ID,
			Kind:      string(sess.Kind),
			Source:    sess.Source,
			CreatedAt: sess.CreatedAt,
		}
	}
	writeJSON(w, http.StatusCreated, out, h.logger)
}

// ingestPDF handles POST /api/v1/documents/pdf. The document is the
// multipart form file named "file".
func (h *documentsHandler) ingestPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "uploaded file too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "missing_file", "multipart form file 'file' is required", h.logger)
		return
	}
	defer func() { _ = file.Close() }()

	sess, err := h.service.IngestPDF(r.Context(), header.Filename, file)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID,
		Kind:      string(sess.Kind),
		Source:    sess.Source,
		CreatedAt: sess.CreatedAt,
	}, h.logger)
}

// validIngestURL accepts absolute http(s) URLs with a host.
func validIngestURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
