package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docuchat/docuchat/internal/extract"
	"github.com/docuchat/docuchat/internal/session"
)

// Every response body is an envelope: {"data": ...} on success,
// {"error": {"code": ..., "message": ...}} on failure.

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a {"data": ...} envelope. Encoding happens into a
// buffer first so headers go out only after the body is known good.
func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(dataEnvelope{Data: data}); err != nil {
		logger.Error("encoding JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		// Client disconnects are common and expected.
		logger.Debug("writing response body", "error", err)
	}
}

// writeError writes an {"error": ...} envelope.
func writeError(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	buf := new(bytes.Buffer)
	env := errorEnvelope{Error: errorBody{Code: code, Message: message}}
	if err := json.NewEncoder(buf).Encode(env); err != nil {
		logger.Error("encoding JSON error response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Debug("writing error response body", "error", err)
	}
}

// writeServiceError maps pipeline errors onto the HTTP error taxonomy:
//
//	unknown session      404 session_not_found
//	fetch failure        502 fetch_failed
//	unreadable document  422 extraction_failed
//	anything else        500 internal_error
func writeServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", "session not found", logger)
	case errors.Is(err, extract.ErrFetch):
		writeError(w, http.StatusBadGateway, "fetch_failed", "could not fetch the document", logger)
	case errors.Is(err, extract.ErrParse), errors.Is(err, extract.ErrUnsupported):
		writeError(w, http.StatusUnprocessableEntity, "extraction_failed", "could not extract text from the document", logger)
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", logger)
	}
}
