package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const maxQuestionChars = 10000

// chatHandler serves the question-answering endpoint.
type chatHandler struct {
	service DocumentService
	logger  *slog.Logger
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	SessionID        string  `json:"session_id"`
	Answer           string  `json:"answer"`
	MatchedSessionID string  `json:"matched_session_id,omitempty"`
	Distance         float64 `json:"distance"`
}

// send handles POST /api/v1/chat.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
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

	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "missing_session_id", "session_id is required", h.logger)
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "missing_question", "question is required", h.logger)
		return
	}
	if len(req.Question) > maxQuestionChars {
		writeError(w, http.StatusBadRequest, "question_too_long", "question must be 10000 characters or fewer", h.logger)
		return
	}

	ans, err := h.service.Answer(r.Context(), req.SessionID, req.Question)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:        ans.SessionID,
		Answer:           ans.Content,
		MatchedSessionID: ans.MatchedSessionID,
		Distance:         ans.Distance,
	}, h.logger)
}
