package api

import (
	"log/slog"
	"net/http"
)

// health is a liveness probe. Returns 200 with {"status":"ok"}.
func health(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

type readyResponse struct {
	Status       string `json:"status"`
	Sessions     int    `json:"sessions"`
	IndexEntries int    `json:"index_entries"`
	Model        string `json:"model"`
	Dimension    int    `json:"dimension"`
}

// readiness reports store sizes and embedder configuration alongside
// the probe status.
func readiness(service DocumentService, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := service.Stats()
		writeJSON(w, http.StatusOK, readyResponse{
			Status:       "ok",
			Sessions:     st.Sessions,
			IndexEntries: st.IndexEntries,
			Model:        st.Model,
			Dimension:    st.Dimension,
		}, logger)
	}
}
