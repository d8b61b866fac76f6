package http

import (
	"encoding/json"
	"net/http"

	"github.com/palmora/reading-gate/internal/logger"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromRequest(r).Err(err).Msg("error encoding response body")
	}
}

// writeError renders a generic, non-leaking message for the mapped status.
// Full detail stays in the structured log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	logger.FromRequest(r).Err(err).Int("status", status).Send()
	http.Error(w, http.StatusText(status), status)
}
