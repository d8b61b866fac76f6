package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/palmora/reading-gate/internal/identity"
	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/session"
)

type unlockRequest struct {
	Section  string `json:"section"`
	ReturnTo string `json:"return_to"`
}

// unlockSection runs one unlock attempt for a section of a reading. Policy
// rejections (limit reached, premium lock) are regular 200 outcomes carrying
// a redirect; only validation, ownership, and infrastructure failures map to
// error statuses.
func (h *Handler) unlockSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	readingID := chi.URLParam(r, "readingID")

	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	// anonymous teaser flows carry no identity; the ownership check only
	// applies when one resolves
	rc := session.FromHTTPRequest(r)
	subjectID := ""
	ident, err := h.identity.Current(ctx, rc)
	switch {
	case err == nil:
		subjectID = ident.SubjectID
	case errors.Is(err, identity.ErrNotAuthenticated):
		// anonymous caller
	default:
		rc.Apply(w)
		writeError(w, r, err)
		return
	}

	outcome, err := h.unlock.AttemptUnlock(ctx, readingID, req.Section, subjectID, req.ReturnTo)
	if err != nil {
		rc.Apply(w)
		writeError(w, r, err)
		return
	}

	rc.Apply(w)
	writeJSON(w, r, http.StatusOK, outcome)
}
