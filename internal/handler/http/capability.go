package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/models"
)

// redeemCapability resolves an emailed capability link: the token alone
// proves right-of-access to the reading, no live session required. A valid
// token redirects to the reading page; the full-reading kind additionally
// carries the section-gate bypass hint for the presentation layer.
func (h *Handler) redeemCapability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	token := chi.URLParam(r, "token")

	payload, err := h.capability.Verify(token, "", []models.ResourceKind{
		models.KindTeaserReading,
		models.KindFullReading,
	})
	if err != nil {
		log.Err(err).Msg("capability token rejected")
		writeError(w, r, err)
		return
	}

	// the reading must still exist; a stale link for a purged record is a 404
	if _, err := h.readings.GetReading(ctx, payload.ResourceID); err != nil {
		writeError(w, r, err)
		return
	}

	destination := "/reading/" + payload.ResourceID
	if payload.ResourceKind == models.KindFullReading {
		destination += "?view=full"
	}

	log.Info().
		Str("subject_id", payload.SubjectID).
		Str("resource_id", payload.ResourceID).
		Str("kind", string(payload.ResourceKind)).
		Msg("capability link redeemed")

	http.Redirect(w, r, destination, http.StatusFound)
}
