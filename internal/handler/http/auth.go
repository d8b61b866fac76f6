package http

import (
	"net/http"

	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/session"
)

// login sends the browser to the identity service, stashing the optional
// redirect target so the callback can resume it.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	rc := session.FromHTTPRequest(r)

	loginURL := h.identity.LoginURL(rc, r.URL.Query().Get("redirect"))

	rc.Apply(w)
	http.Redirect(w, r, loginURL, http.StatusFound)
}

// callback completes a login attempt started at the identity service.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	rc := session.FromHTTPRequest(r)

	destination, err := h.identity.HandleCallback(ctx, rc, r.URL.Query())
	if err != nil {
		log.Err(err).Msg("login callback failed")
		rc.Apply(w)
		writeError(w, r, err)
		return
	}

	rc.Apply(w)
	http.Redirect(w, r, destination, http.StatusFound)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rc := session.FromHTTPRequest(r)
	destination := h.identity.Logout(ctx, rc)

	rc.Apply(w)
	http.Redirect(w, r, destination, http.StatusFound)
}
