package http

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/ratelimit"
	"github.com/palmora/reading-gate/models"
)

const (
	defaultResendLimit  = 3
	defaultResendWindow = 10 * time.Minute
)

type resendResponse struct {
	Status string `json:"status"`
	Link   string `json:"link"`
}

// resendLink re-issues the capability link for a reading and hands it to
// the delivery pipeline. Throttled per reading and client address so the
// endpoint cannot be used to flood a lead's inbox.
func (h *Handler) resendLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	readingID := chi.URLParam(r, "readingID")

	limit := h.rateCfg.ResendLimit
	if limit <= 0 {
		limit = defaultResendLimit
	}
	window := h.rateCfg.ResendWindow
	if window <= 0 {
		window = defaultResendWindow
	}

	bucket := ratelimit.Key("resend", readingID, clientAddr(r))
	result, err := h.limiter.Check(ctx, bucket, limit, window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}

	reading, err := h.readings.GetReading(ctx, readingID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	kind := models.KindTeaserReading
	if reading.Purchased {
		kind = models.KindFullReading
	}

	subject := reading.OwnerID
	if subject == "" {
		subject = reading.Email
	}

	token, err := h.capability.Issue(subject, reading.ReadingID, kind, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().
		Str("reading_id", readingID).
		Str("kind", string(kind)).
		Int64("remaining", result.Remaining).
		Msg("reading link re-issued")

	writeJSON(w, r, http.StatusAccepted, resendResponse{
		Status: "queued",
		Link:   "/r/" + token,
	})
}

// clientAddr extracts the caller's address for rate-limit bucketing,
// preferring the first X-Forwarded-For hop set by the fronting proxy.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
