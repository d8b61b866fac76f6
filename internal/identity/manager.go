package identity

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/palmora/reading-gate/internal/config"
	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/session"
	"github.com/palmora/reading-gate/internal/store"
	"github.com/palmora/reading-gate/models"
)

// Manager drives the per-browser-session identity state machine.
//
// States: Anonymous and Authenticated(identity, expiresAt). A verified
// callback moves the session to Authenticated; explicit logout or passive
// expiry detected on the next read moves it back. The manager owns every
// mutation of the local session record and the identity cookie.
//
// All collaborators are injected at construction; the manager holds no
// global state and is safe for concurrent use.
type Manager struct {
	client   Client
	sessions session.Store
	readings store.ReadingRepository
	cfg      config.Identity

	siteBaseURL string
	logger      *logger.Logger

	now func() time.Time
}

// NewManager wires the identity manager to its collaborators.
func NewManager(client Client, sessions session.Store, readings store.ReadingRepository, cfg config.Identity, siteBaseURL string, log *logger.Logger) *Manager {
	return &Manager{
		client:      client,
		sessions:    sessions,
		readings:    readings,
		cfg:         cfg,
		siteBaseURL: siteBaseURL,
		logger:      log,
		now:         time.Now,
	}
}

// HandleCallback processes the post-login callback from the identity
// service and returns the URL the browser should be redirected to.
//
// The flow, in order: reject while the integration is disabled; reject a
// missing token; validate the token remotely; fetch the extended profile;
// merge the required identity fields across both payloads with ordered
// fallbacks; extract the token expiry locally. If any required field is
// still missing the local state is cleared and the user is sent to the
// landing page with the missing fields flagged: login never completes with
// an incomplete identity. Otherwise the merged identity is cached in the
// session, the raw token stored in a secure http-only same-site-lax cookie,
// previously anonymous readings are reconciled by email (best effort), and
// the resolved post-login destination is returned.
func (m *Manager) HandleCallback(ctx context.Context, rc *session.RequestContext, query url.Values) (string, error) {
	log := logger.FromContext(ctx)

	if m.cfg.Disabled {
		log.Warn().Msg("identity callback received while integration is disabled")
		return "", ErrIntegrationDisabled
	}

	token := strings.TrimSpace(query.Get("token"))
	if token == "" {
		return "", ErrMissingToken
	}

	ident, expiresAt, err := m.verify(ctx, token)
	if err != nil {
		return "", err
	}

	if missing := ident.MissingFields(); len(missing) > 0 {
		log.Warn().Strs("missing_fields", missing).Msg("identity is incomplete, aborting login")
		m.clear(rc)
		return m.landingURL(missing), nil
	}

	m.persist(rc, token, ident, expiresAt)
	m.reconcileReadings(ctx, ident)

	destination := m.resolveRedirect(rc, query)
	log.Info().
		Str("subject_id", ident.SubjectID).
		Str("destination", destination).
		Msg("login completed")

	return destination, nil
}

// Current resolves the identity bound to the session, if any.
//
// The session cache is consulted first; a cached identity whose token
// expiry has passed clears the session (passive Authenticated -> Anonymous
// transition). With an empty cache the raw token is recovered from the
// identity cookie, re-validated remotely, and the session repopulated on
// success. This is the one read with a write side effect.
func (m *Manager) Current(ctx context.Context, rc *session.RequestContext) (models.Identity, error) {
	if rec, ok := m.sessions.Get(rc.SessionID()); ok && rec.Identity != nil {
		if rec.Identity.Expired(m.now()) {
			logger.FromContext(ctx).Debug().
				Str("subject_id", rec.Identity.SubjectID).
				Msg("cached identity expired, clearing session")
			m.clear(rc)
			return models.Identity{}, ErrNotAuthenticated
		}
		return *rec.Identity, nil
	}

	token, ok := rc.Cookie(session.IdentityCookieName)
	if !ok || token == "" {
		return models.Identity{}, ErrNotAuthenticated
	}

	ident, expiresAt, err := m.verify(ctx, token)
	if err != nil {
		m.clear(rc)
		return models.Identity{}, ErrNotAuthenticated
	}
	if len(ident.MissingFields()) > 0 {
		m.clear(rc)
		return models.Identity{}, ErrNotAuthenticated
	}

	// lazy re-hydration
	m.persist(rc, token, ident, expiresAt)

	return ident, nil
}

// Logout clears the session record and the identity cookie and returns the
// post-logout destination.
func (m *Manager) Logout(ctx context.Context, rc *session.RequestContext) string {
	if rec, ok := m.sessions.Get(rc.SessionID()); ok && rec.Identity != nil {
		logger.FromContext(ctx).Info().
			Str("subject_id", rec.Identity.SubjectID).
			Msg("logging out")
	}

	m.clear(rc)
	return m.landingURL(nil)
}

// LoginURL builds the identity-service login URL and stashes redirectTarget
// in the session so the callback can send the user back where they started.
// An unsafe target is dropped rather than stashed.
func (m *Manager) LoginURL(rc *session.RequestContext, redirectTarget string) string {
	if validRedirectTarget(redirectTarget, m.siteBaseURL) {
		rec, _ := m.sessions.Get(rc.SessionID())
		rec.RedirectTarget = redirectTarget
		m.sessions.Put(rc.SessionID(), rec)
	}

	loginURL := m.cfg.LoginURL
	if loginURL == "" {
		loginURL = strings.TrimRight(m.cfg.BaseURL, "/") + "/login"
	}

	u, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}

	q := u.Query()
	q.Set("redirect_url", strings.TrimRight(m.siteBaseURL, "/")+"/auth/callback")
	u.RawQuery = q.Encode()

	return u.String()
}

// verify validates token remotely, fetches the extended profile, and
// returns the merged identity together with the locally extracted expiry.
func (m *Manager) verify(ctx context.Context, token string) (models.Identity, time.Time, error) {
	validation, err := m.client.Validate(ctx, token)
	if err != nil {
		return models.Identity{}, time.Time{}, err
	}

	profile, err := m.client.UserInfo(ctx, token)
	if err != nil {
		return models.Identity{}, time.Time{}, err
	}

	expiresAt, err := TokenExpiry(token)
	if err != nil {
		return models.Identity{}, time.Time{}, err
	}

	ident := mergeIdentity(validation, profile)
	ident.ExpiresAt = expiresAt.Unix()

	return ident, expiresAt, nil
}

// persist caches the verified identity in the session and stores the raw
// token in the identity cookie. Both expire with the token itself.
func (m *Manager) persist(rc *session.RequestContext, token string, ident models.Identity, expiresAt time.Time) {
	rec, _ := m.sessions.Get(rc.SessionID())
	rec.Token = token
	rec.Identity = &ident
	rec.ExpiresAt = expiresAt
	m.sessions.Put(rc.SessionID(), rec)

	if ttl := expiresAt.Sub(m.now()); ttl > 0 {
		rc.SetCookie(session.IdentityCookieName, token, ttl)
	}
}

// clear performs the Authenticated -> Anonymous transition: the session
// record is destroyed and the identity cookie expired.
func (m *Manager) clear(rc *session.RequestContext) {
	m.sessions.Delete(rc.SessionID())
	rc.ClearCookie(session.IdentityCookieName)
}

// reconcileReadings attaches readings created anonymously with the
// identity's email to its subject id. Best effort: a partial failure is
// logged and never blocks the login flow.
func (m *Manager) reconcileReadings(ctx context.Context, ident models.Identity) {
	log := logger.FromContext(ctx)

	attached, err := m.readings.AttachOwnerByEmail(ctx, ident.Email, ident.SubjectID)
	if err != nil {
		log.Err(err).
			Str("subject_id", ident.SubjectID).
			Msg("reconciling anonymous readings failed")
		return
	}

	if attached > 0 {
		log.Info().
			Str("subject_id", ident.SubjectID).
			Int64("attached", attached).
			Msg("attached anonymous readings to account")
	}
}

// resolveRedirect resolves the post-login destination, in priority order:
// the target stashed in session before the login redirect (consumed and
// cleared on use), the redirect_url query parameter, the redirect query
// parameter, and finally the site root. Every candidate passes the
// allow-list validator first.
func (m *Manager) resolveRedirect(rc *session.RequestContext, query url.Values) string {
	if rec, ok := m.sessions.Get(rc.SessionID()); ok && rec.RedirectTarget != "" {
		stashed := rec.RedirectTarget
		rec.RedirectTarget = ""
		m.sessions.Put(rc.SessionID(), rec)

		if validRedirectTarget(stashed, m.siteBaseURL) {
			return stashed
		}
	}

	for _, param := range []string{"redirect_url", "redirect"} {
		if candidate := query.Get(param); validRedirectTarget(candidate, m.siteBaseURL) {
			return candidate
		}
	}

	return "/"
}

// landingURL builds the generic landing destination, flagging the missing
// identity fields when login could not be completed.
func (m *Manager) landingURL(missing []string) string {
	landing := m.cfg.LandingPath
	if landing == "" {
		landing = "/"
	}
	if len(missing) == 0 {
		return landing
	}

	u, err := url.Parse(landing)
	if err != nil {
		return landing
	}
	q := u.Query()
	q.Set("missing_fields", strings.Join(missing, ","))
	u.RawQuery = q.Encode()

	return u.String()
}
