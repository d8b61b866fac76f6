package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Cookie names owned by this service.
const (
	// SessionCookieName carries the opaque local session id.
	SessionCookieName = "palmora_session"

	// IdentityCookieName carries only the raw externally issued identity
	// token, never the cached identity snapshot.
	IdentityCookieName = "palmora_identity"
)

// RequestContext is the explicit per-request cookie carrier: cookies read
// from the inbound request on one side, cookies to set on the response on
// the other. It replaces any implicit request/cookie global so every I/O
// boundary of the identity flows is visible in the call signature.
type RequestContext struct {
	sessionID string
	inbound   map[string]string
	outbound  []*http.Cookie
}

// NewRequestContext constructs a carrier from an explicit session id and
// inbound cookie map. Intended for tests and non-HTTP call sites.
func NewRequestContext(sessionID string, cookies map[string]string) *RequestContext {
	if cookies == nil {
		cookies = make(map[string]string)
	}
	return &RequestContext{sessionID: sessionID, inbound: cookies}
}

// FromHTTPRequest builds a carrier from the request's cookies. If the
// request carries no session cookie a fresh session id is generated and the
// corresponding Set-Cookie is queued on the carrier.
func FromHTTPRequest(r *http.Request) *RequestContext {
	rc := &RequestContext{inbound: make(map[string]string)}
	for _, c := range r.Cookies() {
		rc.inbound[c.Name] = c.Value
	}

	if id, ok := rc.inbound[SessionCookieName]; ok && id != "" {
		rc.sessionID = id
		return rc
	}

	rc.sessionID = uuid.NewString()
	rc.SetCookie(SessionCookieName, rc.sessionID, 0)
	return rc
}

// SessionID returns the local session id bound to this request.
func (c *RequestContext) SessionID() string {
	return c.sessionID
}

// Cookie returns the inbound cookie value for name.
func (c *RequestContext) Cookie(name string) (string, bool) {
	v, ok := c.inbound[name]
	return v, ok
}

// SetCookie queues a cookie to be set on the response: http-only,
// same-site-lax, secure, scoped to the site root. A zero ttl produces a
// session cookie without an explicit expiry.
func (c *RequestContext) SetCookie(name, value string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
		cookie.MaxAge = int(ttl.Seconds())
	}
	c.outbound = append(c.outbound, cookie)

	// later writes win on re-read within the same request
	c.inbound[name] = value
}

// ClearCookie queues an expired cookie for name so the browser drops it.
func (c *RequestContext) ClearCookie(name string) {
	c.outbound = append(c.outbound, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	delete(c.inbound, name)
}

// Outbound returns the cookies queued for the response, in order.
func (c *RequestContext) Outbound() []*http.Cookie {
	return c.outbound
}

// Apply writes every queued cookie onto the response writer.
func (c *RequestContext) Apply(w http.ResponseWriter) {
	for _, cookie := range c.outbound {
		http.SetCookie(w, cookie)
	}
}
