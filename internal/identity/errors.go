package identity

import "errors"

// Sentinel errors returned by the identity manager and client. Match with
// [errors.Is]. Upstream failures deliberately map to authentication
// failure: a login attempt never silently downgrades to a stale or partial
// identity.
var (
	// ErrIntegrationDisabled is returned while the identity integration is
	// administratively switched off.
	ErrIntegrationDisabled = errors.New("identity integration is disabled")

	// ErrMissingToken is returned when a callback arrives without the
	// externally issued token.
	ErrMissingToken = errors.New("identity token is missing")

	// ErrValidationFailed is returned when the identity service rejects the
	// token or cannot be reached. The caller must treat this as a failed
	// login, not as an anonymous session.
	ErrValidationFailed = errors.New("identity token validation failed")

	// ErrNotAuthenticated is returned when no valid identity can be
	// resolved for the current session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMalformedToken is returned when the externally issued token does
	// not have the JWT shape required to extract its expiry locally.
	ErrMalformedToken = errors.New("malformed identity token")
)
