package capability

import "errors"

// Verification errors. Each failure mode is a distinct sentinel so callers
// can present different user-facing messages (an expired link reads
// differently from a tampered one). Match with [errors.Is].
var (
	// ErrMissingSecret is returned by [New] when no signing secret is
	// configured. Fails closed: no token can be issued or verified.
	ErrMissingSecret = errors.New("capability signing secret is not configured")

	// ErrMalformedToken is returned when the token does not consist of
	// exactly two base64url segments separated by a single dot, or the
	// payload is missing required fields.
	ErrMalformedToken = errors.New("malformed capability token")

	// ErrSignatureMismatch is returned when the recomputed HMAC does not
	// match the token's signature segment.
	ErrSignatureMismatch = errors.New("capability token signature mismatch")

	// ErrTokenExpired is returned when the token's validity window has
	// closed.
	ErrTokenExpired = errors.New("capability token expired")

	// ErrSubjectMismatch is returned when the caller pinned an expected
	// subject and the token was issued to a different one.
	ErrSubjectMismatch = errors.New("capability token subject mismatch")

	// ErrKindNotAllowed is returned when the token's resource kind is not
	// in the caller-supplied allow-list.
	ErrKindNotAllowed = errors.New("capability token resource kind not allowed")
)
