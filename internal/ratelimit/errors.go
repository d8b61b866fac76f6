package ratelimit

import "errors"

// ErrStoreUnavailable is returned when the bucket store cannot be reached.
// A store failure is an upstream error, never a silent allow: callers decide
// whether to fail the guarded operation open or closed.
var ErrStoreUnavailable = errors.New("rate limit bucket store unavailable")
