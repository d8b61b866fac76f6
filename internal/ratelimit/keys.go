package ratelimit

import (
	"strings"
)

const keyPrefix = "rl"

// Key builds a bucket key from a logical operation name and zero or more
// identifying fragments (resource id, client IP, ...). Construction is pure
// and deterministic: identical inputs always map to the same bucket.
//
// Each fragment is sanitized independently so a hostile value cannot inject
// separators and collide with another operation's bucket.
func Key(operation string, fragments ...string) string {
	parts := make([]string, 0, len(fragments)+2)
	parts = append(parts, keyPrefix, sanitize(operation))
	for _, f := range fragments {
		parts = append(parts, sanitize(f))
	}
	return strings.Join(parts, ":")
}

func sanitize(fragment string) string {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return "_"
	}

	var b strings.Builder
	b.Grow(len(fragment))
	for _, r := range fragment {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
