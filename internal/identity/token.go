package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the expiry timestamp embedded in the externally
// issued token without a network call: the token's second dot-delimited
// segment is decoded as a small JSON claim set and its "exp" field read
// directly. Signature verification stays with the identity service; only
// the expiry is trusted locally, and only for passive session invalidation.
//
// Decoding tolerates segments with and without base64 padding characters.
func TokenExpiry(tokenString string) (time.Time, error) {
	parser := jwt.NewParser(jwt.WithPaddingAllowed())

	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing expiry claim", ErrMalformedToken)
	}

	return expiresAt.Time, nil
}
