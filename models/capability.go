package models

import "time"

// ResourceKind classifies the resource a capability token grants access to.
// Verification rejects any token whose kind is not in the caller-supplied
// allow-list, so link-consumption code paths can scope tokens precisely.
type ResourceKind string

const (
	// KindTeaserReading grants access to the free, partially locked reading.
	KindTeaserReading ResourceKind = "teaser-reading"

	// KindFullReading grants access to a purchased, fully unlocked reading.
	KindFullReading ResourceKind = "full-reading"
)

// CapabilityPayload is the self-describing body of a capability token.
// It binds a (subject, resource, resource-kind) triple to a validity window
// and is never persisted server-side: each use is verified independently
// against the token's own signature.
type CapabilityPayload struct {
	// SubjectID is the account the capability was issued to.
	SubjectID string `json:"sub"`

	// ResourceID is the reading the capability grants access to.
	ResourceID string `json:"res"`

	// ResourceKind classifies the resource (see ResourceKind constants).
	ResourceKind ResourceKind `json:"kind"`

	// IssuedAt is the issue time, epoch seconds.
	IssuedAt int64 `json:"iat"`

	// ExpiresAt is the end of the validity window, epoch seconds.
	ExpiresAt int64 `json:"exp"`

	// Nonce is a random value included for hygiene. Tokens remain multi-use
	// within their TTL; the nonce is not checked against a used-token store.
	Nonce string `json:"nonce"`

	// KeyID names the signing key the token was issued under, leaving room
	// for key rotation without changing the token format.
	KeyID string `json:"kid"`
}

// Expired reports whether the payload's validity window has closed at now.
func (p CapabilityPayload) Expired(now time.Time) bool {
	return now.Unix() >= p.ExpiresAt
}
