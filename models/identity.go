package models

import "time"

// Identity is the snapshot of an externally issued account identity.
// It is never created by this service: it is materialized from the identity
// service's validation and profile payloads on successful verification,
// cached for the life of the local session, and invalidated on expiry or
// explicit logout.
type Identity struct {
	// SubjectID is the opaque account identifier assigned by the identity
	// service ("account id").
	SubjectID string `json:"subject_id"`

	// Email is the verified account email.
	Email string `json:"email"`

	// Name is the display name of the account holder.
	Name string `json:"name"`

	// DateOfBirth is the account holder's date of birth as reported by the
	// identity service (kept as the provider's string form; readings are
	// generated from it downstream).
	DateOfBirth string `json:"date_of_birth"`

	// ExpiresAt is the expiry of the externally issued token, epoch seconds.
	// Extracted locally from the token itself without a network call.
	ExpiresAt int64 `json:"expires_at"`
}

// Expired reports whether the identity's token expiry has passed at now.
// A zero ExpiresAt is treated as expired: an identity without a known expiry
// must not be trusted.
func (i Identity) Expired(now time.Time) bool {
	return i.ExpiresAt <= 0 || now.Unix() >= i.ExpiresAt
}

// MissingFields returns the names of required identity fields that are still
// empty after merging the validation and profile payloads. Login must never
// complete while this is non-empty.
func (i Identity) MissingFields() []string {
	var missing []string
	if i.SubjectID == "" {
		missing = append(missing, "subject_id")
	}
	if i.Email == "" {
		missing = append(missing, "email")
	}
	if i.Name == "" {
		missing = append(missing, "name")
	}
	if i.DateOfBirth == "" {
		missing = append(missing, "date_of_birth")
	}
	return missing
}
