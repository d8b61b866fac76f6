package models

import "time"

// Reading represents one generated reading record together with its
// monetization-gating state. The record itself (content, quiz answers) is
// owned by the wider platform; this core reads and mutates only the
// access-control fields through the readings repository.
type Reading struct {
	// ReadingID is the unique identifier of the reading.
	ReadingID string `json:"reading_id"`

	// OwnerID is the subject id of the identity that owns the reading.
	// Empty while the reading was created anonymously; populated by the
	// email reconciliation that runs on first login.
	OwnerID string `json:"-"`

	// Email is the lead email captured when the reading was requested.
	// Used for case-insensitive reconciliation with a verified identity.
	Email string `json:"-"`

	// UnlockCount is the number of free unlocks consumed so far.
	// Monotonically non-decreasing while the reading is unpurchased and
	// never exceeds the configured free-unlock ceiling.
	UnlockCount int `json:"unlock_count"`

	// UnlockedSections is the set of section keys unlocked through the
	// free-unlock path. Once Purchased is true the set is no longer
	// consulted for non-premium sections.
	UnlockedSections SectionSet `json:"unlocked_sections"`

	// Purchased records the one-way false→true transition that upgrades a
	// teaser reading to a full reading. While true, UnlockCount is frozen.
	Purchased bool `json:"purchased"`

	// CreatedAt is the timestamp when the reading record was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Reading model.
func (r Reading) TableName() string {
	return "readings"
}
