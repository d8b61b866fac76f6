package unlock

import "github.com/palmora/reading-gate/models"

// Status names the decision branch an unlock attempt resolved to. Policy
// rejections (limit reached, premium lock) are first-class outcomes rather
// than errors: the caller renders them, it does not handle them.
type Status string

const (
	// StatusUnlocked means the section was newly unlocked and one free
	// unlock was consumed.
	StatusUnlocked Status = "unlocked"

	// StatusAlreadyUnlocked means the section was unlocked by an earlier
	// attempt. Idempotent, no counter change.
	StatusAlreadyUnlocked Status = "already_unlocked"

	// StatusLimitReached means the free-unlock quota is exhausted. The
	// outcome carries the offerings redirect.
	StatusLimitReached Status = "limit_reached"

	// StatusPremiumLocked means a premium section was requested on an
	// unpurchased reading. The outcome carries the offerings redirect.
	StatusPremiumLocked Status = "premium_locked"

	// StatusUnlockedAll means the reading is purchased and every
	// non-premium section is implicitly available.
	StatusUnlockedAll Status = "unlocked_all"
)

// Outcome is the full result of an unlock attempt: the branch taken plus
// everything the presentation layer needs to render it without re-deriving
// state.
type Outcome struct {
	// Status is the decision branch taken.
	Status Status `json:"status"`

	// UnlocksRemaining is the number of free unlocks left after this
	// attempt. Only meaningful for the unlocked and already-unlocked
	// branches.
	UnlocksRemaining int `json:"unlocks_remaining"`

	// UnlockedSections is the consistent post-attempt section set.
	UnlockedSections models.SectionSet `json:"unlocked_sections"`

	// RedirectURL is set on policy rejections: the offerings destination,
	// carrying a return-to parameter when the caller supplied one.
	RedirectURL string `json:"redirect_url,omitempty"`
}
