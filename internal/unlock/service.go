// Package unlock implements the monetization gate for reading sections:
// given a reading and a requested section it decides allow, deny, or
// redirect, enforces the global free-unlock quota, and persists the
// unlocked-section state.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/store"
	"github.com/palmora/reading-gate/models"
)

// DefaultFreeLimit is the number of sections a reading can unlock for free
// before the quota branch applies. Global, not per reading.
const DefaultFreeLimit = 2

// maxConflictRetries bounds the optimistic-concurrency retry loop. Each
// retry re-reads the record, so a persistent conflict means the state is
// genuinely contended and the attempt surfaces [ErrTransientConflict].
const maxConflictRetries = 3

// Service is the unlock state machine over the readings repository.
type Service struct {
	readings store.ReadingRepository

	freeLimit    int
	offeringsURL string
	logger       *logger.Logger
}

// NewService constructs the unlock service. A non-positive freeLimit falls
// back to [DefaultFreeLimit].
func NewService(readings store.ReadingRepository, freeLimit int, offeringsURL string, log *logger.Logger) *Service {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeLimit
	}
	return &Service{
		readings:     readings,
		freeLimit:    freeLimit,
		offeringsURL: offeringsURL,
		logger:       log,
	}
}

// AttemptUnlock runs one unlock attempt for sectionKey on the reading
// identified by readingID.
//
// The decision order is fixed: section validation, then the optional strict
// ownership check when callerSubjectID is non-empty, then the premium lock,
// then the purchased short-circuit, then idempotent re-unlock, then the
// free-unlock quota, and finally the state transition itself. The premium
// check deliberately precedes the counter: a premium section is locked on an
// unpurchased reading no matter how many free unlocks remain.
//
// The transition persists the incremented counter and extended section set
// with a conditional update keyed on the observed counter. On a conflict the
// whole attempt re-reads and re-decides, a bounded number of times, so two
// concurrent attempts can never push the counter past the quota.
//
// returnTo, when non-empty, is propagated onto the offerings redirect so the
// user can resume after purchase.
func (s *Service) AttemptUnlock(ctx context.Context, readingID, sectionKey, callerSubjectID, returnTo string) (Outcome, error) {
	log := logger.FromContext(ctx)

	section, err := models.ParseSection(sectionKey)
	if err != nil {
		log.Warn().
			Str("reading_id", readingID).
			Str("section", sectionKey).
			Msg("unlock rejected: unknown section")
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownSection, sectionKey)
	}

	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		reading, err := s.readings.GetReading(ctx, readingID)
		if err != nil {
			return Outcome{}, err
		}

		if callerSubjectID != "" && reading.OwnerID != "" && reading.OwnerID != callerSubjectID {
			log.Warn().
				Str("reading_id", readingID).
				Str("owner_id", reading.OwnerID).
				Str("caller_subject_id", callerSubjectID).
				Msg("unlock rejected: not the owner")
			return Outcome{}, ErrNotOwner
		}

		outcome, done := s.decide(log, reading, section, returnTo)
		if done {
			return outcome, nil
		}

		// transition branch: consume one free unlock
		newSections := reading.UnlockedSections.With(section)
		newCount := reading.UnlockCount + 1

		err = s.readings.UpdateUnlockState(ctx, readingID, reading.UnlockCount, newSections, newCount)
		if err == nil {
			log.Info().
				Str("reading_id", readingID).
				Str("section", section.String()).
				Int("unlock_count", newCount).
				Int("remaining", s.freeLimit-newCount).
				Msg("section unlocked")
			return Outcome{
				Status:           StatusUnlocked,
				UnlocksRemaining: s.freeLimit - newCount,
				UnlockedSections: newSections,
			}, nil
		}
		if !errors.Is(err, store.ErrUnlockConflict) {
			return Outcome{}, err
		}

		log.Debug().
			Str("reading_id", readingID).
			Str("section", section.String()).
			Int("attempt", attempt+1).
			Msg("unlock conflict, re-reading state")
	}

	log.Warn().
		Str("reading_id", readingID).
		Str("section", section.String()).
		Msg("unlock attempts kept conflicting")
	return Outcome{}, ErrTransientConflict
}

// decide resolves every branch that does not mutate state. done=false means
// the caller should proceed with the counted transition.
func (s *Service) decide(log *logger.Logger, reading models.Reading, section models.Section, returnTo string) (Outcome, bool) {
	if section.Premium() && !reading.Purchased {
		log.Info().
			Str("reading_id", reading.ReadingID).
			Str("section", section.String()).
			Int("unlock_count", reading.UnlockCount).
			Msg("premium section locked")
		return Outcome{
			Status:           StatusPremiumLocked,
			UnlocksRemaining: s.remaining(reading),
			UnlockedSections: reading.UnlockedSections,
			RedirectURL:      s.OfferingsRedirect(returnTo),
		}, true
	}

	if reading.Purchased {
		log.Debug().
			Str("reading_id", reading.ReadingID).
			Str("section", section.String()).
			Msg("reading purchased, all sections available")
		return Outcome{
			Status:           StatusUnlockedAll,
			UnlocksRemaining: s.remaining(reading),
			UnlockedSections: reading.UnlockedSections,
		}, true
	}

	if reading.UnlockedSections.Contains(section) {
		log.Debug().
			Str("reading_id", reading.ReadingID).
			Str("section", section.String()).
			Int("unlock_count", reading.UnlockCount).
			Msg("section already unlocked")
		return Outcome{
			Status:           StatusAlreadyUnlocked,
			UnlocksRemaining: s.remaining(reading),
			UnlockedSections: reading.UnlockedSections,
		}, true
	}

	if reading.UnlockCount >= s.freeLimit {
		log.Info().
			Str("reading_id", reading.ReadingID).
			Str("section", section.String()).
			Int("unlock_count", reading.UnlockCount).
			Bool("purchased", reading.Purchased).
			Msg("free unlock limit reached")
		return Outcome{
			Status:           StatusLimitReached,
			UnlocksRemaining: 0,
			UnlockedSections: reading.UnlockedSections,
			RedirectURL:      s.OfferingsRedirect(returnTo),
		}, true
	}

	return Outcome{}, false
}

func (s *Service) remaining(reading models.Reading) int {
	if r := s.freeLimit - reading.UnlockCount; r > 0 {
		return r
	}
	return 0
}

// OfferingsRedirect builds the offerings-page destination, attaching
// returnTo as the resume target when supplied.
func (s *Service) OfferingsRedirect(returnTo string) string {
	if returnTo == "" {
		return s.offeringsURL
	}

	u, err := url.Parse(s.offeringsURL)
	if err != nil {
		return s.offeringsURL
	}
	q := u.Query()
	q.Set("return_to", returnTo)
	u.RawQuery = q.Encode()

	return u.String()
}
