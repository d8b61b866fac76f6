// Package store implements the persistence layer for reading records.
// The unlock-gating core mutates reading access state exclusively through
// the [ReadingRepository] contract; the records themselves are owned by the
// wider platform.
package store

import (
	"context"

	"github.com/palmora/reading-gate/models"
)

// ReadingRepository is the narrow contract the access-control core reads and
// writes reading records through.
type ReadingRepository interface {
	// GetReading returns the reading identified by readingID.
	// Returns [ErrReadingNotFound] when no such record exists.
	GetReading(ctx context.Context, readingID string) (models.Reading, error)

	// CreateReading persists a new reading record and returns it with
	// server-assigned fields populated.
	CreateReading(ctx context.Context, reading models.Reading) (models.Reading, error)

	// UpdateUnlockState persists a new unlock counter and section set in a
	// single conditional statement: the update applies only while the
	// stored counter still equals observedCount and the reading is
	// unpurchased. Returns [ErrUnlockConflict] when the condition no longer
	// holds, so the caller can re-read and retry.
	UpdateUnlockState(ctx context.Context, readingID string, observedCount int, sections models.SectionSet, newCount int) error

	// MarkPurchased flips the reading's one-way purchased flag.
	// Returns [ErrReadingNotFound] when no such record exists.
	MarkPurchased(ctx context.Context, readingID string) error

	// AttachOwnerByEmail assigns subjectID as owner of every ownerless
	// reading whose lead email matches email case-insensitively. Returns
	// the number of readings attached. Best-effort bulk reconciliation run
	// on first login.
	AttachOwnerByEmail(ctx context.Context, email, subjectID string) (int64, error)
}

// Storages aggregates all repositories the service layer depends on.
type Storages struct {
	ReadingRepository ReadingRepository
}
