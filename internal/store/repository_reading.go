package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// readingRepository is the PostgreSQL-backed implementation of
// [ReadingRepository]. It manages the access-control columns of the
// "readings" table: owner, unlock counter, unlocked section set, and the
// purchase flag.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type readingRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewReadingRepository constructs a [ReadingRepository] backed by the
// provided database connection and logger.
func NewReadingRepository(db *DB, logger *logger.Logger) ReadingRepository {
	logger.Debug().Msg("creating reading repository")
	return &readingRepository{
		db:     db,
		logger: logger,
	}
}

// GetReading retrieves a reading record by its id.
//
// Error handling:
//   - sql.ErrNoRows → [ErrReadingNotFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Section-set decode failure → wrapped [ErrScanningRow].
func (r *readingRepository) GetReading(ctx context.Context, readingID string) (models.Reading, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Select("reading_id", "owner_id", "email", "unlock_count", "unlocked_sections", "purchased", "created_at").
		From("readings").
		Where(sq.Eq{"reading_id": readingID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*readingRepository.GetReading").Msg("error: building query")
		return models.Reading{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var reading models.Reading
	var sections []byte
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&reading.ReadingID, &reading.OwnerID, &reading.Email, &reading.UnlockCount, &sections, &reading.Purchased, &reading.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reading{}, ErrReadingNotFound
		}
		log.Err(err).Str("func", "*readingRepository.GetReading").Msg("error: scanning error")
		return models.Reading{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &reading.UnlockedSections); err != nil {
			log.Err(err).Str("func", "*readingRepository.GetReading").Msg("error: decoding unlocked sections")
			return models.Reading{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
	}

	return reading, nil
}

// CreateReading persists a new reading record and returns the fully
// populated [models.Reading] with server-assigned fields (CreatedAt).
// An empty ReadingID is replaced with a fresh UUID before the insert.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrReadingAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *readingRepository) CreateReading(ctx context.Context, reading models.Reading) (models.Reading, error) {
	log := logger.FromContext(ctx)

	if reading.ReadingID == "" {
		reading.ReadingID = uuid.NewString()
	}

	sections, err := json.Marshal(reading.UnlockedSections)
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	query, args, err := psql.
		Insert("readings").
		Columns("reading_id", "owner_id", "email", "unlock_count", "unlocked_sections", "purchased").
		Values(reading.ReadingID, reading.OwnerID, reading.Email, reading.UnlockCount, sections, reading.Purchased).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*readingRepository.CreateReading").Msg("error: building query")
		return models.Reading{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&reading.CreatedAt); err != nil {
		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.Reading{}, ErrReadingAlreadyExists
		default:
			log.Err(err).Str("func", "*readingRepository.CreateReading").Msg("error: scanning error")
			return models.Reading{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return reading, nil
}

// UpdateUnlockState persists the new unlock counter and section set in one
// conditional UPDATE. The WHERE clause pins the previously observed counter
// and the unpurchased state, so a lost update is impossible: if a concurrent
// unlock (or a purchase) got there first, zero rows match and the caller
// receives [ErrUnlockConflict] to re-read and retry.
func (r *readingRepository) UpdateUnlockState(ctx context.Context, readingID string, observedCount int, sections models.SectionSet, newCount int) error {
	log := logger.FromContext(ctx)

	encoded, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	query, args, err := psql.
		Update("readings").
		Set("unlock_count", newCount).
		Set("unlocked_sections", encoded).
		Where(sq.Eq{
			"reading_id":   readingID,
			"unlock_count": observedCount,
			"purchased":    false,
		}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*readingRepository.UpdateUnlockState").Msg("error: building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*readingRepository.UpdateUnlockState").Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		log.Warn().
			Str("reading_id", readingID).
			Int("observed_count", observedCount).
			Msg("conditional unlock update matched no row")
		return ErrUnlockConflict
	}

	return nil
}

// MarkPurchased flips the reading's purchased flag. The transition is
// one-way; re-marking a purchased reading is a harmless no-op that still
// matches the row.
func (r *readingRepository) MarkPurchased(ctx context.Context, readingID string) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Update("readings").
		Set("purchased", true).
		Where(sq.Eq{"reading_id": readingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*readingRepository.MarkPurchased").Msg("error: executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrReadingNotFound
	}

	return nil
}

// AttachOwnerByEmail attaches every ownerless reading with a matching lead
// email (case-insensitive) to subjectID and returns the number of rows
// updated. Used by the one-time reconciliation on first login; the caller
// treats failures as non-fatal.
func (r *readingRepository) AttachOwnerByEmail(ctx context.Context, email, subjectID string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.
		Update("readings").
		Set("owner_id", subjectID).
		Where(sq.Expr("lower(email) = lower(?)", email)).
		Where(sq.Eq{"owner_id": ""}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*readingRepository.AttachOwnerByEmail").Msg("error: executing statement")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}
