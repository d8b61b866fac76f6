package store

import (
	"github.com/palmora/reading-gate/internal/logger"
)

// NewStorages wires every repository to the shared database connection.
func NewStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		ReadingRepository: NewReadingRepository(db, logger),
	}
}
