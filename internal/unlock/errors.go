package unlock

import "errors"

// Sentinel errors returned by the unlock service. Match with [errors.Is].
var (
	// ErrUnknownSection is returned when the requested section key is not a
	// member of the closed section set. Safe to retry with corrected input.
	ErrUnknownSection = errors.New("unknown section")

	// ErrNotOwner is returned when a caller subject id is supplied and the
	// reading is owned by a different subject.
	ErrNotOwner = errors.New("reading belongs to a different account")

	// ErrTransientConflict is returned when concurrent unlock attempts kept
	// conflicting past the internal retry budget. The caller may retry the
	// whole attempt.
	ErrTransientConflict = errors.New("unlock state changed concurrently, retry")
)
