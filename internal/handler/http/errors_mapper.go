package http

import (
	"errors"
	"net/http"

	"github.com/palmora/reading-gate/internal/capability"
	"github.com/palmora/reading-gate/internal/identity"
	"github.com/palmora/reading-gate/internal/ratelimit"
	"github.com/palmora/reading-gate/internal/store"
	"github.com/palmora/reading-gate/internal/unlock"
)

var errorStatusMap = map[error]int{
	unlock.ErrUnknownSection:    http.StatusBadRequest,
	unlock.ErrNotOwner:          http.StatusForbidden,
	unlock.ErrTransientConflict: http.StatusConflict,

	identity.ErrIntegrationDisabled: http.StatusServiceUnavailable,
	identity.ErrMissingToken:        http.StatusBadRequest,
	identity.ErrMalformedToken:      http.StatusUnauthorized,
	identity.ErrValidationFailed:    http.StatusUnauthorized,
	identity.ErrNotAuthenticated:    http.StatusUnauthorized,

	capability.ErrMalformedToken:    http.StatusBadRequest,
	capability.ErrSignatureMismatch: http.StatusUnauthorized,
	capability.ErrTokenExpired:      http.StatusGone,
	capability.ErrSubjectMismatch:   http.StatusForbidden,
	capability.ErrKindNotAllowed:    http.StatusForbidden,

	ratelimit.ErrStoreUnavailable: http.StatusServiceUnavailable,

	store.ErrReadingNotFound:      http.StatusNotFound,
	store.ErrReadingAlreadyExists: http.StatusConflict,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
