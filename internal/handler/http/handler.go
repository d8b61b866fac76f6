// Package http exposes the thin HTTP surface over the access-control core:
// the identity callback and logout, the section unlock endpoint, capability
// link redemption, and the throttled resend endpoint.
package http

import (
	"github.com/palmora/reading-gate/internal/capability"
	"github.com/palmora/reading-gate/internal/config"
	"github.com/palmora/reading-gate/internal/identity"
	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/ratelimit"
	"github.com/palmora/reading-gate/internal/store"
	"github.com/palmora/reading-gate/internal/unlock"
)

type Handler struct {
	identity   *identity.Manager
	unlock     *unlock.Service
	capability *capability.Capability
	limiter    *ratelimit.Limiter
	readings   store.ReadingRepository

	rateCfg config.RateLimit

	logger *logger.Logger
}

func NewHandler(
	identityManager *identity.Manager,
	unlockService *unlock.Service,
	capabilities *capability.Capability,
	limiter *ratelimit.Limiter,
	readings store.ReadingRepository,
	rateCfg config.RateLimit,
	logger *logger.Logger,
) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		identity:   identityManager,
		unlock:     unlockService,
		capability: capabilities,
		limiter:    limiter,
		readings:   readings,
		rateCfg:    rateCfg,
		logger:     logger,
	}
}
