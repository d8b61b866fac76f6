package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// The checks fail closed: a missing capability secret or identity-service
// URL is a startup error, never a silent fallback to an insecure default.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.CapabilitySecret == "" {
		return ErrMissingCapabilitySecret
	}

	if !cfg.Identity.Disabled && cfg.Identity.BaseURL == "" {
		return ErrMissingIdentityServiceURL
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	return nil
}
