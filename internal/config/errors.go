package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration values are missing. All of them fail closed: the service
// refuses to start rather than running with an insecure default.
var (
	// ErrMissingCapabilitySecret indicates the capability signing secret is
	// absent. Without it no capability token can be issued or verified.
	ErrMissingCapabilitySecret = errors.New("missing capability signing secret")
	// ErrMissingIdentityServiceURL indicates the identity integration is
	// enabled but no identity-service base URL was configured.
	ErrMissingIdentityServiceURL = errors.New("missing identity service base url")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty database DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)
