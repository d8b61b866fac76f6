// Package capability implements the stateless signed access token binding a
// (subject, resource, resource-kind) triple to a validity window.
//
// A token is base64url(payload) + "." + base64url(HMAC-SHA256(payload)).
// Nothing is persisted server-side: the token is the whole proof, verified
// independently on every use. Tokens are multi-use within their TTL; the
// embedded nonce is hygiene, not replay prevention.
package capability

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/palmora/reading-gate/internal/config"
	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/models"
	"golang.org/x/crypto/hkdf"
)

// DefaultTTL is the validity window applied when no override is configured.
const DefaultTTL = 7 * 24 * time.Hour

const defaultKeyID = "v1"

// Capability issues and verifies signed access tokens. The signing key is
// derived once from the process-wide secret; all state is read-only after
// construction, so a single instance is safe for concurrent use.
type Capability struct {
	key   []byte
	keyID string
	ttl   time.Duration
	now   func() time.Time

	logger *logger.Logger
}

// New constructs a Capability from the application config.
//
// The HMAC key is derived from cfg.CapabilitySecret via HKDF-SHA256 with the
// key id as info, so rotating CapabilityKeyID yields an unrelated key while
// the master secret stays put. Returns [ErrMissingSecret] when the secret is
// empty; issuing unsigned tokens is never an acceptable fallback.
func New(cfg config.App, log *logger.Logger) (*Capability, error) {
	if cfg.CapabilitySecret == "" {
		log.Error().Msg("capability signing secret is missing")
		return nil, ErrMissingSecret
	}

	keyID := cfg.CapabilityKeyID
	if keyID == "" {
		keyID = defaultKeyID
	}

	key := make([]byte, sha256.Size)
	kdf := hkdf.New(sha256.New, []byte(cfg.CapabilitySecret), nil, []byte("capability:"+keyID))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("error deriving capability key: %w", err)
	}

	ttl := cfg.CapabilityTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Capability{
		key:    key,
		keyID:  keyID,
		ttl:    ttl,
		now:    time.Now,
		logger: log,
	}, nil
}

// Issue builds, signs, and serializes a capability token for the given
// triple. A non-positive ttl falls back to the configured default.
func (c *Capability) Issue(subjectID, resourceID string, kind models.ResourceKind, ttl time.Duration) (string, error) {
	if subjectID == "" || resourceID == "" || kind == "" {
		return "", fmt.Errorf("%w: empty subject, resource or kind", ErrMalformedToken)
	}

	if ttl <= 0 {
		ttl = c.ttl
	}

	now := c.now()
	payload := models.CapabilityPayload{
		SubjectID:    subjectID,
		ResourceID:   resourceID,
		ResourceKind: kind,
		IssuedAt:     now.Unix(),
		ExpiresAt:    now.Add(ttl).Unix(),
		Nonce:        uuid.NewString(),
		KeyID:        c.keyID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error serializing capability payload: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(body)
	signature := c.sign(encoded)

	c.logger.Debug().
		Str("subject_id", subjectID).
		Str("resource_id", resourceID).
		Str("kind", string(kind)).
		Time("expires_at", time.Unix(payload.ExpiresAt, 0)).
		Msg("capability token issued")

	return encoded + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// Verify checks token and returns its decoded payload.
//
// Checks, in order: structural shape (exactly two dot-separated segments),
// HMAC signature (constant-time compare), required payload fields, expiry,
// optional expected subject, and membership of the resource kind in
// allowedKinds. Each rejection carries its own sentinel error.
func (c *Capability) Verify(token, expectedSubjectID string, allowedKinds []models.ResourceKind) (models.CapabilityPayload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return models.CapabilityPayload{}, ErrMalformedToken
	}

	signature, err := decodeSegment(parts[1])
	if err != nil {
		return models.CapabilityPayload{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	if !hmac.Equal(signature, c.sign(parts[0])) {
		return models.CapabilityPayload{}, ErrSignatureMismatch
	}

	body, err := decodeSegment(parts[0])
	if err != nil {
		return models.CapabilityPayload{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	var payload models.CapabilityPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.CapabilityPayload{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	if payload.SubjectID == "" || payload.ResourceID == "" || payload.ResourceKind == "" || payload.ExpiresAt == 0 {
		return models.CapabilityPayload{}, fmt.Errorf("%w: missing required payload fields", ErrMalformedToken)
	}

	if payload.Expired(c.now()) {
		return models.CapabilityPayload{}, ErrTokenExpired
	}

	if expectedSubjectID != "" && payload.SubjectID != expectedSubjectID {
		return models.CapabilityPayload{}, ErrSubjectMismatch
	}

	allowed := false
	for _, kind := range allowedKinds {
		if payload.ResourceKind == kind {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.CapabilityPayload{}, ErrKindNotAllowed
	}

	return payload, nil
}

func (c *Capability) sign(encodedPayload string) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(encodedPayload))
	return mac.Sum(nil)
}

// decodeSegment decodes a base64url segment, tolerating both padded and
// unpadded forms.
func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}
