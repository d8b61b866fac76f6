// Package identity verifies externally issued identity tokens against the
// remote identity service and maintains the local session state machine:
// Anonymous -> Authenticated on a verified callback, back to Anonymous on
// logout or passive token expiry.
package identity

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/palmora/reading-gate/internal/config"
	"github.com/palmora/reading-gate/internal/logger"
)

const defaultRequestTimeout = 15 * time.Second

// Client is the outbound contract to the remote identity service. Both
// calls authenticate with the externally issued bearer token and return the
// raw payload map so the caller can apply its field-fallback merging.
type Client interface {
	// Validate asks the identity service to validate token remotely and
	// returns the validation payload. Returns [ErrValidationFailed]
	// (wrapped) on a transport failure, a non-2xx status, or success=false.
	Validate(ctx context.Context, token string) (map[string]any, error)

	// UserInfo fetches the extended profile for the account behind token.
	// Error contract matches Validate.
	UserInfo(ctx context.Context, token string) (map[string]any, error)
}

// remoteResponse is the identity service's envelope: a success flag, the
// payload, and a structured error message on failure.
type remoteResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
}

type httpClient struct {
	client *resty.Client
	logger *logger.Logger
}

// NewClient constructs an HTTP [Client] from the identity configuration.
// The base URL is required; the request timeout falls back to 15 seconds.
// TLS verification is relaxed only for recognized local development hosts.
func NewClient(cfg config.Identity, log *logger.Logger) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		log.Error().Msg("identity service base url is missing")
		return nil, ErrValidationFailed
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	if isDevelopmentHost(baseURL) {
		log.Warn().Str("base_url", baseURL).Msg("relaxing TLS verification for development identity host")
		cli.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &httpClient{client: cli, logger: log}, nil
}

// Validate implements [Client]. It POSTs the bearer token to
// POST /auth/validate and returns the validation payload.
func (h *httpClient) Validate(ctx context.Context, token string) (map[string]any, error) {
	var body remoteResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&body).
		Post("/auth/validate")
	if err != nil {
		return nil, fmt.Errorf("%w: validate request: %w", ErrValidationFailed, err)
	}

	if resp.IsError() || !body.Success {
		logger.FromContext(ctx).Warn().
			Int("status", resp.StatusCode()).
			Str("error", body.Error).
			Msg("identity service rejected token")
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, remoteErrMessage(resp.StatusCode(), body.Error))
	}

	return body.Data, nil
}

// UserInfo implements [Client]. It GETs the extended profile from
// GET /user/info.
func (h *httpClient) UserInfo(ctx context.Context, token string) (map[string]any, error) {
	var body remoteResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&body).
		Get("/user/info")
	if err != nil {
		return nil, fmt.Errorf("%w: user info request: %w", ErrValidationFailed, err)
	}

	if resp.IsError() || !body.Success {
		logger.FromContext(ctx).Warn().
			Int("status", resp.StatusCode()).
			Str("error", body.Error).
			Msg("identity service refused profile fetch")
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, remoteErrMessage(resp.StatusCode(), body.Error))
	}

	return body.Data, nil
}

func remoteErrMessage(status int, structured string) string {
	if structured != "" {
		return structured
	}
	return fmt.Sprintf("identity service returned status %d", status)
}

// isDevelopmentHost recognizes local and development identity hosts for
// which TLS verification may be relaxed. Everything else verifies fully.
func isDevelopmentHost(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}

	host := u.Hostname()
	switch host {
	case "localhost", "127.0.0.1", "::1", "host.docker.internal":
		return true
	}
	return strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".test")
}
