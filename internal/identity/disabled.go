package identity

import "context"

// disabledClient satisfies [Client] while the identity integration is
// administratively switched off. Every call fails closed.
type disabledClient struct{}

// Disabled returns a [Client] that rejects every call with
// [ErrIntegrationDisabled]. It keeps the composition root uniform when the
// integration is turned off by configuration.
func Disabled() Client {
	return disabledClient{}
}

func (disabledClient) Validate(ctx context.Context, token string) (map[string]any, error) {
	return nil, ErrIntegrationDisabled
}

func (disabledClient) UserInfo(ctx context.Context, token string) (map[string]any, error) {
	return nil, ErrIntegrationDisabled
}
