package identity

import "context"

// disabledVerifier fails closed on every call. Used when the identity
// provider is not configured for this deployment.
type disabledVerifier struct{}

func (d *disabledVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	return "", ErrDisabled
}
