// Package identity verifies phone ownership through the external identity
// provider. The provider hands the browser an id token after a successful
// OTP challenge; this package only decodes and checks that token.
package identity

import (
	"context"
	"errors"

	"github.com/badal-community/backend/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid identity token")
	ErrDisabled     = errors.New("identity provider disabled")
)

// Verifier decodes a provider id token into the provider-asserted phone
// number.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// New selects the adapter once at startup. With the provider unconfigured
// every verification fails closed instead of being probed per call site.
func New(cfg config.IdentityConfig) Verifier {
	if !cfg.Enabled || cfg.Secret == "" {
		return &disabledVerifier{}
	}

	return newProviderVerifier(cfg)
}
