package identity

import (
	"context"
	"fmt"

	"github.com/badal-community/backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type providerVerifier struct {
	secret string
	issuer string
}

func newProviderVerifier(cfg config.IdentityConfig) *providerVerifier {
	return &providerVerifier{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
	}
}

type providerClaims struct {
	PhoneNumber string `json:"phone_number"`
	jwt.RegisteredClaims
}

// VerifyIDToken parses the provider id token and returns the phone number it
// asserts. Expiry and issuer are checked by the jwt library.
func (v *providerVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var claims providerClaims

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(idToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(v.secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.PhoneNumber == "" {
		return "", ErrInvalidToken
	}

	return claims.PhoneNumber, nil
}
