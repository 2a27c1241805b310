// Package auth verifies bearer tokens and turns them into principals.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"galleryserv/src/app"
	cfg "galleryserv/src/configuration"
)

var (
	// ErrTokenExpired means the token was well formed and signed but is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidToken covers malformed, forged and wrong-audience tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier checks a raw bearer token. Failures wrap ErrTokenExpired or
// ErrInvalidToken when they can be classified; anything else is an
// operational failure of the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (app.Principal, error)
}

// New builds the verifier selected by AUTH_MODE.
func New(ctx context.Context, config cfg.AuthProperties) (Verifier, error) {
	switch config.Mode {
	case "oidc":
		return NewOIDCVerifier(ctx, config.Issuer, config.ClientID, config.SkipClientIDCheck, config.UserInfoFallback)
	case "jwt":
		return NewJWTVerifier([]byte(config.JWTSecret), config.Issuer, config.ClientID), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", config.Mode)
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// newPrincipal accepts a verified subject as a user id. The id is the first
// segment of every storage key, so it must be non-empty and free of "/".
func newPrincipal(id, email string) (app.Principal, error) {
	if id == "" {
		return app.Principal{}, invalid(errors.New("token carries no subject"))
	}
	if strings.Contains(id, "/") {
		return app.Principal{}, invalid(fmt.Errorf("subject %q is not a valid user id", id))
	}
	return app.Principal{ID: id, Email: email}, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

func expired(err error) error {
	return fmt.Errorf("%w: %v", ErrTokenExpired, err)
}
