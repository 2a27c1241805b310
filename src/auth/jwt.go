package auth

import (
	"context"
	"errors"
	"fmt"

	"galleryserv/src/app"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload accepted by JWTVerifier.
type Claims struct {
	jwt.RegisteredClaims
	Email  string `json:"email,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// JWTVerifier checks HS256 tokens signed with a shared secret. It suits
// deployments where a trusted gateway mints the tokens.
type JWTVerifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewJWTVerifier creates a verifier; issuer and audience are checked only when non-empty.
func NewJWTVerifier(secret []byte, issuer, audience string) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &JWTVerifier{secret: secret, opts: opts}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (app.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return app.Principal{}, classifyJWTError(err)
	}
	if !parsed.Valid {
		return app.Principal{}, ErrInvalidToken
	}

	id := claims.Subject
	if id == "" {
		id = claims.UserID
	}
	return newPrincipal(id, claims.Email)
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return expired(err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidClaims),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return invalid(err)
	default:
		return fmt.Errorf("token verification failed: %w", err)
	}
}
