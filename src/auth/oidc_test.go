package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"galleryserv/src/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://securetoken.google.com/gallery-test"
	testClientID = "gallery-test"
)

type oidcFixture struct {
	key      *rsa.PrivateKey
	verifier *OIDCVerifier
}

func newOIDCFixture(t *testing.T) *oidcFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return &oidcFixture{
		key:      key,
		verifier: newOIDCVerifier(oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID})),
	}
}

func (f *oidcFixture) token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(f.key)
	require.NoError(t, err)
	return token
}

func baseIDClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "firebase-uid-1",
		"email": "one@example.com",
		"iat":   time.Now().Add(-time.Minute).Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestOIDCVerifier_Valid(t *testing.T) {
	f := newOIDCFixture(t)

	p, err := f.verifier.Verify(context.Background(), f.token(t, baseIDClaims()))
	require.NoError(t, err)
	assert.Equal(t, app.Principal{ID: "firebase-uid-1", Email: "one@example.com"}, p)
}

func TestOIDCVerifier_Failures(t *testing.T) {
	f := newOIDCFixture(t)

	expiredClaims := baseIDClaims()
	expiredClaims["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongAudience := baseIDClaims()
	wrongAudience["aud"] = "another-project"

	slashSubject := baseIDClaims()
	slashSubject["sub"] = "alice/bob"

	wrongIssuer := baseIDClaims()
	wrongIssuer["iss"] = "https://evil.example"

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodRS256, baseIDClaims()).SignedString(other)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", f.token(t, expiredClaims), ErrTokenExpired},
		{"wrong audience", f.token(t, wrongAudience), ErrInvalidToken},
		{"wrong issuer", f.token(t, wrongIssuer), ErrInvalidToken},
		{"forged signature", forged, ErrInvalidToken},
		{"malformed", "garbage", ErrInvalidToken},
		{"subject with slash", f.token(t, slashSubject), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.verifier.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestOIDCVerifier_ProviderUnreachable(t *testing.T) {
	f := newOIDCFixture(t)
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer jwks.Close()

	ctx := context.Background()
	v := newOIDCVerifier(oidc.NewVerifier(testIssuer, oidc.NewRemoteKeySet(ctx, jwks.URL), &oidc.Config{ClientID: testClientID}))

	_, err := v.Verify(ctx, f.token(t, baseIDClaims()))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidToken), "got %v", err)
	assert.False(t, errors.Is(err, ErrTokenExpired), "got %v", err)
	assert.Contains(t, err.Error(), "identity provider unavailable")
}

func TestIsProviderFailure(t *testing.T) {
	assert.True(t, isProviderFailure(&url.Error{Op: "Get", URL: "http://idp/keys", Err: errors.New("connection refused")}))
	assert.True(t, isProviderFailure(errors.New("failed to verify signature: fetching keys oidc: get keys failed: 502")))
	assert.False(t, isProviderFailure(errors.New("oidc: malformed jwt: bad payload")))
	assert.False(t, isProviderFailure(errors.New("failed to verify signature: no public keys able to verify jwt")))
}

func TestOIDCVerifier_UserInfoFallback(t *testing.T) {
	f := newOIDCFixture(t)
	f.verifier.userInfo = func(ctx context.Context, token string) (app.Principal, error) {
		switch token {
		case "opaque-good":
			return app.Principal{ID: "gitlab-9", Email: "nine@example.com"}, nil
		case "opaque-nested":
			return app.Principal{ID: "group/gitlab-9"}, nil
		}
		return app.Principal{}, errors.New("401 Unauthorized")
	}

	p, err := f.verifier.Verify(context.Background(), "opaque-good")
	require.NoError(t, err)
	assert.Equal(t, "gitlab-9", p.ID)

	_, err = f.verifier.Verify(context.Background(), "opaque-nested")
	assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)

	_, err = f.verifier.Verify(context.Background(), "opaque-bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidToken))
	assert.False(t, errors.Is(err, ErrTokenExpired))

	_, err = f.verifier.Verify(context.Background(), "a.b.c")
	assert.True(t, errors.Is(err, ErrInvalidToken), "JWT-shaped tokens never fall back")
}
