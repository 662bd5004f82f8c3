package auth

import (
	"context"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_TestPool"

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims(overrides jwt.MapClaims) jwt.MapClaims {
	claims := jwt.MapClaims{
		"sub":            "user-1",
		"email":          "dev@example.com",
		"cognito:groups": []string{"dev"},
		"iss":            testIssuer,
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func TestVerifyValidToken(t *testing.T) {
	key := mustGenerateKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	v := NewVerifier(testIssuer, srv.srv.URL)

	token := signToken(t, key, "kid-1", validClaims(nil))

	claims, err := v.Verify(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, []string{"dev"}, claims.Groups)
}

func TestVerifyMissingHeader(t *testing.T) {
	v := NewVerifier(testIssuer, "http://localhost:1/jwks.json")

	for _, header := range []string{"", "Bearer ", "Basic dXNlcjpwYXNz", "token-without-scheme"} {
		_, err := v.Verify(context.Background(), header)
		assert.ErrorIs(t, err, ErrMissingToken, "header %q", header)
	}
}

func TestVerifyNotConfigured(t *testing.T) {
	v := NewVerifier("", "")

	_, err := v.Verify(context.Background(), "Bearer some.jwt.token")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifyExpiredToken(t *testing.T) {
	key := mustGenerateKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	v := NewVerifier(testIssuer, srv.srv.URL)

	token := signToken(t, key, "kid-1", validClaims(jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	}))

	_, err := v.Verify(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongIssuer(t *testing.T) {
	key := mustGenerateKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	v := NewVerifier(testIssuer, srv.srv.URL)

	token := signToken(t, key, "kid-1", validClaims(jwt.MapClaims{
		"iss": "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_OtherPool",
	}))

	_, err := v.Verify(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongKey(t *testing.T) {
	signingKey := mustGenerateKey(t)
	publishedKey := mustGenerateKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &publishedKey.PublicKey})
	v := NewVerifier(testIssuer, srv.srv.URL)

	token := signToken(t, signingKey, "kid-1", validClaims(nil))

	_, err := v.Verify(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGroupsAbsentOrMalformed(t *testing.T) {
	key := mustGenerateKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	v := NewVerifier(testIssuer, srv.srv.URL)

	t.Run("absent groups claim", func(t *testing.T) {
		claims := validClaims(nil)
		delete(claims, "cognito:groups")
		token := signToken(t, key, "kid-1", claims)

		got, err := v.Verify(context.Background(), "Bearer "+token)
		require.NoError(t, err)
		assert.Empty(t, got.Groups)
	})

	t.Run("non-array groups claim", func(t *testing.T) {
		token := signToken(t, key, "kid-1", validClaims(jwt.MapClaims{
			"cognito:groups": "admin",
		}))

		got, err := v.Verify(context.Background(), "Bearer "+token)
		require.NoError(t, err)
		assert.Empty(t, got.Groups)
	})
}

func TestVerifyTokenWithoutKid(t *testing.T) {
	key := mustGenerateKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	v := NewVerifier(testIssuer, srv.srv.URL)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims(nil))
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "Bearer "+signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
