// Package auth validates bearer tokens against a remote signing-key set.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingToken is returned when the Authorization header is absent or not
// a Bearer credential.
var ErrMissingToken = errors.New("missing bearer token")

// ErrNotConfigured is returned when no signing-key discovery URI is
// configured. Verification fails closed rather than allowing all callers.
var ErrNotConfigured = errors.New("token verification not configured")

// ErrInvalidToken is returned when signature, issuer, or expiry checks fail.
var ErrInvalidToken = errors.New("invalid token")

// groupsClaim is the token claim carrying Cognito group memberships.
const groupsClaim = "cognito:groups"

// Claims is the identity extracted from a verified token.
type Claims struct {
	Subject string
	Email   string
	Groups  []string
	Raw     jwt.MapClaims
}

// Verifier validates Bearer tokens: signature against the cached remote key
// set, issuer match, and expiry. Claims are only returned after all checks
// succeed.
type Verifier struct {
	issuer string
	keys   *KeyCache
}

// NewVerifier creates a Verifier for the given issuer and JWKS discovery URI.
// An empty jwksURI yields a verifier that rejects every token with
// ErrNotConfigured.
func NewVerifier(issuer, jwksURI string) *Verifier {
	v := &Verifier{issuer: issuer}
	if jwksURI != "" {
		v.keys = NewKeyCache(jwksURI)
	}
	return v
}

// Verify extracts the token from an Authorization header value, verifies it,
// and returns the identity claims.
func (v *Verifier) Verify(ctx context.Context, authHeader string) (*Claims, error) {
	raw, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || raw == "" {
		return nil, ErrMissingToken
	}

	if v.keys == nil {
		return nil, ErrNotConfigured
	}

	token, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no kid header")
			}
			return v.keys.Get(ctx, kid)
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	sub, _ := mapClaims["sub"].(string)
	email, _ := mapClaims["email"].(string)

	return &Claims{
		Subject: sub,
		Email:   email,
		Groups:  extractGroups(mapClaims),
		Raw:     mapClaims,
	}, nil
}

// extractGroups reads the groups claim. An absent or non-array claim is an
// empty set, not an error.
func extractGroups(claims jwt.MapClaims) []string {
	arr, ok := claims[groupsClaim].([]interface{})
	if !ok {
		return []string{}
	}
	groups := make([]string, 0, len(arr))
	for _, g := range arr {
		if s, ok := g.(string); ok {
			groups = append(groups, s)
		}
	}
	return groups
}
