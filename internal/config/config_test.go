package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssuerAndJWKSEndpoint(t *testing.T) {
	cfg := &Config{AWSRegion: "eu-west-1", UserPoolID: "eu-west-1_Abc123"}
	assert.Equal(t, "https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_Abc123", cfg.Issuer())
	assert.Equal(t,
		"https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_Abc123/.well-known/jwks.json",
		cfg.JWKSEndpoint())
}

func TestJWKSEndpointOverride(t *testing.T) {
	cfg := &Config{JWKSURI: "https://keys.internal/jwks.json"}
	assert.Equal(t, "https://keys.internal/jwks.json", cfg.JWKSEndpoint())
}

func TestUnconfiguredPoolYieldsNoEndpoint(t *testing.T) {
	cfg := &Config{AWSRegion: "us-east-1"}
	assert.Empty(t, cfg.Issuer())
	assert.Empty(t, cfg.JWKSEndpoint())
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"example.com", "other.io"}, splitCSV("example.com, other.io"))
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV(" , ,"))
}
