package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// ErrKeyNotFound is returned when a token's key ID is absent from the
// signing-key set even after a forced refresh.
var ErrKeyNotFound = errors.New("signing key not found in key set")

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeyCache fetches a remote JWKS document and caches its RSA public keys by
// key ID. The key map is populated lazily on first use and replaced wholesale
// on refresh, so concurrent readers never observe a partially updated set.
// A key-ID miss triggers exactly one forced re-fetch before failing.
type KeyCache struct {
	uri    string
	client *http.Client

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewKeyCache creates a cache backed by the given JWKS discovery URI.
func NewKeyCache(uri string) *KeyCache {
	return &KeyCache{
		uri:    uri,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get returns the RSA public key for kid, fetching or refreshing the key set
// as needed.
func (c *KeyCache) Get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	loaded := c.keys != nil
	key := c.keys[kid]
	c.mu.RUnlock()

	if key != nil {
		return key, nil
	}

	// Not cached: either the set was never fetched or the pool rotated its
	// keys. One refresh, then give up.
	if err := c.refresh(ctx); err != nil {
		if loaded {
			return nil, fmt.Errorf("refresh key set: %w", err)
		}
		return nil, fmt.Errorf("fetch key set: %w", err)
	}

	c.mu.RLock()
	key = c.keys[kid]
	c.mu.RUnlock()

	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// refresh fetches the JWKS document and atomically replaces the cached key map.
func (c *KeyCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, nil)
	if err != nil {
		return fmt.Errorf("build jwks request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", c.uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", c.uri, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks document: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			return fmt.Errorf("parse key %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()

	return nil
}

// parseRSAKey builds an rsa.PublicKey from the base64url-encoded modulus and
// exponent of a JWK entry.
func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, errors.New("zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: e,
	}, nil
}
