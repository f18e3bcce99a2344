// Package keyset owns the tool's asymmetric signing keypair and publishes its
// public half as a JWKS (RFC 7517) for the platform to verify deep-linking
// response tokens against.
package keyset

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
)

const Alg = "RS256"

// KeySet holds the process-wide signing keypair. Created once at startup;
// never rotated within a run. Failure to load or generate is fatal.
type KeySet struct {
	priv *rsa.PrivateKey
	kid  string
}

// Load reads an RSA private key from a PEM file (PKCS#1 or PKCS#8). When path
// is empty a fresh 2048-bit key is generated instead.
func Load(path string) (*KeySet, error) {
	if path == "" {
		return Generate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyset: read %s: %w", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("keyset: %s is not PEM", path)
	}
	var priv *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		priv, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	default:
		var key any
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		if err == nil {
			var ok bool
			if priv, ok = key.(*rsa.PrivateKey); !ok {
				err = errors.New("not an RSA key")
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("keyset: parse %s: %w", path, err)
	}
	return FromPrivateKey(priv), nil
}

// Generate creates an ephemeral RSA-2048 keypair. Useful for dev and tests;
// production deployments should load a persisted key so the kid stays stable
// across restarts.
func Generate() (*KeySet, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("keyset: rsa generate: %w", err)
	}
	return FromPrivateKey(priv), nil
}

func FromPrivateKey(priv *rsa.PrivateKey) *KeySet {
	return &KeySet{priv: priv, kid: thumbprint(&priv.PublicKey)}
}

// KID is the stable key identifier: the RFC 7638 JWK thumbprint of the public
// key. The same key material always yields the same identifier.
func (k *KeySet) KID() string { return k.kid }

func (k *KeySet) Private() *rsa.PrivateKey { return k.priv }

// JWK is a single public verification key in canonical form.
type JWK struct {
	Kty string `json:"kty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

// PublicJWKS returns the verification key set. Only public parameters.
func (k *KeySet) PublicJWKS() JWKS {
	pub := &k.priv.PublicKey
	return JWKS{Keys: []JWK{{
		Kty: "RSA",
		N:   bigIntToB64(pub.N),
		E:   intToB64(pub.E),
		Use: "sig",
		Kid: k.kid,
		Alg: Alg,
	}}}
}

// Handler serves the key set for the tool's verification endpoint.
func Handler(k *KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/jwk-set+json")
		_ = json.NewEncoder(w).Encode(k.PublicJWKS())
	}
}

// thumbprint computes the RFC 7638 SHA-256 thumbprint over the canonical
// required-members JWK {"e","kty","n"}.
func thumbprint(pub *rsa.PublicKey) string {
	canonical, _ := json.Marshal(struct {
		E   string `json:"e"`
		Kty string `json:"kty"`
		N   string `json:"n"`
	}{
		E:   intToB64(pub.E),
		Kty: "RSA",
		N:   bigIntToB64(pub.N),
	})
	sum := sha256.Sum256(canonical)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func bigIntToB64(n *big.Int) string {
	if n == nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(n.FillBytes(make([]byte, (n.BitLen()+7)/8)))
}

func intToB64(e int) string {
	b := big.NewInt(int64(e)).Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
