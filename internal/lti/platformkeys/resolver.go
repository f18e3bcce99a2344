// Package platformkeys resolves the platform's public verification keys from
// its published JWKS endpoint.
package platformkeys

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

// fetchTimeout bounds one JWKS request; the fetch is the only network call in
// the launch path.
const fetchTimeout = 5 * time.Second

// Resolver fetches and caches the platform key set, keyed by kid. The cache
// is read-mostly; a refetch happens only when a requested kid is unknown
// (platform key rotation). Cache reads and writes are serialized; the fetch
// itself runs unlocked so cached kids never wait on the network.
type Resolver struct {
	URL    string
	Client *http.Client

	mu    sync.Mutex
	cache map[string]*rsa.PublicKey
}

func New(jwksURL string) *Resolver {
	return &Resolver{
		URL:    jwksURL,
		Client: &http.Client{Timeout: fetchTimeout},
	}
}

// Resolve returns the verification key matching kid, refetching the set when
// the kid is not cached. A failed refetch never falls back to a stale entry;
// the cache is only replaced by a successfully parsed set.
func (r *Resolver) Resolve(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, errors.New("platformkeys: token header has no kid")
	}
	r.mu.Lock()
	pk, ok := r.cache[kid]
	r.mu.Unlock()
	if ok {
		return pk, nil
	}

	// Fetched outside the lock. Two concurrent refetches are wasteful but
	// safe: both hit the same endpoint and whichever set installs last wins.
	set, err := r.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platformkeys: fetch %s: %w", r.URL, err)
		}
		// One retry; the platform JWKS endpoint is occasionally flaky behind
		// load balancers.
		if set, err = r.fetch(ctx); err != nil {
			return nil, fmt.Errorf("platformkeys: fetch %s: %w", r.URL, err)
		}
	}

	r.mu.Lock()
	r.cache = set
	pk, ok = r.cache[kid]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("platformkeys: no key with kid %q in platform key set", kid)
	}
	return pk, nil
}

func (r *Resolver) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, err
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var set struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("malformed key set: %w", err)
	}

	out := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" || k.N == "" || k.E == "" {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		e := 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
		if e == 0 {
			continue
		}
		out[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}
	}
	if len(out) == 0 {
		return nil, errors.New("no usable RSA keys in platform key set")
	}
	return out, nil
}
