package lti

import (
	"crypto/rand"
	"encoding/base64"
)

// randToken returns 256 bits of entropy, URL-safe encoded. Used for the
// state/nonce pair and for response-token nonces.
func randToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
