package lti

import (
	"context"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// clockSkew is the tolerance applied to exp/iat checks.
const clockSkew = 60 * time.Second

// KeyResolver selects the platform verification key named by a token header.
type KeyResolver interface {
	Resolve(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// Validator verifies an incoming identity token end-to-end. Each check is a
// hard gate; any failure rejects the whole launch and establishes nothing.
type Validator struct {
	PlatformIssuer string
	ClientID       string
	DeploymentID   string
	Keys           KeyResolver

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Validate runs the gates in order against the POSTed token and state value.
// The caller has already consumed the session's launch attempt (so the state
// is single-use regardless of outcome) and passes it in explicitly; attempt
// is nil when no live attempt existed.
//
// Gates: token presence, state match + freshness, signature via resolved
// platform key, standard claims (aud/iss/exp/iat), nonce, deployment id.
// Only when every gate passes are claims extracted and returned.
func (v *Validator) Validate(ctx context.Context, rawToken, state string, attempt *LaunchAttempt) (*IdentityClaims, error) {
	now := v.now()

	if rawToken == "" {
		return nil, reject(ErrMissingParameter, "missing id_token")
	}

	if attempt == nil || state == "" || attempt.State != state {
		return nil, reject(ErrStateMismatch, "state does not match the session's launch attempt")
	}
	if attempt.Expired(now) {
		return nil, reject(ErrStateMismatch, "launch attempt expired")
	}

	keyfunc := func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return v.Keys.Resolve(ctx, kid)
	}

	mc := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(rawToken, mc, keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.ClientID),
		jwt.WithIssuer(v.PlatformIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, &ValidationError{Kind: classifyJWTError(err), Err: err}
	}

	if nonce, _ := mc["nonce"].(string); nonce == "" || nonce != attempt.Nonce {
		return nil, reject(ErrClaimValidation, "nonce does not match the launch attempt")
	}

	if dep := asString(mc[ClaimDeploymentID]); dep != v.DeploymentID {
		return nil, reject(ErrClaimValidation, "deployment_id %q does not match configured deployment", dep)
	}

	return extractClaims(mc), nil
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now().UTC()
}

// classifyJWTError maps golang-jwt parse failures onto the launch taxonomy:
// keyfunc failures are key-resolution problems, malformed tokens and bad
// signatures are forgery, everything else is a claim mismatch.
func classifyJWTError(err error) ErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrKeyResolution
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureValidation
	default:
		return ErrClaimValidation
	}
}

// extractClaims builds the immutable IdentityClaims view. Called only after
// every gate has passed; partial extraction is never visible downstream.
func extractClaims(mc jwt.MapClaims) *IdentityClaims {
	c := &IdentityClaims{
		Issuer:       asString(mc["iss"]),
		Audience:     asString(mc["aud"]),
		Subject:      asString(mc["sub"]),
		Nonce:        asString(mc["nonce"]),
		DeploymentID: asString(mc[ClaimDeploymentID]),
		MessageType:  asString(mc[ClaimMessageType]),
		Roles:        asStringSlice(mc[ClaimRoles]),
		Custom:       asStringMap(mc[ClaimCustom]),
	}

	// Display name: prefer the given name, as the platform's "name" field is
	// often "Last, First".
	for _, k := range []string{"given_name", "family_name", "name"} {
		if s := asString(mc[k]); s != "" {
			c.Name = s
			break
		}
	}

	if obj, ok := mc[ClaimContext].(map[string]any); ok {
		c.Context = CourseContext{ID: asString(obj["id"]), Title: asString(obj["title"])}
	}
	if obj, ok := mc[ClaimResourceLink].(map[string]any); ok {
		c.ResourceLink = ResourceLink{ID: asString(obj["id"]), Title: asString(obj["title"])}
	}
	if obj, ok := mc[ClaimDeepLinkSettings].(map[string]any); ok {
		accept := false
		switch v := obj["accept_multiple"].(type) {
		case bool:
			accept = v
		case string:
			accept = v == "true"
		}
		c.DeepLinking = &DeepLinkSettings{
			ReturnURL:      asString(obj["deep_link_return_url"]),
			Data:           asString(obj["data"]),
			AcceptMultiple: accept,
		}
	}
	return c
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			return asString(t[0])
		}
	}
	return ""
}

func asStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asStringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s := asString(val); s != "" {
			out[k] = s
		}
	}
	return out
}
