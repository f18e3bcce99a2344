package lti

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer     = "https://platform.example"
	testClientID   = "client-123"
	testDeployment = "dep-1"
	testKID        = "platform-key-1"
)

type staticResolver map[string]*rsa.PublicKey

func (s staticResolver) Resolve(_ context.Context, kid string) (*rsa.PublicKey, error) {
	pk, ok := s[kid]
	if !ok {
		return nil, fmt.Errorf("no key with kid %q", kid)
	}
	return pk, nil
}

type fixture struct {
	priv      *rsa.PrivateKey
	validator *Validator
	now       time.Time
	attempt   *LaunchAttempt
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	now := time.Unix(1700000000, 0).UTC()
	return &fixture{
		priv: priv,
		now:  now,
		validator: &Validator{
			PlatformIssuer: testIssuer,
			ClientID:       testClientID,
			DeploymentID:   testDeployment,
			Keys:           staticResolver{testKID: &priv.PublicKey},
			Now:            func() time.Time { return now },
		},
		attempt: &LaunchAttempt{
			State:     "state-abc",
			Nonce:     "nonce-xyz",
			CreatedAt: now.Add(-time.Minute),
		},
	}
}

// baseClaims is a fully valid resource-link id_token payload.
func (f *fixture) baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":             testIssuer,
		"aud":             testClientID,
		"sub":             "user-42",
		"iat":             f.now.Unix(),
		"exp":             f.now.Add(time.Hour).Unix(),
		"nonce":           "nonce-xyz",
		"given_name":      "Ada",
		ClaimDeploymentID: testDeployment,
		ClaimMessageType:  MessageTypeResourceLink,
		ClaimVersion:      Version,
		ClaimRoles:        []any{"http://purl.imsglobal.org/vocab/lis/v2/membership#Learner"},
		ClaimContext:      map[string]any{"id": "course-7", "title": "Intro to Go"},
		ClaimResourceLink: map[string]any{"id": "rl-1", "title": "Essay 1"},
		ClaimCustom:       map[string]any{"allow_multiple": "true"},
	}
}

func (f *fixture) sign(t *testing.T, claims jwt.MapClaims, kid string, key *rsa.PrivateKey) string {
	t.Helper()
	if key == nil {
		key = f.priv
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("want kind %s, got %s (%v)", kind, got, err)
	}
}

func TestValidateSuccess(t *testing.T) {
	f := newFixture(t)
	raw := f.sign(t, f.baseClaims(), testKID, nil)

	claims, err := f.validator.Validate(context.Background(), raw, "state-abc", f.attempt)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "user-42" || claims.Name != "Ada" {
		t.Fatalf("user claims: %+v", claims)
	}
	if claims.DeploymentID != testDeployment || claims.MessageType != MessageTypeResourceLink {
		t.Fatalf("protocol claims: %+v", claims)
	}
	if claims.Context.ID != "course-7" || claims.Context.Title != "Intro to Go" {
		t.Fatalf("context: %+v", claims.Context)
	}
	if claims.ResourceLink.ID != "rl-1" {
		t.Fatalf("resource link: %+v", claims.ResourceLink)
	}
	if claims.Custom["allow_multiple"] != "true" {
		t.Fatalf("custom: %+v", claims.Custom)
	}
	if Classify(claims.Roles) != RoleStudent {
		t.Fatalf("roles: %v", claims.Roles)
	}
}

func TestValidateMissingToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.validator.Validate(context.Background(), "", "state-abc", f.attempt)
	wantKind(t, err, ErrMissingParameter)
}

func TestValidateStateGates(t *testing.T) {
	f := newFixture(t)
	raw := f.sign(t, f.baseClaims(), testKID, nil)

	t.Run("no attempt", func(t *testing.T) {
		_, err := f.validator.Validate(context.Background(), raw, "state-abc", nil)
		wantKind(t, err, ErrStateMismatch)
	})
	t.Run("wrong state", func(t *testing.T) {
		_, err := f.validator.Validate(context.Background(), raw, "state-forged", f.attempt)
		wantKind(t, err, ErrStateMismatch)
	})
	t.Run("expired attempt", func(t *testing.T) {
		stale := &LaunchAttempt{State: "state-abc", Nonce: "nonce-xyz", CreatedAt: f.now.Add(-AttemptWindow - time.Minute)}
		_, err := f.validator.Validate(context.Background(), raw, "state-abc", stale)
		wantKind(t, err, ErrStateMismatch)
	})
}

func TestValidateUnknownKID(t *testing.T) {
	f := newFixture(t)
	raw := f.sign(t, f.baseClaims(), "kid-nobody-knows", nil)
	_, err := f.validator.Validate(context.Background(), raw, "state-abc", f.attempt)
	wantKind(t, err, ErrKeyResolution)
}

func TestValidateForgedSignature(t *testing.T) {
	f := newFixture(t)
	rogue, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	raw := f.sign(t, f.baseClaims(), testKID, rogue)
	_, verr := f.validator.Validate(context.Background(), raw, "state-abc", f.attempt)
	wantKind(t, verr, ErrSignatureValidation)
}

func TestValidateMalformedToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.validator.Validate(context.Background(), "not.a.jwt", "state-abc", f.attempt)
	wantKind(t, err, ErrSignatureValidation)
}

func TestValidateClaimGates(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{"wrong audience", func(c jwt.MapClaims) { c["aud"] = "someone-else" }},
		{"wrong issuer", func(c jwt.MapClaims) { c["iss"] = "https://evil.example" }},
		{"expired token", func(c jwt.MapClaims) { c["exp"] = f.now.Add(-10 * time.Minute).Unix() }},
		{"issued in the future", func(c jwt.MapClaims) { c["iat"] = f.now.Add(10 * time.Minute).Unix() }},
		{"wrong nonce", func(c jwt.MapClaims) { c["nonce"] = "nonce-replayed" }},
		{"missing nonce", func(c jwt.MapClaims) { delete(c, "nonce") }},
		{"wrong deployment", func(c jwt.MapClaims) { c[ClaimDeploymentID] = "dep-999" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := f.baseClaims()
			tc.mutate(claims)
			raw := f.sign(t, claims, testKID, nil)
			_, err := f.validator.Validate(context.Background(), raw, "state-abc", f.attempt)
			wantKind(t, err, ErrClaimValidation)
		})
	}
}

func TestValidateClockSkewTolerated(t *testing.T) {
	f := newFixture(t)
	claims := f.baseClaims()
	// Platform clock runs 30s ahead; inside the leeway.
	claims["iat"] = f.now.Add(30 * time.Second).Unix()
	raw := f.sign(t, claims, testKID, nil)
	if _, err := f.validator.Validate(context.Background(), raw, "state-abc", f.attempt); err != nil {
		t.Fatalf("skew within leeway rejected: %v", err)
	}
}

func TestValidateDeepLinkingSettingsExtracted(t *testing.T) {
	f := newFixture(t)
	claims := f.baseClaims()
	claims[ClaimMessageType] = MessageTypeDeepLinkingRequest
	claims[ClaimDeepLinkSettings] = map[string]any{
		"deep_link_return_url": "https://platform.example/return",
		"data":                 "opaque-123",
		"accept_multiple":      true,
	}
	raw := f.sign(t, claims, testKID, nil)

	got, err := f.validator.Validate(context.Background(), raw, "state-abc", f.attempt)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	dl := got.DeepLinking
	if dl == nil || dl.ReturnURL != "https://platform.example/return" || dl.Data != "opaque-123" || !dl.AcceptMultiple {
		t.Fatalf("deep linking settings: %+v", dl)
	}
}
