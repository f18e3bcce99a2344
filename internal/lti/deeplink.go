package lti

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vivalearn/lti-tool/internal/lti/keyset"
)

// ResponseTTL is the fixed lifetime of a deep-linking response token.
const ResponseTTL = 5 * time.Minute

// ContentItem is the single ltiResourceLink selection embedded in a
// deep-linking response. Field names follow the lti-dl wire format.
type ContentItem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	URL    string            `json:"url"`
	Text   string            `json:"text,omitempty"` // description
	Custom map[string]string `json:"custom,omitempty"`
}

// ResponseRequest are the inputs to one deep-linking response: where to post
// it, what content item to return, and the opaque data value the platform
// asked to have echoed.
type ResponseRequest struct {
	ReturnURL   string
	Title       string
	LaunchURL   string
	Description string
	Custom      map[string]string
	Data        string
}

// Responder builds and signs the tool's content-selection response token.
// Stateless: a pure transform from request plus current time to a signed JWT.
type Responder struct {
	ClientID       string // becomes the token issuer
	PlatformIssuer string // becomes the audience
	DeploymentID   string
	Keys           *keyset.KeySet

	Now func() time.Time
}

// Sign returns the signed response token. The header kid matches the entry
// the tool publishes at its verification endpoint.
func (r *Responder) Sign(req ResponseRequest) (string, error) {
	if req.ReturnURL == "" {
		return "", reject(ErrMissingParameter, "missing deep-linking return_url")
	}
	if req.Title == "" || req.LaunchURL == "" {
		return "", reject(ErrMissingParameter, "missing content item title or url")
	}

	now := r.now()
	item := ContentItem{
		Type:   "ltiResourceLink",
		Title:  req.Title,
		URL:    req.LaunchURL,
		Text:   req.Description,
		Custom: req.Custom,
	}

	claims := jwt.MapClaims{
		"iss":              r.ClientID,
		"aud":              r.PlatformIssuer,
		"iat":              now.Unix(),
		"exp":              now.Add(ResponseTTL).Unix(),
		"nonce":            randToken(),
		"jti":              uuid.NewString(),
		ClaimMessageType:   MessageTypeDeepLinkingResponse,
		ClaimVersion:       Version,
		ClaimDeploymentID:  r.DeploymentID,
		ClaimTargetLinkURI: req.ReturnURL,
		ClaimContentItems:  []ContentItem{item},
	}
	if req.Data != "" {
		claims[ClaimDeepLinkData] = req.Data
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = r.Keys.KID()
	return tok.SignedString(r.Keys.Private())
}

func (r *Responder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}
