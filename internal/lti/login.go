package lti

import (
	"net/url"
	"time"
)

// InitiationRequest is the platform's third-party login initiation, delivered
// via query parameters or a form body.
type InitiationRequest struct {
	Issuer        string // iss (required)
	LoginHint     string // login_hint (required)
	MessageHint   string // lti_message_hint (optional, echoed back)
	TargetLinkURI string // target_link_uri (optional)
}

// Initiator builds the redirect that starts the OIDC third-party login.
// No network call; the only side effect is the attempt the caller persists.
type Initiator struct {
	AuthURL     string // platform authorization endpoint
	ClientID    string
	RedirectURI string // the tool's fixed launch endpoint
}

// Begin validates the initiation, mints a fresh state/nonce pair and returns
// the authorization redirect URL plus the attempt to store in the session.
func (i *Initiator) Begin(req InitiationRequest, now time.Time) (string, *LaunchAttempt, error) {
	if req.Issuer == "" || req.LoginHint == "" {
		return "", nil, reject(ErrMissingParameter, "missing iss or login_hint")
	}

	attempt := &LaunchAttempt{
		State:         randToken(),
		Nonce:         randToken(),
		TargetLinkURI: req.TargetLinkURI,
		CreatedAt:     now,
	}

	q := url.Values{}
	q.Set("response_type", "id_token")
	q.Set("response_mode", "form_post")
	q.Set("scope", "openid")
	q.Set("prompt", "none")
	q.Set("client_id", i.ClientID)
	q.Set("redirect_uri", i.RedirectURI)
	q.Set("login_hint", req.LoginHint)
	if req.MessageHint != "" {
		q.Set("lti_message_hint", req.MessageHint)
	}
	q.Set("nonce", attempt.Nonce)
	q.Set("state", attempt.State)

	return i.AuthURL + "?" + q.Encode(), attempt, nil
}
