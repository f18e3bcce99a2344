package lti

import (
	"time"
)

// Claim namespace URIs (LTI 1.3). These interoperate with the platform and
// must be preserved byte-for-byte.
const (
	ClaimMessageType   = "https://purl.imsglobal.org/spec/lti/claim/message_type"
	ClaimVersion       = "https://purl.imsglobal.org/spec/lti/claim/version"
	ClaimDeploymentID  = "https://purl.imsglobal.org/spec/lti/claim/deployment_id"
	ClaimTargetLinkURI = "https://purl.imsglobal.org/spec/lti/claim/target_link_uri"
	ClaimContext       = "https://purl.imsglobal.org/spec/lti/claim/context"
	ClaimResourceLink  = "https://purl.imsglobal.org/spec/lti/claim/resource_link"
	ClaimRoles         = "https://purl.imsglobal.org/spec/lti/claim/roles"
	ClaimCustom        = "https://purl.imsglobal.org/spec/lti/claim/custom"

	ClaimDeepLinkSettings = "https://purl.imsglobal.org/spec/lti-dl/claim/deep_linking_settings"
	ClaimContentItems     = "https://purl.imsglobal.org/spec/lti-dl/claim/content_items"
	ClaimDeepLinkData     = "https://purl.imsglobal.org/spec/lti-dl/claim/data"
	ClaimDeepLinkMsg      = "https://purl.imsglobal.org/spec/lti-dl/claim/msg"
)

const (
	MessageTypeResourceLink        = "LtiResourceLinkRequest"
	MessageTypeDeepLinkingRequest  = "LtiDeepLinkingRequest"
	MessageTypeDeepLinkingResponse = "LtiDeepLinkingResponse"

	Version = "1.3.0"
)

// AttemptWindow is how long a login attempt stays valid before the launch
// callback must arrive.
const AttemptWindow = 10 * time.Minute

// LaunchAttempt is the single-use state/nonce pair minted at login initiation.
// One live attempt per browser session; consumed exactly once at launch.
type LaunchAttempt struct {
	State         string
	Nonce         string
	TargetLinkURI string
	CreatedAt     time.Time
}

func (a *LaunchAttempt) Expired(now time.Time) bool {
	return now.Sub(a.CreatedAt) > AttemptWindow
}

// CourseContext is the platform course the launch happened in.
type CourseContext struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ResourceLink identifies the placement within the course.
type ResourceLink struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DeepLinkSettings carries the platform's deep-linking return address and the
// opaque data value that must be echoed back in the response token.
type DeepLinkSettings struct {
	ReturnURL      string `json:"deep_link_return_url"`
	Data           string `json:"data,omitempty"`
	AcceptMultiple bool   `json:"accept_multiple,omitempty"`
}

// IdentityClaims is the verified, immutable view of a platform id_token.
// Produced once per successful validation; downstream handlers only ever see
// a fully-populated value.
type IdentityClaims struct {
	Issuer       string
	Audience     string
	Subject      string
	Name         string
	Nonce        string
	DeploymentID string
	MessageType  string
	Roles        []string
	Context      CourseContext
	ResourceLink ResourceLink
	DeepLinking  *DeepLinkSettings
	Custom       map[string]string
}
