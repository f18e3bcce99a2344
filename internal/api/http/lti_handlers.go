package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vivalearn/lti-tool/internal/assignment"
	"github.com/vivalearn/lti-tool/internal/lti"
	"github.com/vivalearn/lti-tool/internal/session"
)

// genericLaunchError is what a rejected launch looks like from the outside.
// The error kind and detail stay in the server log; echoing validation
// internals to the caller would hand an adversary a debugging oracle.
const genericLaunchError = "launch could not be validated"

// LoginHandler accepts the platform's OIDC login initiation (GET or POST),
// mints the session's launch attempt and bounces to the authorization
// endpoint.
func LoginHandler(init *lti.Initiator, sessions *session.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		// r.Form merges query and body parameters, covering both delivery
		// styles the platform may use.
		req := lti.InitiationRequest{
			Issuer:        r.Form.Get("iss"),
			LoginHint:     r.Form.Get("login_hint"),
			MessageHint:   r.Form.Get("lti_message_hint"),
			TargetLinkURI: r.Form.Get("target_link_uri"),
		}

		redirect, attempt, err := init.Begin(req, time.Now().UTC())
		if err != nil {
			log.Warn().Str("kind", string(lti.KindOf(err))).Err(err).Msg("login initiation rejected")
			http.Error(w, "missing login parameters", http.StatusBadRequest)
			return
		}

		sessions.Ensure(w, r).BeginAttempt(attempt)
		http.Redirect(w, r, redirect, http.StatusFound)
	}
}

// LaunchHandler receives the platform's id_token POST, runs the validator
// gates and, on success, stores the claims and routes by message type.
func LaunchHandler(v *lti.Validator, sessions *session.Store, store assignment.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, genericLaunchError, http.StatusBadRequest)
			return
		}
		rawToken := r.PostFormValue("id_token")
		state := r.PostFormValue("state")

		sess, haveSession := sessions.Get(r)

		// The attempt is consumed before signature and claim checks run, so
		// the state is single-use whatever the outcome. A missing token never
		// burns the attempt: presence is gate one.
		var attempt *lti.LaunchAttempt
		if haveSession && rawToken != "" {
			attempt = sess.ConsumeAttempt()
		}

		claims, err := v.Validate(r.Context(), rawToken, state, attempt)
		if err != nil {
			log.Warn().
				Str("kind", string(lti.KindOf(err))).
				Err(err).
				Msg("launch rejected")
			http.Error(w, genericLaunchError, http.StatusBadRequest)
			return
		}

		sess.SetIdentity(claims)
		role := lti.Classify(claims.Roles)
		log.Info().
			Str("sub", claims.Subject).
			Str("role", string(role)).
			Str("message_type", claims.MessageType).
			Str("context", claims.Context.ID).
			Msg("launch established")

		switch claims.MessageType {
		case lti.MessageTypeDeepLinkingRequest:
			http.Redirect(w, r, "/deeplink", http.StatusFound)
		case lti.MessageTypeResourceLink:
			if _, err := store.EnsureAssignment(r.Context(), claims.ResourceLink.ID, claims.ResourceLink.Title); err != nil {
				log.Error().Err(err).Str("resource_link", claims.ResourceLink.ID).Msg("assignment upsert failed")
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/assignment", http.StatusFound)
		default:
			http.Redirect(w, r, "/landing", http.StatusFound)
		}
	}
}
