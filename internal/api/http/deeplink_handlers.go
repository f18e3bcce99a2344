package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vivalearn/lti-tool/internal/lti"
)

// DeepLinkHandler renders the content picker for a deep-linking launch.
// Gated on deeplink:create, so only instructors and admins reach it.
func DeepLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := IdentityFromContext(r.Context())
		if !ok || claims.DeepLinking == nil || claims.DeepLinking.ReturnURL == "" {
			http.Error(w, "not a deep-linking launch", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = deeplinkTmpl.Execute(w, struct {
			ReturnURL string
			Data      string
		}{claims.DeepLinking.ReturnURL, claims.DeepLinking.Data})
	}
}

// DeepLinkSubmitHandler signs the content-selection response and returns the
// page that auto-posts it to the platform's return URL.
func DeepLinkSubmitHandler(resp *lti.Responder, launchURL string, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		returnURL := r.PostFormValue("return_url")
		data := r.PostFormValue("data")
		if returnURL == "" {
			// Fall back to the settings captured at validation time.
			if claims, ok := IdentityFromContext(r.Context()); ok && claims.DeepLinking != nil {
				returnURL = claims.DeepLinking.ReturnURL
				if data == "" {
					data = claims.DeepLinking.Data
				}
			}
		}

		allowMultiple := r.PostFormValue("allow_multiple") == "true"
		custom := map[string]string{"allow_multiple": "false"}
		if allowMultiple {
			custom["allow_multiple"] = "true"
		}

		token, err := resp.Sign(lti.ResponseRequest{
			ReturnURL:   returnURL,
			Title:       r.PostFormValue("title"),
			LaunchURL:   launchURL,
			Description: r.PostFormValue("description"),
			Custom:      custom,
			Data:        data,
		})
		if err != nil {
			log.Warn().Str("kind", string(lti.KindOf(err))).Err(err).Msg("deep-linking response rejected")
			http.Error(w, "invalid content selection", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = autoSubmitTmpl.Execute(w, struct {
			ReturnURL string
			JWT       string
		}{returnURL, token})
	}
}
