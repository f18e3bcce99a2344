package api

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AdminStatusHandler is a basic-auth ops endpoint. The password is checked
// against a bcrypt hash from config; no admin surface is exposed without it.
func AdminStatusHandler(user, passHash string, started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || passHash == "" || u != user ||
			bcrypt.CompareHashAndPassword([]byte(passHash), []byte(p)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="lti-tool"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	}
}
