package api

import (
	"context"
	"net/http"

	"github.com/vivalearn/lti-tool/internal/lti"
	"github.com/vivalearn/lti-tool/internal/rbac"
	"github.com/vivalearn/lti-tool/internal/session"
)

type ctxKey struct{}

var ctxKeyIdentity = ctxKey{}

func withIdentity(ctx context.Context, c *lti.IdentityClaims) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, c)
}

// IdentityFromContext returns the verified launch claims attached by
// RequireIdentity.
func IdentityFromContext(ctx context.Context) (*lti.IdentityClaims, bool) {
	c, ok := ctx.Value(ctxKeyIdentity).(*lti.IdentityClaims)
	return c, ok
}

// RequireIdentity gates a route on an established launch. It attaches the
// claims and the recomputed role category to the request context; routes
// behind it never see a session without fully-validated claims.
func RequireIdentity(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := sessions.Get(r)
			if !ok {
				http.Error(w, "no launch session", http.StatusUnauthorized)
				return
			}
			claims, ok := sess.Identity()
			if !ok {
				http.Error(w, "no launch session", http.StatusUnauthorized)
				return
			}
			ctx := withIdentity(r.Context(), claims)
			ctx = rbac.WithRole(ctx, string(lti.Classify(claims.Roles)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
