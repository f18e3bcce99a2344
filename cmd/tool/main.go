package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/vivalearn/lti-tool/internal/api/http"
	"github.com/vivalearn/lti-tool/internal/assignment"
	"github.com/vivalearn/lti-tool/internal/config"
	"github.com/vivalearn/lti-tool/internal/db"
	"github.com/vivalearn/lti-tool/internal/logging"
	"github.com/vivalearn/lti-tool/internal/lti"
	"github.com/vivalearn/lti-tool/internal/lti/keyset"
	"github.com/vivalearn/lti-tool/internal/lti/platformkeys"
	"github.com/vivalearn/lti-tool/internal/rbac"
	"github.com/vivalearn/lti-tool/internal/session"
)

func main() {
	cfg := config.FromEnv()
	log := logging.New(cfg.LogLevel)
	started := time.Now()

	// --- Signing key (fatal if unavailable) ---
	keys, err := keyset.Load(cfg.PrivateKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("signing key load failed")
	}
	log.Info().Str("kid", keys.KID()).Msg("tool signing key ready")

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	store := assignment.NewSQLStore(dbh, cfg.DBDriver)

	// --- LTI core ---
	sessions := session.NewStore()
	initiator := &lti.Initiator{
		AuthURL:     cfg.PlatformAuthURL,
		ClientID:    cfg.ClientID,
		RedirectURI: cfg.RedirectURI,
	}
	validator := &lti.Validator{
		PlatformIssuer: cfg.PlatformIssuer,
		ClientID:       cfg.ClientID,
		DeploymentID:   cfg.DeploymentID,
		Keys:           platformkeys.New(cfg.PlatformJWKSURL),
	}
	responder := &lti.Responder{
		ClientID:       cfg.ClientID,
		PlatformIssuer: cfg.PlatformIssuer,
		DeploymentID:   cfg.DeploymentID,
		Keys:           keys,
	}
	launchURL := strings.TrimSuffix(cfg.PublicURL, "/") + "/lti/launch"

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// OIDC round trip and verification endpoint
	r.Route("/lti", func(lr chi.Router) {
		lr.Get("/login", api.LoginHandler(initiator, sessions, log))
		lr.Post("/login", api.LoginHandler(initiator, sessions, log))
		lr.Post("/launch", api.LaunchHandler(validator, sessions, store, log))
	})
	r.Get("/.well-known/jwks.json", keyset.Handler(keys))

	// Launched surfaces (validated claims required)
	r.Group(func(pr chi.Router) {
		pr.Use(api.RequireIdentity(sessions))

		pr.Get("/landing", api.LandingHandler())

		pr.With(rbac.Require("assignment:view")).
			Get("/assignment", api.AssignmentViewHandler(store, log))
		pr.With(rbac.Require("assignment:edit")).
			Post("/assignment/edit", api.AssignmentEditHandler(store, log))
		pr.With(rbac.Require("submission:create")).
			Post("/submissions", api.SubmitTextHandler(store, log))
		pr.With(rbac.Require("submission:grade")).
			Post("/submissions/grade", api.GradeSubmissionHandler(store, log))

		pr.With(rbac.Require("deeplink:create")).
			Get("/deeplink", api.DeepLinkHandler())
		pr.With(rbac.Require("deeplink:create")).
			Post("/deeplink/submit", api.DeepLinkSubmitHandler(responder, launchURL, log))
	})

	r.Get("/admin/status", api.AdminStatusHandler(cfg.AdminUser, cfg.AdminPassHash, started))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info().Str("addr", cfg.HTTPAddr).Str("db", cfg.DBDriver).Msg("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
