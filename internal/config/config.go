package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string
	LogLevel  string

	DBDriver string
	DBDSN    string

	// LTI 1.3 / OIDC (Tool-side). One platform/deployment pair per instance.
	PlatformIssuer  string
	PlatformAuthURL string
	PlatformJWKSURL string
	ClientID        string
	DeploymentID    string
	RedirectURI     string // defaults to PUBLIC_URL + /lti/launch

	// Tool signing key. Empty path means generate an ephemeral key at startup.
	PrivateKeyPath string

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	pub := os.Getenv("PUBLIC_URL")
	defRedirect := ""
	if pub != "" {
		defRedirect = strings.TrimSuffix(pub, "/") + "/lti/launch"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: pub,
		LogLevel:  envOr("LOG_LEVEL", "info"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		PlatformIssuer:  os.Getenv("LTI_PLATFORM_ISSUER"),
		PlatformAuthURL: os.Getenv("LTI_PLATFORM_AUTH_URL"),
		PlatformJWKSURL: os.Getenv("LTI_PLATFORM_JWKS_URL"),
		ClientID:        os.Getenv("LTI_CLIENT_ID"),
		DeploymentID:    os.Getenv("LTI_DEPLOYMENT_ID"),
		RedirectURI:     envOr("LTI_REDIRECT_URI", defRedirect),

		PrivateKeyPath: os.Getenv("LTI_PRIVATE_KEY_PATH"),

		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),

		CORSOrigins: csvOr("CORS_ORIGINS", ""),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
