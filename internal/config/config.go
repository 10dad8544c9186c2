package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	// OAuth provider (Zoho accounts) application credentials.
	ClientID     string
	ClientSecret string
	Scope        string
	RedirectURI  string // e.g. PUBLIC_URL + "/auth/callback"

	// AccountsBase hosts /oauth/v2/auth and /oauth/v2/token.
	AccountsBase string
	// APIBase hosts the portals lookup used to resolve org context.
	APIBase string

	// Fallback org context for callers that never ran the OAuth flow.
	DefaultOrgID  string
	DefaultDomain string

	SessionSecret string

	// Origin prefix a caller-supplied redirect_uri must match in the
	// delegated authorization flow.
	DownstreamRedirectOrigin string

	UpstreamTimeout time.Duration
	RateLimitRPM    int

	EnableDebugEndpoints bool

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	pub := strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/")
	defRedirect := ""
	if pub != "" {
		defRedirect = pub + "/auth/callback"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: pub,

		ClientID:     os.Getenv("TC_CLIENT_ID"),
		ClientSecret: os.Getenv("TC_CLIENT_SECRET"),
		Scope: envOr("TC_SCOPE",
			"TrainerCentral.sessionapi.ALL,TrainerCentral.sectionapi.ALL,"+
				"TrainerCentral.courseapi.ALL,TrainerCentral.userapi.ALL,"+
				"TrainerCentral.talkapi.ALL,TrainerCentral.portalapi.READ"),
		RedirectURI: envOr("TC_REDIRECT_URI", defRedirect),

		AccountsBase: envOr("TC_ACCOUNTS_BASE", "https://accounts.zoho.in"),
		APIBase:      envOr("TC_API_BASE", "https://trainercentral.zoho.in"),

		DefaultOrgID:  os.Getenv("ORG_ID"),
		DefaultDomain: os.Getenv("DOMAIN"),

		SessionSecret: envOr("SESSION_HMAC_SECRET", "supersecret-dev-key"),

		DownstreamRedirectOrigin: os.Getenv("DOWNSTREAM_REDIRECT_ORIGIN"),

		UpstreamTimeout: envDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		RateLimitRPM:    envInt("RATE_LIMIT_RPM", 0),

		EnableDebugEndpoints: envBool("ENABLE_DEBUG_ENDPOINTS", false),

		CORSOrigins: csvOr("CORS_ORIGINS", "*"),
	}
}

// Scopes splits the configured scope string on commas for the oauth2 config.
func (c Config) Scopes() []string {
	parts := strings.Split(c.Scope, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
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
