package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coursebridge/coursebridge/internal/config"
)

// Discovery documents are static per process; clients may cache them.
const discoveryCacheMaxAge = "public, max-age=3600"

// ProtectedResourceHandler serves /.well-known/oauth-protected-resource.
func ProtectedResourceHandler(cfg config.Config) http.HandlerFunc {
	accounts := strings.TrimSuffix(cfg.AccountsBase, "/")
	doc := map[string]any{
		"resource":               cfg.PublicURL,
		"authorization_servers":  []string{accounts + "/oauth/v2/auth"},
		"scopes_supported":       cfg.Scopes(),
		"resource_documentation": cfg.PublicURL + "/docs",
	}
	return serveDiscovery(doc)
}

// AuthorizationServerHandler serves both
// /.well-known/oauth-authorization-server and
// /.well-known/openid-configuration; the documents are identical here.
func AuthorizationServerHandler(cfg config.Config) http.HandlerFunc {
	accounts := strings.TrimSuffix(cfg.AccountsBase, "/")
	doc := map[string]any{
		"issuer":                           cfg.PublicURL,
		"authorization_endpoint":           accounts + "/oauth/v2/auth",
		"token_endpoint":                   accounts + "/oauth/v2/token",
		"registration_endpoint":            accounts + "/oauth/v2/register",
		"code_challenge_methods_supported": []string{"S256"},
		"scopes_supported":                 cfg.Scopes(),
	}
	return serveDiscovery(doc)
}

func serveDiscovery(doc map[string]any) http.HandlerFunc {
	raw, _ := json.Marshal(doc)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", discoveryCacheMaxAge)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		_, _ = w.Write(raw)
	}
}
