package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/coursebridge/coursebridge/internal/config"
	"github.com/coursebridge/coursebridge/internal/session"
)

// Provider performs the outbound legs of the OAuth dance against the Zoho
// accounts server and resolves the caller's org via the portals API.
type Provider struct {
	conf    oauth2.Config
	apiBase string
	http    *http.Client
}

func NewProvider(cfg config.Config) *Provider {
	accounts := strings.TrimSuffix(cfg.AccountsBase, "/")
	return &Provider{
		conf: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:  accounts + "/oauth/v2/auth",
				TokenURL: accounts + "/oauth/v2/token",
			},
		},
		apiBase: strings.TrimSuffix(cfg.APIBase, "/"),
		http:    &http.Client{Timeout: cfg.UpstreamTimeout},
	}
}

// AuthCodeURL builds the provider authorization URL. redirectURI overrides
// the configured local callback for the delegated flow.
func (p *Provider) AuthCodeURL(state, redirectURI string) string {
	conf := p.conf
	if redirectURI != "" {
		conf.RedirectURL = redirectURI
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange swaps an authorization code for tokens. redirectURI must be the
// one the flow originated with; the provider validates it.
func (p *Provider) Exchange(ctx context.Context, code, redirectURI string) (session.TokenSet, error) {
	conf := p.conf
	if redirectURI != "" {
		conf.RedirectURL = redirectURI
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return session.TokenSet{}, fmt.Errorf("auth: code exchange: %w", err)
	}
	return normalizeToken(tok), nil
}

func normalizeToken(tok *oauth2.Token) session.TokenSet {
	ts := session.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if v, ok := tok.Extra("expires_in").(float64); ok && v > 0 {
		ts.ExpiresIn = int64(v)
	} else if !tok.Expiry.IsZero() {
		ts.ExpiresIn = int64(time.Until(tok.Expiry).Seconds())
	}
	if s, ok := tok.Extra("scope").(string); ok {
		ts.Scope = s
	}
	return ts
}

// FetchOrgContext looks up the authenticated user's portal to learn which
// org id and tenant domain later gateway calls should target.
func (p *Provider) FetchOrgContext(ctx context.Context, accessToken string) (session.OrgContext, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/api/v4/portals.json", nil)
	if err != nil {
		return session.OrgContext{}, fmt.Errorf("auth: build portals request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.http.Do(req)
	if err != nil {
		return session.OrgContext{}, fmt.Errorf("auth: portals request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return session.OrgContext{}, fmt.Errorf("auth: read portals response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return session.OrgContext{}, fmt.Errorf("auth: portals lookup returned %d", resp.StatusCode)
	}

	var body struct {
		Portals []map[string]any `json:"portals"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return session.OrgContext{}, fmt.Errorf("auth: decode portals response: %w", err)
	}
	if len(body.Portals) == 0 {
		return session.OrgContext{}, fmt.Errorf("auth: no portals for user")
	}

	portal := body.Portals[0]
	org := session.OrgContext{
		OrgID:  firstString(portal, "orgId", "id", "zsoid"),
		Domain: firstString(portal, "customDomain", "domain", "portalUrl"),
	}
	if org.OrgID == "" || org.Domain == "" {
		return session.OrgContext{}, fmt.Errorf("auth: portal entry missing org id or domain")
	}
	return org, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
