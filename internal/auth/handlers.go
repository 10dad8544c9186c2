package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/coursebridge/coursebridge/internal/config"
	"github.com/coursebridge/coursebridge/internal/session"
)

// One-time codes minted for downstream clients live this long.
const authCodeTTL = 60 * time.Second

// CodeExchanger is the outbound half of the flow; *Provider in production,
// a fake in tests.
type CodeExchanger interface {
	AuthCodeURL(state, redirectURI string) string
	Exchange(ctx context.Context, code, redirectURI string) (session.TokenSet, error)
	FetchOrgContext(ctx context.Context, accessToken string) (session.OrgContext, error)
}

// Handler serves the /auth endpoints.
type Handler struct {
	cfg      config.Config
	provider CodeExchanger
	store    *session.Store
	cookies  *CookieService
	log      *zap.Logger
}

func NewHandler(cfg config.Config, provider CodeExchanger, store *session.Store, cookies *CookieService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{cfg: cfg, provider: provider, store: store, cookies: cookies, log: log}
}

// Login starts the authorization dance. Without a redirect_uri the provider
// sends the user back to our own callback (browser flow). With one, the URI
// must sit on the configured downstream origin; the provider still returns
// to our callback, which then relays a one-time local code downstream.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	redirect := r.URL.Query().Get("redirect_uri")
	if redirect != "" {
		if h.cfg.DownstreamRedirectOrigin == "" || !strings.HasPrefix(redirect, h.cfg.DownstreamRedirectOrigin) {
			writeAuthError(w, http.StatusBadRequest, "invalid_redirect_uri", "redirect_uri is not an allowed downstream callback")
			return
		}
		setFlowCookie(w, downstreamCookie, url.QueryEscape(redirect))
	} else {
		expireCookie(w, downstreamCookie)
	}

	state := uuid.NewString()
	setFlowCookie(w, stateCookie, state)

	http.Redirect(w, r, h.provider.AuthCodeURL(state, ""), http.StatusFound)
}

// Callback receives the provider's code, exchanges it, and either
// establishes a local session or relays a minted one-time code downstream.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		writeAuthError(w, http.StatusBadGateway, "provider_error", errParam)
		return
	}
	code := q.Get("code")
	if code == "" {
		writeAuthError(w, http.StatusBadRequest, "invalid_request", "missing code")
		return
	}
	if state := q.Get("state"); state != "" {
		if ck, err := r.Cookie(stateCookie); err == nil && ck.Value != "" && ck.Value != state {
			writeAuthError(w, http.StatusBadRequest, "invalid_request", "state mismatch")
			return
		}
	}
	expireCookie(w, stateCookie)

	tokens, err := h.provider.Exchange(r.Context(), code, "")
	if err != nil {
		h.log.Warn("code exchange failed", zap.Error(err))
		writeAuthError(w, http.StatusBadGateway, "provider_error", "code exchange failed")
		return
	}

	// Delegated flow: hand the downstream caller a short-lived local code
	// instead of establishing a session here.
	if ck, err := r.Cookie(downstreamCookie); err == nil && ck.Value != "" {
		expireCookie(w, downstreamCookie)
		target, err := url.QueryUnescape(ck.Value)
		if err == nil && target != "" && strings.HasPrefix(target, h.cfg.DownstreamRedirectOrigin) {
			local := h.store.MintAuthCode(tokens, authCodeTTL)
			u, parseErr := url.Parse(target)
			if parseErr == nil {
				dq := u.Query()
				dq.Set("code", local)
				if state := q.Get("state"); state != "" {
					dq.Set("state", state)
				}
				u.RawQuery = dq.Encode()
				http.Redirect(w, r, u.String(), http.StatusFound)
				return
			}
		}
		writeAuthError(w, http.StatusBadRequest, "invalid_redirect_uri", "stored downstream redirect is not usable")
		return
	}

	org, err := h.provider.FetchOrgContext(r.Context(), tokens.AccessToken)
	if err != nil {
		h.log.Warn("org lookup failed, falling back to configured org", zap.Error(err))
		org = session.OrgContext{OrgID: h.cfg.DefaultOrgID, Domain: h.cfg.DefaultDomain}
	}

	sid := h.store.NewSessionID()
	h.store.Put(sid, tokens, org)

	signed, err := h.cookies.Issue(sid, org)
	if err != nil {
		h.log.Error("issue session cookie", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, signed)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"session_id": sid,
		"org_id":     org.OrgID,
	})
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Token lets a downstream client exchange a code for tokens. Local one-time
// codes are consumed first; anything else is proxied to the provider using
// the redirect_uri the caller originated with.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTokenRequest(r)
	if !ok {
		writeAuthError(w, http.StatusBadRequest, "invalid_request", "unreadable request body")
		return
	}
	if req.GrantType != "authorization_code" {
		writeAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "only authorization_code is supported")
		return
	}
	if req.Code == "" {
		writeAuthError(w, http.StatusBadRequest, "invalid_request", "missing code")
		return
	}
	if req.ClientID != "" && req.ClientID != h.cfg.ClientID {
		writeAuthError(w, http.StatusUnauthorized, "invalid_client", "client_id mismatch")
		return
	}
	if req.ClientSecret != "" && req.ClientSecret != h.cfg.ClientSecret {
		writeAuthError(w, http.StatusUnauthorized, "invalid_client", "client_secret mismatch")
		return
	}

	if tokens, ok := h.store.ConsumeAuthCode(req.Code); ok {
		writeTokens(w, tokens)
		return
	}

	tokens, err := h.provider.Exchange(r.Context(), req.Code, req.RedirectURI)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			writeAuthError(w, http.StatusBadRequest, "invalid_grant", "code is invalid or expired")
			return
		}
		h.log.Warn("token proxy exchange failed", zap.Error(err))
		writeAuthError(w, http.StatusBadGateway, "provider_error", "code exchange failed")
		return
	}
	writeTokens(w, tokens)
}

// SessionTokens dumps the raw token set for the caller's session. Debug
// only; mounted behind ENABLE_DEBUG_ENDPOINTS.
func (h *Handler) SessionTokens(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.cookies.ClaimsFromRequest(r)
	if !ok {
		writeAuthError(w, http.StatusUnauthorized, "unauthenticated", "no session cookie")
		return
	}
	tokens, _, ok := h.store.Get(claims.SID)
	if !ok {
		writeAuthError(w, http.StatusNotFound, "not_found", "no tokens for session")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokens)
}

// Logout drops the session entry and expires the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := h.cookies.ClaimsFromRequest(r); ok {
		h.store.Clear(claims.SID)
	}
	expireCookie(w, SessionCookie)
	w.WriteHeader(http.StatusNoContent)
}

func decodeTokenRequest(r *http.Request) (tokenRequest, bool) {
	var req tokenRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false
		}
		return req, true
	}
	if err := r.ParseForm(); err != nil {
		return req, false
	}
	req.GrantType = r.PostFormValue("grant_type")
	req.Code = r.PostFormValue("code")
	req.RedirectURI = r.PostFormValue("redirect_uri")
	req.ClientID = r.PostFormValue("client_id")
	req.ClientSecret = r.PostFormValue("client_secret")
	return req, true
}

func writeTokens(w http.ResponseWriter, tokens session.TokenSet) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(tokens)
}

func writeAuthError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  code,
		"detail": detail,
	})
}
