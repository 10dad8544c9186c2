// Package http is the front door: it decodes inbound requests, resolves the
// caller's access (query params, then session cookie, then env fallback),
// delegates to the upstream gateway, and passes results back unmodified.
package http

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/coursebridge/coursebridge/internal/auth"
	"github.com/coursebridge/coursebridge/internal/config"
	"github.com/coursebridge/coursebridge/internal/dates"
	"github.com/coursebridge/coursebridge/internal/session"
	"github.com/coursebridge/coursebridge/internal/trainercentral"
)

// Handlers only; routes remain in main.go.

var (
	errUnauthenticated  = errors.New("no access token supplied or stored for this session")
	errOrgNotConfigured = errors.New("org context not configured for this caller")
)

// Deps is what every handler closure needs.
type Deps struct {
	Gateway  *trainercentral.Client
	Sessions *session.Store
	Cookies  *auth.CookieService
	Cfg      config.Config
	Log      *zap.Logger
}

// access resolves the tenant and bearer token for a request. Explicit query
// parameters win, then the session cookie's stored entry, then configured
// defaults. The org context is always per-caller, never process state.
func (d Deps) access(r *nethttp.Request) (trainercentral.Access, error) {
	q := r.URL.Query()
	acc := trainercentral.Access{
		OrgID: strings.TrimSpace(q.Get("orgId")),
		Token: strings.TrimSpace(q.Get("access_token")),
	}

	var org session.OrgContext
	if claims, ok := d.Cookies.ClaimsFromRequest(r); ok {
		if tokens, sessOrg, found := d.Sessions.Get(claims.SID); found {
			if acc.Token == "" {
				acc.Token = tokens.AccessToken
			}
			org = sessOrg
		} else {
			// Store lost the entry (restart); the signed cookie still
			// carries the org context.
			org = session.OrgContext{OrgID: claims.OrgID, Domain: claims.Domain}
		}
	}

	if acc.Token == "" {
		return trainercentral.Access{}, errUnauthenticated
	}
	if acc.OrgID == "" {
		acc.OrgID = org.OrgID
	}
	if acc.OrgID == "" {
		acc.OrgID = d.Cfg.DefaultOrgID
	}
	acc.Domain = org.Domain
	if acc.Domain == "" {
		acc.Domain = d.Cfg.DefaultDomain
	}
	if acc.OrgID == "" || acc.Domain == "" {
		return trainercentral.Access{}, errOrgNotConfigured
	}
	return acc, nil
}

func writeJSON(w nethttp.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeValidationError(w nethttp.ResponseWriter, detail string) {
	writeJSON(w, nethttp.StatusBadRequest, map[string]string{
		"error":  "validation_error",
		"detail": detail,
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Upstream errors
// keep their original status and body; nothing is coerced to a generic 500
// unless genuinely unknown.
func writeError(w nethttp.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, errUnauthenticated):
		writeJSON(w, nethttp.StatusUnauthorized, map[string]string{
			"error":  "unauthenticated",
			"detail": err.Error(),
		})
	case errors.Is(err, errOrgNotConfigured):
		writeJSON(w, nethttp.StatusConflict, map[string]string{
			"error":  "org_not_configured",
			"detail": err.Error(),
		})
	default:
		var dateErr *dates.InvalidDateError
		var upErr *trainercentral.UpstreamError
		var malErr *trainercentral.MalformedResponseError
		switch {
		case errors.As(err, &dateErr):
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{
				"error":   "invalid_date_format",
				"detail":  dateErr.Error(),
				"input":   dateErr.Input,
				"formats": dateErr.Layouts,
			})
		case errors.As(err, &upErr):
			writeUpstream(w, upErr)
		case errors.As(err, &malErr):
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"error":  "malformed_upstream_response",
				"status": malErr.Status,
				"body":   malErr.Body,
			})
		default:
			log.Error("request failed", zap.Error(err))
			writeJSON(w, nethttp.StatusInternalServerError, map[string]string{"error": "internal_error"})
		}
	}
}

// writeUpstream passes the upstream failure through with its status. The
// upstream's own error vocabulary reaches the caller verbatim when the body
// is JSON.
func writeUpstream(w nethttp.ResponseWriter, upErr *trainercentral.UpstreamError) {
	body := strings.TrimSpace(upErr.Body)
	if body != "" && json.Valid([]byte(body)) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(upErr.Status)
		_, _ = w.Write([]byte(body))
		return
	}
	writeJSON(w, upErr.Status, map[string]any{
		"error":  "upstream_error",
		"status": upErr.Status,
		"body":   upErr.Body,
	})
}

// errorPayload shapes a step-two failure for composite responses so the
// caller sees both the created parent and the failed child.
func errorPayload(err error) map[string]any {
	var upErr *trainercentral.UpstreamError
	if errors.As(err, &upErr) {
		out := map[string]any{"error": "upstream_error", "status": upErr.Status}
		body := strings.TrimSpace(upErr.Body)
		if body != "" && json.Valid([]byte(body)) {
			out["body"] = json.RawMessage(body)
		} else {
			out["body"] = upErr.Body
		}
		return out
	}
	var malErr *trainercentral.MalformedResponseError
	if errors.As(err, &malErr) {
		return map[string]any{"error": "malformed_upstream_response", "status": malErr.Status}
	}
	return map[string]any{"error": "internal_error", "detail": err.Error()}
}

func decodeBody(r *nethttp.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// stringField digs a string id out of an upstream response, checking the
// top level and one level under the named envelope.
func stringField(resp map[string]any, envelope string, keys ...string) string {
	if nested, ok := resp[envelope].(map[string]any); ok {
		if v := firstStringKey(nested, keys...); v != "" {
			return v
		}
	}
	return firstStringKey(resp, keys...)
}

func firstStringKey(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
