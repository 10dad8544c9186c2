package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coursebridge/coursebridge/internal/session"
)

// Cookie names used across the flow.
const (
	SessionCookie    = "cb_session"
	stateCookie      = "cb_oauth_state"
	downstreamCookie = "cb_downstream_redirect"
)

const sessionTTL = 8 * time.Hour

// CookieService signs and verifies the session cookie. The cookie carries
// the session id plus the org context resolved at callback time, so every
// later request is tenant-scoped without any process-global state.
type CookieService struct{ hmac []byte }

func NewCookieService(secret string) *CookieService {
	return &CookieService{hmac: []byte(secret)}
}

type SessionClaims struct {
	SID    string `json:"sid"`
	OrgID  string `json:"org_id,omitempty"`
	Domain string `json:"domain,omitempty"`
	jwt.RegisteredClaims
}

func (c *CookieService) Issue(sid string, org session.OrgContext) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SID:    sid,
		OrgID:  org.OrgID,
		Domain: org.Domain,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "coursebridge",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.hmac)
}

func (c *CookieService) Parse(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}
	claims, _ := token.Claims.(*SessionClaims)
	return claims, nil
}

// ClaimsFromRequest reads and verifies the session cookie, if present.
func (c *CookieService) ClaimsFromRequest(r *http.Request) (*SessionClaims, bool) {
	ck, err := r.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return nil, false
	}
	claims, err := c.Parse(ck.Value)
	if err != nil || claims == nil {
		return nil, false
	}
	return claims, true
}

func setSessionCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

func expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
}

func setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})
}
