package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/coursebridge/coursebridge/internal/auth"
	"github.com/coursebridge/coursebridge/internal/config"
	"github.com/coursebridge/coursebridge/internal/session"
	"github.com/coursebridge/coursebridge/internal/trainercentral"
)

// fakeUpstream serves a scripted response and counts how often it is hit.
type fakeUpstream struct {
	srv  *httptest.Server
	hits int64
}

func newFakeUpstream(t *testing.T, respond func(w nethttp.ResponseWriter, r *nethttp.Request)) *fakeUpstream {
	f := &fakeUpstream{}
	f.srv = httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		atomic.AddInt64(&f.hits, 1)
		respond(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func testDeps(t *testing.T, domain string) Deps {
	return Deps{
		Gateway:  trainercentral.NewClient(5*time.Second, zaptest.NewLogger(t)),
		Sessions: session.NewStore(),
		Cookies:  auth.NewCookieService("test-secret"),
		Cfg: config.Config{
			DefaultOrgID:  "9000001",
			DefaultDomain: domain,
		},
		Log: zaptest.NewLogger(t),
	}
}

func TestAccessMissingTokenIs401(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{}`))
	})
	d := testDeps(t, up.srv.URL)

	req := httptest.NewRequest("GET", "/courses/", nil)
	rec := httptest.NewRecorder()
	ListCoursesHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthenticated", body["error"])
	assert.Zero(t, atomic.LoadInt64(&up.hits), "upstream must not be called without a token")
}

func TestAccessMissingOrgIs409(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{}`))
	})
	d := testDeps(t, up.srv.URL)
	d.Cfg.DefaultOrgID = ""

	req := httptest.NewRequest("GET", "/courses/?access_token=tok", nil)
	rec := httptest.NewRecorder()
	ListCoursesHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "org_not_configured", body["error"])
	assert.Zero(t, atomic.LoadInt64(&up.hits), "handler must reject before any upstream call")
}

func TestQueryParamsWinOverSession(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "Bearer query-token", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.URL.Path, "/api/v4/5550001/"), r.URL.Path)
		w.Write([]byte(`{"courses":[]}`))
	})
	d := testDeps(t, up.srv.URL)

	sid := d.Sessions.NewSessionID()
	d.Sessions.Put(sid, session.TokenSet{AccessToken: "session-token"}, session.OrgContext{OrgID: "111", Domain: up.srv.URL})
	cookie, err := d.Cookies.Issue(sid, session.OrgContext{OrgID: "111", Domain: up.srv.URL})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/courses/?orgId=5550001&access_token=query-token", nil)
	req.AddCookie(&nethttp.Cookie{Name: auth.SessionCookie, Value: cookie})
	rec := httptest.NewRecorder()
	ListCoursesHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, int64(1), atomic.LoadInt64(&up.hits))
}

func TestSessionCookieSuppliesTokenAndOrg(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.URL.Path, "/api/v4/7770001/"), r.URL.Path)
		w.Write([]byte(`{"courses":[]}`))
	})
	d := testDeps(t, up.srv.URL)
	d.Cfg.DefaultOrgID = ""
	d.Cfg.DefaultDomain = ""

	sid := d.Sessions.NewSessionID()
	org := session.OrgContext{OrgID: "7770001", Domain: up.srv.URL}
	d.Sessions.Put(sid, session.TokenSet{AccessToken: "session-token"}, org)
	cookie, err := d.Cookies.Issue(sid, org)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/courses/", nil)
	req.AddCookie(&nethttp.Cookie{Name: auth.SessionCookie, Value: cookie})
	rec := httptest.NewRecorder()
	ListCoursesHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestUpstreamErrorPassesThrough(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(nethttp.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"code":422,"message":"duplicate course"}}`))
	})
	d := testDeps(t, up.srv.URL)

	req := httptest.NewRequest("POST", "/courses/?access_token=tok",
		strings.NewReader(`{"courseName":"Algebra"}`))
	rec := httptest.NewRecorder()
	CreateCourseHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":{"code":422,"message":"duplicate course"}}`, rec.Body.String())
}

func TestCreateCourseValidation(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{}`))
	})
	d := testDeps(t, up.srv.URL)

	req := httptest.NewRequest("POST", "/courses/?access_token=tok", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	CreateCourseHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["error"])
	assert.Zero(t, atomic.LoadInt64(&up.hits))
}

func TestCreateLessonComposite(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sessions.json"):
			w.Write([]byte(`{"session":{"sessionId":"71000000000012345","name":"Intro"}}`))
		case strings.Contains(r.URL.Path, "/materials.json"):
			assert.Contains(t, r.URL.Path, "71000000000012345")
			w.Write([]byte(`{"material":{"id":"m1"}}`))
		default:
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
	})
	d := testDeps(t, up.srv.URL)

	req := httptest.NewRequest("POST", "/lessons/create?access_token=tok", strings.NewReader(
		`{"session_data":{"name":"Intro","courseId":"c1"},"content_html":"<p>hi</p>"}`))
	rec := httptest.NewRecorder()
	CreateLessonHandler(d)(rec, req)

	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "lesson")
	assert.Contains(t, body, "content")
}

func TestCreateLessonPartialFailureKeepsSessionID(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if strings.HasSuffix(r.URL.Path, "/sessions.json") {
			w.Write([]byte(`{"session":{"sessionId":"71000000000099999"}}`))
			return
		}
		w.WriteHeader(nethttp.StatusInternalServerError)
		w.Write([]byte(`{"error":"storage unavailable"}`))
	})
	d := testDeps(t, up.srv.URL)

	req := httptest.NewRequest("POST", "/lessons/create?access_token=tok", strings.NewReader(
		`{"session_data":{"name":"Intro","courseId":"c1"},"content_html":"<p>hi</p>"}`))
	rec := httptest.NewRecorder()
	CreateLessonHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusBadGateway, rec.Code)
	var body struct {
		Lesson       map[string]any `json:"lesson"`
		ContentError map[string]any `json:"content_error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	sess, ok := body.Lesson["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "71000000000099999", sess["sessionId"], "created id must survive the partial failure")
	assert.Equal(t, "upstream_error", body.ContentError["error"])
}

func TestLargeIDsSurviveProxying(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{"course":{"id":71000000000012345,"courseName":"Algebra"}}`))
	})
	d := testDeps(t, up.srv.URL)

	req := httptest.NewRequest("GET", "/courses/x?access_token=tok", nil)
	rec := httptest.NewRecorder()
	GetCourseHandler(d)(rec, req)

	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "71000000000012345",
		"numeric ids must not lose precision on the way through")
}

func TestLiveSessionRejectsBadDate(t *testing.T) {
	up := newFakeUpstream(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{}`))
	})
	d := testDeps(t, up.srv.URL)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("courseID", "c1")
	req := httptest.NewRequest("POST", "/course/c1/live_sessions?access_token=tok", strings.NewReader(
		`{"name":"Office hours","start_time":"not a date","end_time":"2026-09-01"}`))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	CreateCourseLiveSessionHandler(d)(rec, req)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_date_format", body["error"])
	assert.Zero(t, atomic.LoadInt64(&up.hits))
}
