package http

import (
	"strconv"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursebridge/coursebridge/internal/dates"
	"github.com/coursebridge/coursebridge/internal/trainercentral"
)

type courseLiveCreateRequest struct {
	Name            string `json:"name"`
	DescriptionHTML string `json:"description_html"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
}

type inviteLearnerRequest struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	CourseID        string `json:"course_id,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
	IsAccessGranted *bool  `json:"is_access_granted,omitempty"`
	ExpiryTime      *int64 `json:"expiry_time,omitempty"`
	ExpiryDuration  string `json:"expiry_duration,omitempty"`
}

func CreateCourseLiveSessionHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req courseLiveCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if req.Name == "" || req.StartTime == "" || req.EndTime == "" {
			writeValidationError(w, "name, start_time and end_time are required")
			return
		}
		startMs, err := dates.Normalize(req.StartTime)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		endMs, err := dates.Normalize(req.EndTime)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.CreateCourseLiveSession(r.Context(), acc, chi.URLParam(r, "courseID"), map[string]any{
			"name":             req.Name,
			"description":      req.DescriptionHTML,
			"deliveryMode":     trainercentral.DeliveryModeLive,
			"scheduledTime":    startMs,
			"scheduledEndTime": endMs,
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func ListCourseLiveSessionsHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.ListCourseLiveSessions(r.Context(), acc, chi.URLParam(r, "courseID"), listOptions(r))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func DeleteCourseLiveSessionHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.DeleteSession(r.Context(), acc, chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func InviteLearnerHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req inviteLearnerRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if req.Email == "" || req.FirstName == "" || req.LastName == "" {
			writeValidationError(w, "email, first_name and last_name are required")
			return
		}
		if req.CourseID == "" && req.SessionID == "" {
			writeValidationError(w, "one of course_id or session_id is required")
			return
		}
		fields := map[string]any{
			"email":     req.Email,
			"firstName": req.FirstName,
			"lastName":  req.LastName,
		}
		if req.CourseID != "" {
			fields["courseId"] = req.CourseID
		}
		if req.SessionID != "" {
			fields["sessionId"] = req.SessionID
		}
		granted := true
		if req.IsAccessGranted != nil {
			granted = *req.IsAccessGranted
		}
		fields["isAccessGranted"] = granted
		if req.ExpiryTime != nil {
			fields["expiryTime"] = *req.ExpiryTime
		}
		if req.ExpiryDuration != "" {
			fields["expiryDuration"] = req.ExpiryDuration
		}
		out, err := d.Gateway.InviteLearner(r.Context(), acc, fields)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

// listOptions reads the pagination/filter query knobs shared by the
// session-listing endpoints.
func listOptions(r *nethttp.Request) trainercentral.ListOptions {
	opts := trainercentral.ListOptions{FilterType: 5, Limit: 50, StartIndex: 0}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("filter_type")); err == nil {
		opts.FilterType = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		if v > 200 {
			v = 200
		}
		opts.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("si")); err == nil && v >= 0 {
		opts.StartIndex = v
	}
	return opts
}
