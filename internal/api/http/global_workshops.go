package http

import (
	"strconv"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursebridge/coursebridge/internal/dates"
	"github.com/coursebridge/coursebridge/internal/trainercentral"
)

type globalWorkshopCreateRequest struct {
	Name            string `json:"name"`
	DescriptionHTML string `json:"description_html"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
}

type occurrenceCreateRequest struct {
	SessionID        string         `json:"sessionId"`
	ScheduledTime    string         `json:"scheduledTime"`
	ScheduledEndTime string         `json:"scheduledEndTime"`
	DurationTime     *int           `json:"durationTime,omitempty"`
	Recurrence       map[string]any `json:"recurrence,omitempty"`
}

func CreateGlobalWorkshopHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req globalWorkshopCreateRequest
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
		out, err := d.Gateway.CreateSession(r.Context(), acc, map[string]any{
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

func UpdateGlobalWorkshopHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var updates map[string]any
		if err := decodeBody(r, &updates); err != nil || len(updates) == 0 {
			writeValidationError(w, "update fields are required")
			return
		}
		out, err := d.Gateway.UpdateSession(r.Context(), acc, chi.URLParam(r, "sessionID"), updates)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func CreateOccurrenceHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req occurrenceCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if req.SessionID == "" || req.ScheduledTime == "" || req.ScheduledEndTime == "" {
			writeValidationError(w, "sessionId, scheduledTime and scheduledEndTime are required")
			return
		}
		startMs, err := dates.Normalize(req.ScheduledTime)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		endMs, err := dates.Normalize(req.ScheduledEndTime)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		fields := map[string]any{
			"sessionId":        req.SessionID,
			"scheduledTime":    startMs,
			"scheduledEndTime": endMs,
		}
		if req.DurationTime != nil {
			fields["durationTime"] = *req.DurationTime
		}
		if req.Recurrence != nil {
			fields["recurrence"] = req.Recurrence
		}
		out, err := d.Gateway.CreateOccurrence(r.Context(), acc, fields)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func UpdateOccurrenceHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var updates map[string]any
		if err := decodeBody(r, &updates); err != nil || len(updates) == 0 {
			writeValidationError(w, "update fields are required")
			return
		}
		out, err := d.Gateway.UpdateOccurrence(r.Context(), acc, chi.URLParam(r, "talkID"), updates)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func ListGlobalWorkshopsHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.ListGlobalWorkshops(r.Context(), acc, listOptions(r))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

// InviteWorkshopUserHandler invites by email; role and source ride as query
// parameters with the upstream defaults (3 = learner, 1 = internal).
func InviteWorkshopUserHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		q := r.URL.Query()
		email := q.Get("email")
		if email == "" {
			writeValidationError(w, "email is required")
			return
		}
		role := 3
		if v, err := strconv.Atoi(q.Get("role")); err == nil {
			role = v
		}
		source := 1
		if v, err := strconv.Atoi(q.Get("source")); err == nil {
			source = v
		}
		out, err := d.Gateway.InviteWorkshopUser(r.Context(), acc, chi.URLParam(r, "sessionID"), map[string]any{
			"email":  email,
			"role":   role,
			"source": source,
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
