package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursebridge/coursebridge/internal/trainercentral"
)

type lessonCreateRequest struct {
	SessionData     map[string]any `json:"session_data"`
	ContentHTML     string         `json:"content_html"`
	ContentFilename string         `json:"content_filename"`
}

type lessonUpdateRequest struct {
	Updates map[string]any `json:"updates"`
}

// CreateLessonHandler is a composite: create the session, then upload its
// content. The two upstream calls are not transactional; if the upload
// fails, the already-created lesson is returned next to the upload failure
// so the caller keeps the sessionId.
func CreateLessonHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req lessonCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if len(req.SessionData) == 0 {
			writeValidationError(w, "session_data is required")
			return
		}
		if req.SessionData["name"] == nil || req.SessionData["courseId"] == nil {
			writeValidationError(w, "session_data.name and session_data.courseId are required")
			return
		}
		if req.ContentHTML == "" {
			writeValidationError(w, "content_html is required")
			return
		}
		if req.ContentFilename == "" {
			req.ContentFilename = "Content"
		}
		if req.SessionData["deliveryMode"] == nil {
			req.SessionData["deliveryMode"] = trainercentral.DeliveryModeContent
		}

		lesson, err := d.Gateway.CreateSession(r.Context(), acc, req.SessionData)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		sessionID := stringField(lesson, "session", "sessionId", "id")
		if sessionID == "" {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"lesson":        lesson,
				"content_error": map[string]string{"error": "missing_session_id", "detail": "create response carried no session id"},
			})
			return
		}

		content, err := d.Gateway.UploadMaterial(r.Context(), acc, sessionID, map[string]any{
			"name":    req.ContentFilename,
			"content": req.ContentHTML,
		})
		if err != nil {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"lesson":        lesson,
				"content_error": errorPayload(err),
			})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"lesson":  lesson,
			"content": content,
		})
	}
}

func UpdateLessonHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req lessonUpdateRequest
		if err := decodeBody(r, &req); err != nil || len(req.Updates) == 0 {
			writeValidationError(w, "updates is required")
			return
		}
		out, err := d.Gateway.UpdateSession(r.Context(), acc, chi.URLParam(r, "sessionID"), req.Updates)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func DeleteLessonHandler(d Deps) nethttp.HandlerFunc {
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
