package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
)

type fullTestCreateRequest struct {
	SessionID       string         `json:"session_id"`
	Name            string         `json:"name"`
	DescriptionHTML string         `json:"description_html"`
	Questions       map[string]any `json:"questions"`
}

type testFormCreateRequest struct {
	SessionID       string `json:"session_id"`
	Name            string `json:"name"`
	DescriptionHTML string `json:"description_html"`
}

type addQuestionsRequest struct {
	SessionID   string         `json:"session_id"`
	FormIDValue string         `json:"form_id_value"`
	Questions   map[string]any `json:"questions"`
}

// CreateFullTestHandler chains form creation and question upload. The
// formIdValue from step one drives step two; a step-two failure still
// returns the created form.
func CreateFullTestHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req fullTestCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if req.SessionID == "" || req.Name == "" {
			writeValidationError(w, "session_id and name are required")
			return
		}
		if len(req.Questions) == 0 {
			writeValidationError(w, "questions is required")
			return
		}

		form, err := d.Gateway.CreateTestForm(r.Context(), acc, req.SessionID, map[string]any{
			"name":        req.Name,
			"description": req.DescriptionHTML,
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		formID := stringField(form, "form", "formIdValue", "formId", "id")
		if formID == "" {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"form":            form,
				"questions_error": map[string]string{"error": "missing_form_id", "detail": "form create response carried no formIdValue"},
			})
			return
		}

		questions, err := d.Gateway.AddTestQuestions(r.Context(), acc, req.SessionID, formID, req.Questions)
		if err != nil {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"form":            form,
				"questions_error": errorPayload(err),
			})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"form":      form,
			"questions": questions,
		})
	}
}

func CreateTestFormHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req testFormCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if req.SessionID == "" || req.Name == "" {
			writeValidationError(w, "session_id and name are required")
			return
		}
		out, err := d.Gateway.CreateTestForm(r.Context(), acc, req.SessionID, map[string]any{
			"name":        req.Name,
			"description": req.DescriptionHTML,
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func AddTestQuestionsHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req addQuestionsRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if req.SessionID == "" || req.FormIDValue == "" || len(req.Questions) == 0 {
			writeValidationError(w, "session_id, form_id_value and questions are required")
			return
		}
		out, err := d.Gateway.AddTestQuestions(r.Context(), acc, req.SessionID, req.FormIDValue, req.Questions)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func ListCourseSessionsHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.ListCourseSessions(r.Context(), acc, chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
