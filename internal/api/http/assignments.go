package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursebridge/coursebridge/internal/trainercentral"
)

type assignmentCreateRequest struct {
	AssignmentData      map[string]any `json:"assignment_data"`
	InstructionHTML     string         `json:"instruction_html"`
	InstructionFilename string         `json:"instruction_filename"`
	ViewType            *int           `json:"view_type"`
}

// CreateAssignmentHandler creates the assignment session and then attaches
// its instructions. Like the lesson composite, partial completion is
// reported, never hidden.
func CreateAssignmentHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req assignmentCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if len(req.AssignmentData) == 0 {
			writeValidationError(w, "assignment_data is required")
			return
		}
		if req.InstructionHTML == "" {
			writeValidationError(w, "instruction_html is required")
			return
		}
		if req.InstructionFilename == "" {
			req.InstructionFilename = "Instructions"
		}
		viewType := 4
		if req.ViewType != nil {
			viewType = *req.ViewType
		}
		if req.AssignmentData["deliveryMode"] == nil {
			req.AssignmentData["deliveryMode"] = trainercentral.DeliveryModeContent
		}

		assignment, err := d.Gateway.CreateSession(r.Context(), acc, req.AssignmentData)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		sessionID := stringField(assignment, "session", "sessionId", "id")
		if sessionID == "" {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"assignment":         assignment,
				"instructions_error": map[string]string{"error": "missing_session_id", "detail": "create response carried no session id"},
			})
			return
		}

		instructions, err := d.Gateway.UploadMaterial(r.Context(), acc, sessionID, map[string]any{
			"name":     req.InstructionFilename,
			"content":  req.InstructionHTML,
			"viewType": viewType,
		})
		if err != nil {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{
				"assignment":         assignment,
				"instructions_error": errorPayload(err),
			})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"assignment":   assignment,
			"instructions": instructions,
		})
	}
}

func DeleteAssignmentHandler(d Deps) nethttp.HandlerFunc {
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
