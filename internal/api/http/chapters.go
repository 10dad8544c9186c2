package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
)

type chapterCreateRequest struct {
	CourseID string `json:"courseId"`
	Name     string `json:"name"`
}

type chapterUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	SectionIndex *int    `json:"sectionIndex,omitempty"`
}

func CreateChapterHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req chapterCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		if req.CourseID == "" || req.Name == "" {
			writeValidationError(w, "courseId and name are required")
			return
		}
		out, err := d.Gateway.CreateChapter(r.Context(), acc, map[string]any{
			"courseId": req.CourseID,
			"name":     req.Name,
		})
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func UpdateChapterHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req chapterUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.SectionIndex != nil {
			updates["sectionIndex"] = *req.SectionIndex
		}
		if len(updates) == 0 {
			writeValidationError(w, "nothing to update")
			return
		}
		out, err := d.Gateway.UpdateChapter(r.Context(), acc,
			chi.URLParam(r, "courseID"), chi.URLParam(r, "sectionID"), updates)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func DeleteChapterHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.DeleteChapter(r.Context(), acc,
			chi.URLParam(r, "courseID"), chi.URLParam(r, "sectionID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
