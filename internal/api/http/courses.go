package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
)

type courseRequest struct {
	CourseName       string         `json:"courseName"`
	SubTitle         string         `json:"subTitle,omitempty"`
	Description      string         `json:"description,omitempty"`
	CourseCategories []any          `json:"courseCategories,omitempty"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// fields flattens the typed request into the open map the upstream envelope
// carries. Extra covers fields this layer is deliberately opaque to.
func (cr courseRequest) fields(requireName bool) (map[string]any, string) {
	if requireName && cr.CourseName == "" {
		return nil, "courseName is required"
	}
	out := map[string]any{}
	for k, v := range cr.Extra {
		out[k] = v
	}
	if cr.CourseName != "" {
		out["courseName"] = cr.CourseName
	}
	if cr.SubTitle != "" {
		out["subTitle"] = cr.SubTitle
	}
	if cr.Description != "" {
		out["description"] = cr.Description
	}
	if cr.CourseCategories != nil {
		out["courseCategories"] = cr.CourseCategories
	}
	if len(out) == 0 {
		return nil, "no course fields supplied"
	}
	return out, ""
}

func CreateCourseHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req courseRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		fields, problem := req.fields(true)
		if problem != "" {
			writeValidationError(w, problem)
			return
		}
		out, err := d.Gateway.CreateCourse(r.Context(), acc, fields)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetCourseHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.GetCourse(r.Context(), acc, chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func ListCoursesHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.ListCourses(r.Context(), acc)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func UpdateCourseHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		var req courseRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, "bad json")
			return
		}
		fields, problem := req.fields(false)
		if problem != "" {
			writeValidationError(w, problem)
			return
		}
		out, err := d.Gateway.UpdateCourse(r.Context(), acc, chi.URLParam(r, "courseID"), fields)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func DeleteCourseHandler(d Deps) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		acc, err := d.access(r)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		out, err := d.Gateway.DeleteCourse(r.Context(), acc, chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
