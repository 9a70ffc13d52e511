package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skillforge/skillforge/internal/quiz"
)

// POST /courses
func CreateCourseHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		out, err := cat.CreateCourse(r.Context(), strings.TrimSpace(req.Name))
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /courses
func ListCoursesHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := cat.ListCourses(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// POST /topics
func CreateTopicHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title    string `json:"title"`
			CourseID *int64 `json:"course_id,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		out, err := cat.CreateTopic(r.Context(), strings.TrimSpace(req.Title), req.CourseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /topics
func ListTopicsHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := cat.ListTopics(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// POST /students (roster entry without a login; registration creates both)
func CreateStudentHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quiz.Student
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FullName == "" || req.Email == "" {
			http.Error(w, "full_name and email required", http.StatusBadRequest)
			return
		}
		out, err := cat.CreateStudent(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /students
func ListStudentsHandler(cat quiz.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := cat.ListStudents(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
