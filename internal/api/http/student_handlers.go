package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	auth "github.com/skillforge/skillforge/internal/auth/middleware"
	"github.com/skillforge/skillforge/internal/quiz"
)

// IsOwnStudent reports whether the caller's student id matches the
// {studentID} path segment. Used with rbac.RequireOwnerOr so instructors with
// the right permission can reach other students' records.
func IsOwnStudent(r *http.Request) bool {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		return false
	}
	return studentID != 0 && auth.StudentIDFromContext(r.Context()) == studentID
}

// GET /students/{studentID}/assignments
func ListAssignmentsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := pathID(r, "studentID")
		if err != nil {
			http.Error(w, "bad studentID", http.StatusBadRequest)
			return
		}
		out, err := store.AssignmentsForStudent(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// POST /students/{studentID}/quizzes/{quizID}/start
func StartQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := pathID(r, "studentID")
		if err != nil {
			http.Error(w, "bad studentID", http.StatusBadRequest)
			return
		}
		quizID, err := pathID(r, "quizID")
		if err != nil {
			http.Error(w, "bad quizID", http.StatusBadRequest)
			return
		}
		out, err := svc.StartAssignedQuiz(r.Context(), studentID, quizID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

type submitQuizReq struct {
	// Answers maps question id to the student's answer text. Keys arrive as
	// JSON strings.
	Answers map[string]string `json:"answers"`
}

// POST /students/{studentID}/quizzes/{quizID}/submit
func SubmitQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := pathID(r, "studentID")
		if err != nil {
			http.Error(w, "bad studentID", http.StatusBadRequest)
			return
		}
		quizID, err := pathID(r, "quizID")
		if err != nil {
			http.Error(w, "bad quizID", http.StatusBadRequest)
			return
		}
		var req submitQuizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		answers := make(map[int64]string, len(req.Answers))
		for k, v := range req.Answers {
			qid, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				http.Error(w, "bad question id: "+k, http.StatusBadRequest)
				return
			}
			answers[qid] = v
		}
		out, err := svc.SubmitAssignedQuiz(r.Context(), studentID, quizID, answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /students/{studentID}/attempts
func ListAttemptsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := pathID(r, "studentID")
		if err != nil {
			http.Error(w, "bad studentID", http.StatusBadRequest)
			return
		}
		out, err := svc.AttemptsForStudent(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /students/{studentID}/progress
func GetProgressHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := pathID(r, "studentID")
		if err != nil {
			http.Error(w, "bad studentID", http.StatusBadRequest)
			return
		}
		p, err := svc.GetProgress(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		// Rounding happens here and only here; the engine keeps full precision.
		p.AvgScore = round2(p.AvgScore)
		p.Accuracy = round2(p.Accuracy)
		for i := range p.Attempts {
			p.Attempts[i].Percent = round2(p.Attempts[i].Percent)
		}
		_ = json.NewEncoder(w).Encode(p)
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
