package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/skillforge/skillforge/internal/quiz"
)

// GET /grading/attempts
func ListUngradedHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListUngraded(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /grading/attempts/{attemptID}
func GetGradingItemsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID, err := pathID(r, "attemptID")
		if err != nil {
			http.Error(w, "bad attemptID", http.StatusBadRequest)
			return
		}
		out, err := svc.AnswersToGrade(r.Context(), attemptID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

type applyMarksReq struct {
	// Marks maps answer id to the mark awarded. Keys arrive as JSON strings.
	Marks map[string]int `json:"marks"`
}

// POST /grading/attempts/{attemptID}
func GradeAttemptHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID, err := pathID(r, "attemptID")
		if err != nil {
			http.Error(w, "bad attemptID", http.StatusBadRequest)
			return
		}
		var req applyMarksReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		marks := make(map[int64]int, len(req.Marks))
		for k, v := range req.Marks {
			id, err := strconv.ParseInt(k, 10, 64)
			if err != nil {
				http.Error(w, "bad answer id: "+k, http.StatusBadRequest)
				return
			}
			if v < 0 {
				http.Error(w, "marks must be non-negative", http.StatusBadRequest)
				return
			}
			marks[id] = v
		}
		out, err := svc.GradeAttempt(r.Context(), attemptID, marks)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
