package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skillforge/skillforge/internal/quiz"
)

type createQuizReq struct {
	TopicID    int64  `json:"topic_id"`
	Difficulty string `json:"difficulty"`
	// count is the legacy single-count key; count_mcq wins when both are set.
	Count    *int `json:"count,omitempty"`
	CountMCQ *int `json:"count_mcq,omitempty"`
	CountSAQ int  `json:"count_saq,omitempty"`
}

type createQuizResp struct {
	Quiz      quiz.Quiz       `json:"quiz"`
	Questions []quiz.Question `json:"questions"`
}

// POST /quizzes
func CreateQuizHandler(svc *quiz.Service, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.TopicID == 0 {
			http.Error(w, "topic_id required", http.StatusBadRequest)
			return
		}
		q, err := svc.CreateQuiz(r.Context(), quiz.CreateQuizRequest{
			TopicID:     req.TopicID,
			Difficulty:  req.Difficulty,
			MCQCount:    req.CountMCQ,
			SAQCount:    req.CountSAQ,
			LegacyCount: req.Count,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		questions, err := store.QuestionsByQuiz(r.Context(), q.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createQuizResp{Quiz: q, Questions: questions})
	}
}

// GET /quizzes
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListQuizzes(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /topics/{topicID}/quizzes
func ListQuizzesByTopicHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topicID, err := pathID(r, "topicID")
		if err != nil {
			http.Error(w, "bad topicID", http.StatusBadRequest)
			return
		}
		out, err := store.ListQuizzesByTopic(r.Context(), topicID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// DELETE /quizzes/{quizID}
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, err := pathID(r, "quizID")
		if err != nil {
			http.Error(w, "bad quizID", http.StatusBadRequest)
			return
		}
		if err := store.DeleteQuiz(r.Context(), quizID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /quizzes/{quizID}/questions (instructor view, answer key included)
func ListQuestionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, err := pathID(r, "quizID")
		if err != nil {
			http.Error(w, "bad quizID", http.StatusBadRequest)
			return
		}
		if _, err := store.GetQuiz(r.Context(), quizID); err != nil {
			writeErr(w, err)
			return
		}
		out, err := store.QuestionsByQuiz(r.Context(), quizID)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// POST /quizzes/{quizID}/questions
func AddQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, err := pathID(r, "quizID")
		if err != nil {
			http.Error(w, "bad quizID", http.StatusBadRequest)
			return
		}
		var q quiz.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if q.Type != quiz.TypeMCQ && q.Type != quiz.TypeSAQ {
			http.Error(w, "type must be MCQ or SAQ", http.StatusBadRequest)
			return
		}
		q.QuizID = quizID
		out, err := store.AddQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(out)
	}
}

// PUT /questions/{questionID}
func UpdateQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, err := pathID(r, "questionID")
		if err != nil {
			http.Error(w, "bad questionID", http.StatusBadRequest)
			return
		}
		var q quiz.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = questionID
		out, err := store.UpdateQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// DELETE /questions/{questionID}
func DeleteQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, err := pathID(r, "questionID")
		if err != nil {
			http.Error(w, "bad questionID", http.StatusBadRequest)
			return
		}
		if err := store.DeleteQuestion(r.Context(), questionID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type assignQuizReq struct {
	AllStudents bool    `json:"all_students,omitempty"`
	StudentIDs  []int64 `json:"student_ids,omitempty"`
	CourseID    *int64  `json:"course_id,omitempty"`
}

// POST /quizzes/{quizID}/assign
func AssignQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, err := pathID(r, "quizID")
		if err != nil {
			http.Error(w, "bad quizID", http.StatusBadRequest)
			return
		}
		var req assignQuizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var created int
		if req.AllStudents {
			created, err = svc.AssignToAllStudents(r.Context(), quizID)
		} else {
			if len(req.StudentIDs) == 0 {
				http.Error(w, "student_ids or all_students required", http.StatusBadRequest)
				return
			}
			created, err = svc.AssignToStudents(r.Context(), quizID, req.StudentIDs, req.CourseID)
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"assigned": created})
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
