package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/skillforge/skillforge/internal/api/http"
	"github.com/skillforge/skillforge/internal/db"
	"github.com/skillforge/skillforge/internal/genai"
	"github.com/skillforge/skillforge/internal/grading"
	"github.com/skillforge/skillforge/internal/quiz"
)

var dbSeq int64

type fakeGen struct{}

func (fakeGen) Generate(_ context.Context, _, _ string, count int) ([]genai.GeneratedQuestion, error) {
	out := make([]genai.GeneratedQuestion, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, genai.GeneratedQuestion{
			Question: fmt.Sprintf("Q%d", i+1),
			Options:  [4]string{"w", "x", "y", "z"},
			Answer:   "A",
		})
	}
	return out, nil
}

func (fakeGen) IsAvailable(context.Context) bool { return true }

// newTestServer wires the handlers onto a router without the auth middleware;
// these tests cover the handler contracts, not authentication.
func newTestServer(t *testing.T) (*httptest.Server, *quiz.SQLStore) {
	t.Helper()
	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	store := quiz.NewSQLStore(dbh, "sqlite")
	svc := quiz.NewService(store, fakeGen{}, grading.NewDefaultGrader())

	r := chi.NewRouter()
	r.Post("/topics", api.CreateTopicHandler(store))
	r.Post("/students", api.CreateStudentHandler(store))
	r.Post("/quizzes", api.CreateQuizHandler(svc, store))
	r.Get("/quizzes", api.ListQuizzesHandler(store))
	r.Post("/quizzes/{quizID}/assign", api.AssignQuizHandler(svc))
	r.Route("/students/{studentID}", func(sr chi.Router) {
		sr.Post("/quizzes/{quizID}/start", api.StartQuizHandler(svc))
		sr.Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(svc))
		sr.Get("/progress", api.GetProgressHandler(svc))
	})
	r.Get("/grading/attempts/{attemptID}", api.GetGradingItemsHandler(svc))
	r.Post("/grading/attempts/{attemptID}", api.GradeAttemptHandler(svc))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any, wantStatus int, out any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var raw bytes.Buffer
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s = %d, want %d; body: %s", method, url, resp.StatusCode, wantStatus, raw.String())
	}
	if out != nil {
		if err := json.Unmarshal(raw.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v; body: %s", err, raw.String())
		}
	}
	return raw.Bytes()
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	var topic quiz.Topic
	doJSON(t, "POST", srv.URL+"/topics", map[string]any{"title": "Arrays"}, http.StatusCreated, &topic)

	var student quiz.Student
	doJSON(t, "POST", srv.URL+"/students",
		map[string]any{"full_name": "Ada", "email": "ada@example.com"}, http.StatusCreated, &student)

	var created struct {
		Quiz      quiz.Quiz       `json:"quiz"`
		Questions []quiz.Question `json:"questions"`
	}
	doJSON(t, "POST", srv.URL+"/quizzes",
		map[string]any{"topic_id": topic.ID, "difficulty": "EASY", "count_mcq": 2, "count_saq": 1},
		http.StatusCreated, &created)
	if len(created.Questions) != 3 {
		t.Fatalf("created %d questions, want 3", len(created.Questions))
	}

	var assigned map[string]int
	doJSON(t, "POST", fmt.Sprintf("%s/quizzes/%d/assign", srv.URL, created.Quiz.ID),
		map[string]any{"all_students": true}, http.StatusOK, &assigned)
	if assigned["assigned"] != 1 {
		t.Fatalf("assigned = %d, want 1", assigned["assigned"])
	}

	startURL := fmt.Sprintf("%s/students/%d/quizzes/%d/start", srv.URL, student.ID, created.Quiz.ID)
	raw := doJSON(t, "POST", startURL, nil, http.StatusOK, nil)
	if strings.Contains(string(raw), "correct_answer") {
		t.Fatalf("answer key leaked into student payload: %s", raw)
	}
	var start quiz.StartResult
	if err := json.Unmarshal(raw, &start); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if len(start.Questions) != 3 {
		t.Fatalf("start returned %d questions, want 3", len(start.Questions))
	}

	answers := map[string]string{}
	for _, q := range start.Questions {
		key := fmt.Sprintf("%d", q.ID)
		if q.Type == quiz.TypeMCQ {
			answers[key] = "A" // fake generator's canonical answer
		} else {
			answers[key] = "my essay"
		}
	}
	var submit quiz.SubmitResult
	doJSON(t, "POST", fmt.Sprintf("%s/students/%d/quizzes/%d/submit", srv.URL, student.ID, created.Quiz.ID),
		map[string]any{"answers": answers}, http.StatusOK, &submit)
	if submit.Score != 2 || submit.TotalQuestions != 3 || submit.FullyAssessed {
		t.Fatalf("submit = %+v, want score 2/3 not fully assessed", submit)
	}
	if submit.Accuracy != 66 { // integer truncation, same as 2*100/3
		t.Fatalf("accuracy = %d, want 66", submit.Accuracy)
	}

	// Grade the SAQ answer.
	var items []quiz.GradingItem
	doJSON(t, "GET", fmt.Sprintf("%s/grading/attempts/%d", srv.URL, submit.AttemptID), nil, http.StatusOK, &items)
	var saqAnswerID int64
	for _, it := range items {
		if it.QuestionType == quiz.TypeSAQ {
			saqAnswerID = it.AnswerID
		}
	}
	if saqAnswerID == 0 {
		t.Fatalf("no SAQ grading item in %+v", items)
	}
	var graded quiz.Attempt
	doJSON(t, "POST", fmt.Sprintf("%s/grading/attempts/%d", srv.URL, submit.AttemptID),
		map[string]any{"marks": map[string]int{fmt.Sprintf("%d", saqAnswerID): 1}}, http.StatusOK, &graded)
	if graded.ManualScore != 1 || !graded.FullyAssessed {
		t.Fatalf("graded attempt = %+v, want manual 1 fully assessed", graded)
	}

	var progress quiz.Progress
	doJSON(t, "GET", fmt.Sprintf("%s/students/%d/progress", srv.URL, student.ID), nil, http.StatusOK, &progress)
	if progress.TotalAttempts != 1 || progress.Accuracy != 100 {
		t.Fatalf("progress = %+v, want one attempt at 100", progress)
	}
}

func TestSubmitUnassignedReturns403(t *testing.T) {
	srv, store := newTestServer(t)

	topic, err := store.CreateTopic(context.Background(), "Graphs", nil)
	if err != nil {
		t.Fatalf("topic: %v", err)
	}
	student, err := store.CreateStudent(context.Background(), quiz.Student{FullName: "Ada", Email: "a@e.com"})
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	q, err := store.PutQuiz(context.Background(),
		quiz.Quiz{ExternalID: "x", TopicID: topic.ID, Difficulty: "EASY"},
		[]quiz.Question{{Type: quiz.TypeMCQ, Question: "q", CorrectAnswer: "A"}})
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}

	doJSON(t, "POST", fmt.Sprintf("%s/students/%d/quizzes/%d/submit", srv.URL, student.ID, q.ID),
		map[string]any{"answers": map[string]string{}}, http.StatusForbidden, nil)
}

func TestCreateQuizBadJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/quizzes", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
