package quiz

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge/internal/genai"
	"github.com/skillforge/skillforge/internal/grading"
)

const defaultMCQCount = 2

// CreateQuizRequest carries the quiz-creation parameters. MCQCount wins over
// LegacyCount; LegacyCount exists because older clients send a single "count"
// key that always meant the MCQ count.
type CreateQuizRequest struct {
	TopicID     int64
	Difficulty  string
	MCQCount    *int
	SAQCount    int
	LegacyCount *int
}

func (r CreateQuizRequest) mcqCount() int {
	switch {
	case r.MCQCount != nil:
		return *r.MCQCount
	case r.LegacyCount != nil:
		return *r.LegacyCount
	default:
		return defaultMCQCount
	}
}

// StartResult is the student-facing payload for a started quiz. Questions are
// the student-safe view; the answer key never appears here.
type StartResult struct {
	QuizID    int64             `json:"quiz_id"`
	Questions []StudentQuestion `json:"questions"`
}

type submitKey struct {
	studentID int64
	quizID    int64
}

// Service owns the quiz lifecycle: catalog creation, the assignment state
// machine, attempt scoring and the instructor grading workflow.
type Service struct {
	store  Store
	gen    genai.Generator
	grader grading.Grader

	mu       sync.Mutex
	inFlight map[submitKey]struct{}
}

func NewService(store Store, gen genai.Generator, grader grading.Grader) *Service {
	return &Service{
		store:    store,
		gen:      gen,
		grader:   grader,
		inFlight: make(map[submitKey]struct{}),
	}
}

// CreateQuiz resolves the topic, generates the MCQ batch, then persists the
// quiz and all questions in one transaction. Generation runs strictly before
// the transaction: the remote call can take tens of seconds and must never
// hold the database open. A *genai.GenerationError propagates to the caller
// unretried; degrading to an SAQ-only or empty quiz is the caller's choice.
func (s *Service) CreateQuiz(ctx context.Context, req CreateQuizRequest) (Quiz, error) {
	topic, err := s.store.GetTopic(ctx, req.TopicID)
	if err != nil {
		return Quiz{}, err
	}

	mcqCount := req.mcqCount()
	if mcqCount < 0 {
		mcqCount = 0
	}
	saqCount := req.SAQCount
	if saqCount < 0 {
		saqCount = 0
	}

	var questions []Question
	if mcqCount > 0 {
		generated, err := s.gen.Generate(ctx, topic.Title, req.Difficulty, mcqCount)
		if err != nil {
			return Quiz{}, err
		}
		for _, g := range generated {
			questions = append(questions, Question{
				Type:          TypeMCQ,
				Question:      g.Question,
				OptionA:       g.Options[0],
				OptionB:       g.Options[1],
				OptionC:       g.Options[2],
				OptionD:       g.Options[3],
				CorrectAnswer: g.Answer,
			})
		}
	}
	for i := 0; i < saqCount; i++ {
		// Placeholder prompt; instructors edit it via the question endpoints.
		questions = append(questions, Question{
			Type:     TypeSAQ,
			Question: fmt.Sprintf("Short answer %d: in your own words, explain a key concept of %s.", i+1, topic.Title),
		})
	}

	q := Quiz{
		ExternalID: uuid.NewString(),
		TopicID:    topic.ID,
		Difficulty: req.Difficulty,
	}
	return s.store.PutQuiz(ctx, q, questions)
}

func (s *Service) AssignToStudents(ctx context.Context, quizID int64, studentIDs []int64, courseID *int64) (int, error) {
	return s.store.AssignToStudents(ctx, quizID, studentIDs, courseID)
}

func (s *Service) AssignToAllStudents(ctx context.Context, quizID int64) (int, error) {
	ids, err := s.store.ListStudentIDs(ctx)
	if err != nil {
		return 0, err
	}
	return s.store.AssignToStudents(ctx, quizID, ids, nil)
}

// StartAssignedQuiz validates the assignment, moves it to IN_PROGRESS
// (re-starting an in-progress quiz is allowed and idempotent) and returns the
// quiz's questions with the answer key stripped.
func (s *Service) StartAssignedQuiz(ctx context.Context, studentID, quizID int64) (StartResult, error) {
	ok, err := s.store.AssignmentExists(ctx, quizID, studentID)
	if err != nil {
		return StartResult{}, err
	}
	if !ok {
		return StartResult{}, &NotAssignedError{QuizID: quizID, StudentID: studentID}
	}
	if err := s.store.SetAssignmentStatus(ctx, quizID, studentID, StatusInProgress); err != nil {
		return StartResult{}, err
	}
	questions, err := s.store.QuestionsByQuiz(ctx, quizID)
	if err != nil {
		return StartResult{}, err
	}
	out := StartResult{QuizID: quizID, Questions: make([]StudentQuestion, 0, len(questions))}
	for _, q := range questions {
		out.Questions = append(out.Questions, q.StudentView())
	}
	return out, nil
}

// SubmitAssignedQuiz grades the submission and records the attempt. MCQ
// answers are graded synchronously; SAQ answers are stored ungraded for the
// instructor workflow. Submissions for the same (student, quiz) pair are
// serialized by an in-process lock: nothing in the data model forbids a second
// attempt row, so a concurrent duplicate fails with ConflictError instead of
// double-counting.
func (s *Service) SubmitAssignedQuiz(ctx context.Context, studentID, quizID int64, answers map[int64]string) (SubmitResult, error) {
	ok, err := s.store.AssignmentExists(ctx, quizID, studentID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !ok {
		return SubmitResult{}, &NotAssignedError{QuizID: quizID, StudentID: studentID}
	}

	key := submitKey{studentID: studentID, quizID: quizID}
	if !s.tryLock(key) {
		return SubmitResult{}, &ConflictError{QuizID: quizID, StudentID: studentID}
	}
	defer s.unlock(key)

	questions, err := s.store.QuestionsByQuiz(ctx, quizID)
	if err != nil {
		return SubmitResult{}, err
	}

	score := 0
	hasSAQ := false
	rows := make([]Answer, 0, len(questions))
	for _, q := range questions {
		text := answers[q.ID]
		res, err := s.grader.Grade(ctx, grading.Q{Type: q.Type, CorrectAnswer: q.CorrectAnswer}, text)
		if err != nil {
			return SubmitResult{}, err
		}
		row := Answer{QuestionID: q.ID, AnswerText: text}
		if res.NeedsManual {
			hasSAQ = true
		} else {
			marks := res.Marks
			row.MarksObtained = &marks
			row.Graded = res.Graded
			score += marks
		}
		rows = append(rows, row)
	}

	attempt, err := s.store.SubmitAttempt(ctx, Attempt{
		StudentID:      studentID,
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: len(questions),
		FullyAssessed:  !hasSAQ,
	}, rows)
	if err != nil {
		return SubmitResult{}, err
	}

	accuracy := 0
	if len(questions) > 0 {
		accuracy = score * 100 / len(questions)
	}
	return SubmitResult{
		AttemptID:      attempt.ID,
		Score:          score,
		TotalQuestions: len(questions),
		Accuracy:       accuracy,
		FullyAssessed:  attempt.FullyAssessed,
	}, nil
}

func (s *Service) tryLock(key submitKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *Service) unlock(key submitKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

func (s *Service) ListUngraded(ctx context.Context) ([]Attempt, error) {
	return s.store.ListUngradedAttempts(ctx)
}

func (s *Service) AnswersToGrade(ctx context.Context, attemptID int64) ([]GradingItem, error) {
	return s.store.GradingItems(ctx, attemptID)
}

// GradeAttempt applies the supplied marks and recomputes the attempt's manual
// score from scratch; calling it twice with the same marks is a no-op.
func (s *Service) GradeAttempt(ctx context.Context, attemptID int64, marks map[int64]int) (Attempt, error) {
	return s.store.ApplyMarks(ctx, attemptID, marks)
}

func (s *Service) AttemptsForStudent(ctx context.Context, studentID int64) ([]Attempt, error) {
	return s.store.AttemptsForStudent(ctx, studentID)
}

// GetProgress derives a student's aggregate stats from their attempts. An
// attempt's effective score is score+manualScore; each attempt contributes at
// most 100% and the overall accuracy is likewise clamped, so manual
// over-grading can never report more than a perfect record. Nothing here is
// persisted.
func (s *Service) GetProgress(ctx context.Context, studentID int64) (Progress, error) {
	attempts, err := s.store.AttemptsForStudent(ctx, studentID)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{TotalAttempts: len(attempts), Attempts: make([]AttemptProgress, 0, len(attempts))}
	sumEffective, sumTotal := 0, 0
	sumPct := 0.0
	for _, a := range attempts {
		effective := a.Score + a.ManualScore
		pct := 0.0
		if a.TotalQuestions > 0 {
			pct = float64(effective) * 100 / float64(a.TotalQuestions)
			if pct > 100 {
				pct = 100
			}
		}
		sumEffective += effective
		sumTotal += a.TotalQuestions
		sumPct += pct
		p.Attempts = append(p.Attempts, AttemptProgress{Attempt: a, EffectiveScore: effective, Percent: pct})
	}
	if sumTotal > 0 {
		p.Accuracy = float64(sumEffective) * 100 / float64(sumTotal)
		if p.Accuracy > 100 {
			p.Accuracy = 100
		}
	}
	if len(attempts) > 0 {
		p.AvgScore = sumPct / float64(len(attempts))
	}
	return p, nil
}
