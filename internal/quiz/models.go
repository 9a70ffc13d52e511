package quiz

import "time"

// Question types. MCQ is auto-graded by exact match against the canonical
// answer; SAQ is graded manually by an instructor.
const (
	TypeMCQ = "MCQ"
	TypeSAQ = "SAQ"
)

// Assignment status state machine: NOT_STARTED -> IN_PROGRESS -> SUBMITTED.
// There is no regression transition.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusSubmitted  = "SUBMITTED"
)

type Topic struct {
	ID        int64     `json:"id"`
	CourseID  *int64    `json:"course_id,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Quiz is immutable once its questions are attached, except for deletion.
// ExternalID is a synthetic UUID distinct from the storage-assigned id.
type Quiz struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	TopicID    int64     `json:"topic_id"`
	Difficulty string    `json:"difficulty"` // conventionally EASY|MEDIUM|HARD, not enforced
	CreatedAt  time.Time `json:"created_at"`
}

type Question struct {
	ID       int64  `json:"id"`
	QuizID   int64  `json:"quiz_id"`
	Type     string `json:"type"`
	Question string `json:"question"`
	OptionA  string `json:"option_a,omitempty"`
	OptionB  string `json:"option_b,omitempty"`
	OptionC  string `json:"option_c,omitempty"`
	OptionD  string `json:"option_d,omitempty"`
	// CorrectAnswer must never reach a student-facing payload.
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// StudentQuestion is the student-safe view of a Question: same fields minus the
// answer key.
type StudentQuestion struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Question string `json:"question"`
	OptionA  string `json:"option_a,omitempty"`
	OptionB  string `json:"option_b,omitempty"`
	OptionC  string `json:"option_c,omitempty"`
	OptionD  string `json:"option_d,omitempty"`
}

// StudentView strips the answer key.
func (q Question) StudentView() StudentQuestion {
	return StudentQuestion{
		ID:       q.ID,
		Type:     q.Type,
		Question: q.Question,
		OptionA:  q.OptionA,
		OptionB:  q.OptionB,
		OptionC:  q.OptionC,
		OptionD:  q.OptionD,
	}
}

// Assignment binds a quiz to a student, optionally within a course. At most one
// assignment exists per (quiz, student) pair.
type Assignment struct {
	ID         int64     `json:"id"`
	QuizID     int64     `json:"quiz_id"`
	StudentID  int64     `json:"student_id"`
	CourseID   *int64    `json:"course_id,omitempty"`
	Status     string    `json:"status"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Attempt is one graded record of a student's submission. Score holds the
// auto-graded MCQ portion; ManualScore accumulates instructor marks on SAQ
// answers. The displayed total is always Score+ManualScore, never stored.
type Attempt struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	QuizID         int64     `json:"quiz_id"`
	Score          int       `json:"score"`
	ManualScore    int       `json:"manual_score"`
	TotalQuestions int       `json:"total_questions"`
	FullyAssessed  bool      `json:"fully_assessed"`
	AttemptedAt    time.Time `json:"attempted_at"`
}

type Answer struct {
	ID            int64  `json:"id"`
	AttemptID     int64  `json:"attempt_id"`
	QuestionID    int64  `json:"question_id"`
	AnswerText    string `json:"answer_text"`
	MarksObtained *int   `json:"marks_obtained,omitempty"`
	Graded        bool   `json:"graded"`
}

// GradingItem is an answer joined with its question, shown to instructors so
// graded MCQ rows give context alongside the ungraded SAQ rows.
type GradingItem struct {
	AnswerID      int64  `json:"answer_id"`
	QuestionID    int64  `json:"question_id"`
	QuestionType  string `json:"question_type"`
	QuestionText  string `json:"question_text"`
	AnswerText    string `json:"answer_text"`
	MarksObtained *int   `json:"marks_obtained,omitempty"`
	Graded        bool   `json:"graded"`
}

// SubmitResult summarizes a submission. Accuracy covers the auto-graded portion
// only; SAQ marks arrive later through the grading workflow.
type SubmitResult struct {
	AttemptID      int64 `json:"attempt_id"`
	Score          int   `json:"score"`
	TotalQuestions int   `json:"total_questions"`
	Accuracy       int   `json:"accuracy"`
	FullyAssessed  bool  `json:"fully_assessed"`
}

// AttemptProgress is the derived per-attempt slice of a progress report.
type AttemptProgress struct {
	Attempt
	EffectiveScore int     `json:"effective_score"`
	Percent        float64 `json:"percent"`
}

// Progress aggregates a student's attempts. All fields are derived at read
// time; nothing here is stored pre-summed.
type Progress struct {
	TotalAttempts int               `json:"total_attempts"`
	AvgScore      float64           `json:"avg_score"`
	Accuracy      float64           `json:"accuracy"`
	Attempts      []AttemptProgress `json:"attempts"`
}
