package quiz

import "context"

// Store is the persistence boundary for the quiz lifecycle. The SQL
// implementation keeps each mutating operation a single transaction.
type Store interface {
	// Catalog
	GetTopic(ctx context.Context, id int64) (Topic, error)
	PutQuiz(ctx context.Context, q Quiz, questions []Question) (Quiz, error)
	GetQuiz(ctx context.Context, id int64) (Quiz, error)
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	ListQuizzesByTopic(ctx context.Context, topicID int64) ([]Quiz, error)
	DeleteQuiz(ctx context.Context, id int64) error
	QuestionsByQuiz(ctx context.Context, quizID int64) ([]Question, error)
	AddQuestion(ctx context.Context, q Question) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) (Question, error)
	DeleteQuestion(ctx context.Context, id int64) error

	// Assignments
	AssignToStudents(ctx context.Context, quizID int64, studentIDs []int64, courseID *int64) (created int, err error)
	ListStudentIDs(ctx context.Context) ([]int64, error)
	AssignmentExists(ctx context.Context, quizID, studentID int64) (bool, error)
	SetAssignmentStatus(ctx context.Context, quizID, studentID int64, status string) error
	AssignmentsForStudent(ctx context.Context, studentID int64) ([]Assignment, error)

	// Attempts. SubmitAttempt persists the attempt with its answers, flips the
	// assignment to SUBMITTED and appends the audit event, all in one
	// transaction.
	SubmitAttempt(ctx context.Context, a Attempt, answers []Answer) (Attempt, error)
	GetAttempt(ctx context.Context, id int64) (Attempt, error)
	AttemptsForStudent(ctx context.Context, studentID int64) ([]Attempt, error)

	// Instructor grading
	ListUngradedAttempts(ctx context.Context) ([]Attempt, error)
	GradingItems(ctx context.Context, attemptID int64) ([]GradingItem, error)
	ApplyMarks(ctx context.Context, attemptID int64, marks map[int64]int) (Attempt, error)
}
