package quiz

import "fmt"

// Domain error taxonomy. Callers discriminate with errors.As; the HTTP layer
// maps each kind to a status code. Anything else is a plain server error.

// NotFoundError: a referenced topic, quiz, question, student or attempt does
// not exist.
type NotFoundError struct {
	Kind string // "topic", "quiz", "question", "student", "attempt"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// NotAssignedError: a student-scoped operation was attempted on a quiz that is
// not assigned to that student. Distinct from NotFoundError so clients can tell
// an authorization failure from a dangling id.
type NotAssignedError struct {
	QuizID    int64
	StudentID int64
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("quiz %d not assigned to student %d", e.QuizID, e.StudentID)
}

// ConflictError: a concurrent duplicate submission lost the per-(student,quiz)
// serialization race. The client should refetch state before retrying.
type ConflictError struct {
	QuizID    int64
	StudentID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("submission already in flight for quiz %d student %d", e.QuizID, e.StudentID)
}
