package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/skillforge/skillforge/internal/eventlog"
)

// SQLStore implements Store on database/sql. Placeholders use the $N form,
// which both the pgx stdlib driver and modernc sqlite accept.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) GetTopic(ctx context.Context, id int64) (Topic, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, created_at FROM topics WHERE id=$1`, id)
	var t Topic
	var createdAt int64
	if err := row.Scan(&t.ID, &t.CourseID, &t.Title, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Topic{}, &NotFoundError{Kind: "topic", ID: id}
		}
		return Topic{}, err
	}
	t.CreatedAt = time.Unix(createdAt, 0)
	return t, nil
}

// PutQuiz persists a quiz and its generated question batch in one transaction.
// Question generation has already happened by the time this runs; no remote
// call is ever made while the transaction is open.
func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz, questions []Question) (Quiz, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Quiz{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO quizzes (external_id, topic_id, difficulty, created_at)
		 VALUES ($1,$2,$3,$4) RETURNING id`,
		q.ExternalID, q.TopicID, q.Difficulty, now.Unix()).Scan(&q.ID)
	if err != nil {
		return Quiz{}, err
	}
	q.CreatedAt = now

	for _, qq := range questions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quiz_questions (quiz_id, qtype, question, option_a, option_b, option_c, option_d, correct_answer)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			q.ID, qq.Type, qq.Question, qq.OptionA, qq.OptionB, qq.OptionC, qq.OptionD, qq.CorrectAnswer)
		if err != nil {
			return Quiz{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, external_id, topic_id, difficulty, created_at FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row, id)
}

func scanQuiz(row *sql.Row, id int64) (Quiz, error) {
	var q Quiz
	var createdAt int64
	if err := row.Scan(&q.ID, &q.ExternalID, &q.TopicID, &q.Difficulty, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, &NotFoundError{Kind: "quiz", ID: id}
		}
		return Quiz{}, err
	}
	q.CreatedAt = time.Unix(createdAt, 0)
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	return s.listQuizzes(ctx,
		`SELECT id, external_id, topic_id, difficulty, created_at FROM quizzes ORDER BY created_at DESC`)
}

func (s *SQLStore) ListQuizzesByTopic(ctx context.Context, topicID int64) ([]Quiz, error) {
	return s.listQuizzes(ctx,
		`SELECT id, external_id, topic_id, difficulty, created_at FROM quizzes WHERE topic_id=$1 ORDER BY created_at DESC`,
		topicID)
}

func (s *SQLStore) listQuizzes(ctx context.Context, query string, args ...any) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		var q Quiz
		var createdAt int64
		if err := rows.Scan(&q.ID, &q.ExternalID, &q.TopicID, &q.Difficulty, &createdAt); err != nil {
			return nil, err
		}
		q.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, q)
	}
	return out, rows.Err()
}

// DeleteQuiz cascades to the quiz's questions via the FK.
func (s *SQLStore) DeleteQuiz(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "quiz", ID: id}
	}
	return nil
}

func (s *SQLStore) QuestionsByQuiz(ctx context.Context, quizID int64) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, quiz_id, qtype, question, option_a, option_b, option_c, option_d, correct_answer
		   FROM quiz_questions WHERE quiz_id=$1 ORDER BY id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Type, &q.Question,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddQuestion(ctx context.Context, q Question) (Question, error) {
	if _, err := s.GetQuiz(ctx, q.QuizID); err != nil {
		return Question{}, err
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quiz_questions (quiz_id, qtype, question, option_a, option_b, option_c, option_d, correct_answer)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		q.QuizID, q.Type, q.Question, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer).Scan(&q.ID)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) (Question, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_questions SET qtype=$1, question=$2, option_a=$3, option_b=$4, option_c=$5, option_d=$6, correct_answer=$7
		  WHERE id=$8`,
		q.Type, q.Question, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer, q.ID)
	if err != nil {
		return Question{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Question{}, &NotFoundError{Kind: "question", ID: q.ID}
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, quiz_id, qtype, question, option_a, option_b, option_c, option_d, correct_answer
		   FROM quiz_questions WHERE id=$1`, q.ID)
	var out Question
	if err := row.Scan(&out.ID, &out.QuizID, &out.Type, &out.Question,
		&out.OptionA, &out.OptionB, &out.OptionC, &out.OptionD, &out.CorrectAnswer); err != nil {
		return Question{}, err
	}
	return out, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quiz_questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "question", ID: id}
	}
	return nil
}

// AssignToStudents creates one NOT_STARTED assignment per target student.
// Students who already hold an assignment for the quiz are skipped, not
// errored, so re-assigning is idempotent.
func (s *SQLStore) AssignToStudents(ctx context.Context, quizID int64, studentIDs []int64, courseID *int64) (int, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	created := 0
	for _, sid := range studentIDs {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_assignments (quiz_id, student_id, course_id, status, assigned_at)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (quiz_id, student_id) DO NOTHING`,
			quizID, sid, courseID, StatusNotStarted, now)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	if created > 0 {
		data, _ := json.Marshal(map[string]any{"students": len(studentIDs), "created": created})
		if err := eventlog.Append(ctx, tx, eventlog.Event{
			Type:     eventlog.TypeQuizAssigned,
			Key:      strconv.FormatInt(quizID, 10),
			DataJSON: string(data),
		}); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return created, nil
}

func (s *SQLStore) ListStudentIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLStore) AssignmentExists(ctx context.Context, quizID, studentID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM quiz_assignments WHERE quiz_id=$1 AND student_id=$2`,
		quizID, studentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) SetAssignmentStatus(ctx context.Context, quizID, studentID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_assignments SET status=$1 WHERE quiz_id=$2 AND student_id=$3`,
		status, quizID, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotAssignedError{QuizID: quizID, StudentID: studentID}
	}
	return nil
}

func (s *SQLStore) AssignmentsForStudent(ctx context.Context, studentID int64) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, quiz_id, student_id, course_id, status, assigned_at
		   FROM quiz_assignments WHERE student_id=$1 ORDER BY assigned_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Assignment{}
	for rows.Next() {
		var a Assignment
		var assignedAt int64
		if err := rows.Scan(&a.ID, &a.QuizID, &a.StudentID, &a.CourseID, &a.Status, &assignedAt); err != nil {
			return nil, err
		}
		a.AssignedAt = time.Unix(assignedAt, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}

// SubmitAttempt is the write side of submission: the attempt row, its answers,
// the assignment flip to SUBMITTED and the audit event commit or roll back
// together.
func (s *SQLStore) SubmitAttempt(ctx context.Context, a Attempt, answers []Answer) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO quiz_attempts (student_id, quiz_id, score, manual_score, total_questions, fully_assessed, attempted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		a.StudentID, a.QuizID, a.Score, a.ManualScore, a.TotalQuestions, a.FullyAssessed, now.Unix()).Scan(&a.ID)
	if err != nil {
		return Attempt{}, err
	}
	a.AttemptedAt = now

	for _, ans := range answers {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quiz_answers (attempt_id, question_id, answer_text, marks_obtained, graded)
			 VALUES ($1,$2,$3,$4,$5)`,
			a.ID, ans.QuestionID, ans.AnswerText, ans.MarksObtained, ans.Graded)
		if err != nil {
			return Attempt{}, err
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE quiz_assignments SET status=$1 WHERE quiz_id=$2 AND student_id=$3`,
		StatusSubmitted, a.QuizID, a.StudentID)
	if err != nil {
		return Attempt{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Attempt{}, &NotAssignedError{QuizID: a.QuizID, StudentID: a.StudentID}
	}

	data, _ := json.Marshal(map[string]any{
		"student_id": a.StudentID, "quiz_id": a.QuizID,
		"score": a.Score, "fully_assessed": a.FullyAssessed,
	})
	if err := eventlog.Append(ctx, tx, eventlog.Event{
		Type:     eventlog.TypeAttemptSubmitted,
		Key:      strconv.FormatInt(a.ID, 10),
		DataJSON: string(data),
	}); err != nil {
		return Attempt{}, err
	}

	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id int64) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, quiz_id, score, manual_score, total_questions, fully_assessed, attempted_at
		   FROM quiz_attempts WHERE id=$1`, id)
	var a Attempt
	var attemptedAt int64
	if err := row.Scan(&a.ID, &a.StudentID, &a.QuizID, &a.Score, &a.ManualScore,
		&a.TotalQuestions, &a.FullyAssessed, &attemptedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, &NotFoundError{Kind: "attempt", ID: id}
		}
		return Attempt{}, err
	}
	a.AttemptedAt = time.Unix(attemptedAt, 0)
	return a, nil
}

func (s *SQLStore) AttemptsForStudent(ctx context.Context, studentID int64) ([]Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT id, student_id, quiz_id, score, manual_score, total_questions, fully_assessed, attempted_at
		   FROM quiz_attempts WHERE student_id=$1 ORDER BY attempted_at DESC`, studentID)
}

func (s *SQLStore) ListUngradedAttempts(ctx context.Context) ([]Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT id, student_id, quiz_id, score, manual_score, total_questions, fully_assessed, attempted_at
		   FROM quiz_attempts WHERE fully_assessed=$1 ORDER BY attempted_at`, false)
}

func (s *SQLStore) listAttempts(ctx context.Context, query string, args ...any) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var attemptedAt int64
		if err := rows.Scan(&a.ID, &a.StudentID, &a.QuizID, &a.Score, &a.ManualScore,
			&a.TotalQuestions, &a.FullyAssessed, &attemptedAt); err != nil {
			return nil, err
		}
		a.AttemptedAt = time.Unix(attemptedAt, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) GradingItems(ctx context.Context, attemptID int64) ([]GradingItem, error) {
	if _, err := s.GetAttempt(ctx, attemptID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.question_id, q.qtype, q.question, a.answer_text, a.marks_obtained, a.graded
		   FROM quiz_answers a
		   JOIN quiz_questions q ON q.id = a.question_id
		  WHERE a.attempt_id=$1 ORDER BY a.id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GradingItem{}
	for rows.Next() {
		var it GradingItem
		if err := rows.Scan(&it.AnswerID, &it.QuestionID, &it.QuestionType, &it.QuestionText,
			&it.AnswerText, &it.MarksObtained, &it.Graded); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ApplyMarks sets the supplied marks, then recomputes manual_score as the sum
// over ALL of the attempt's SAQ answers rather than just the ones touched in
// this call. The full recompute makes the operation idempotent and safe for
// incremental or concurrent grading. fully_assessed is set unconditionally:
// submitting marks means the instructor considers grading complete.
func (s *SQLStore) ApplyMarks(ctx context.Context, attemptID int64, marks map[int64]int) (Attempt, error) {
	if _, err := s.GetAttempt(ctx, attemptID); err != nil {
		return Attempt{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer func() { _ = tx.Rollback() }()

	for answerID, mark := range marks {
		_, err = tx.ExecContext(ctx,
			`UPDATE quiz_answers SET marks_obtained=$1, graded=$2 WHERE id=$3 AND attempt_id=$4`,
			mark, true, answerID, attemptID)
		if err != nil {
			return Attempt{}, err
		}
	}

	var manualScore int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(a.marks_obtained), 0)
		   FROM quiz_answers a
		   JOIN quiz_questions q ON q.id = a.question_id
		  WHERE a.attempt_id=$1 AND q.qtype=$2 AND a.marks_obtained IS NOT NULL`,
		attemptID, TypeSAQ).Scan(&manualScore)
	if err != nil {
		return Attempt{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE quiz_attempts SET manual_score=$1, fully_assessed=$2 WHERE id=$3`,
		manualScore, true, attemptID)
	if err != nil {
		return Attempt{}, err
	}

	data, _ := json.Marshal(map[string]any{"manual_score": manualScore, "marks_applied": len(marks)})
	if err := eventlog.Append(ctx, tx, eventlog.Event{
		Type:     eventlog.TypeAttemptGraded,
		Key:      strconv.FormatInt(attemptID, 10),
		DataJSON: string(data),
	}); err != nil {
		return Attempt{}, err
	}

	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

var _ Store = (*SQLStore)(nil)
