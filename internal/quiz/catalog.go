package quiz

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Course struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Student struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	UserID   *int64 `json:"user_id,omitempty"`
}

// Catalog covers the roster entities around the quiz lifecycle: courses,
// topics and students.
type Catalog interface {
	CreateCourse(ctx context.Context, name string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	CreateTopic(ctx context.Context, title string, courseID *int64) (Topic, error)
	ListTopics(ctx context.Context) ([]Topic, error)
	CreateStudent(ctx context.Context, st Student) (Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
}

func (s *SQLStore) CreateCourse(ctx context.Context, name string) (Course, error) {
	now := time.Now()
	c := Course{Name: name, CreatedAt: now}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO courses (name, created_at) VALUES ($1,$2) RETURNING id`,
		name, now.Unix()).Scan(&c.ID)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateTopic(ctx context.Context, title string, courseID *int64) (Topic, error) {
	if courseID != nil {
		var one int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id=$1`, *courseID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return Topic{}, &NotFoundError{Kind: "course", ID: *courseID}
		}
		if err != nil {
			return Topic{}, err
		}
	}
	now := time.Now()
	t := Topic{CourseID: courseID, Title: title, CreatedAt: now}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO topics (course_id, title, created_at) VALUES ($1,$2,$3) RETURNING id`,
		courseID, title, now.Unix()).Scan(&t.ID)
	if err != nil {
		return Topic{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTopics(ctx context.Context) ([]Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, course_id, title, created_at FROM topics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Topic{}
	for rows.Next() {
		var t Topic
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.CourseID, &t.Title, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateStudent(ctx context.Context, st Student) (Student, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO students (full_name, email, user_id) VALUES ($1,$2,$3) RETURNING id`,
		st.FullName, st.Email, st.UserID).Scan(&st.ID)
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

func (s *SQLStore) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, full_name, email, user_id FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.FullName, &st.Email, &st.UserID); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

var _ Catalog = (*SQLStore)(nil)
