package auth

import "context"

type ctxKey string

const ctxKeyStudentID ctxKey = "student_id"

func WithStudentID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKeyStudentID, id)
}

// StudentIDFromContext returns the caller's student id, 0 when the caller is
// not a student.
func StudentIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(ctxKeyStudentID).(int64); ok {
		return v
	}
	return 0
}
