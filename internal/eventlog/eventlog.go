package eventlog

import (
	"context"
	"database/sql"
	"time"
)

// Event types appended by the quiz engine.
const (
	TypeQuizAssigned     = "QuizAssigned"
	TypeAttemptSubmitted = "AttemptSubmitted"
	TypeAttemptGraded    = "AttemptGraded"
)

type Event struct {
	ID        int64
	Type      string
	Key       string // natural key: attempt or quiz id
	DataJSON  string
	CreatedAt int64
}

// Execer is satisfied by *sql.DB and *sql.Tx so events can be appended inside
// the transaction that produced them.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func Append(ctx context.Context, db Execer, e Event) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}
