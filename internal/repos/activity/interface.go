package activity

import (
	"database/sql"
	"time"
)

// Entry is one audit-log line: causer did something to subject.
type Entry struct {
	ID          int64
	SubjectID   uint64
	CauserID    uint64
	Description string
	CreatedAt   time.Time
}

type Activity interface {
	Insert(tx *sql.Tx, e Entry) error
	ListBySubject(tx *sql.Tx, subjectID uint64) ([]Entry, error)
}
