// Package placequiz defines the core domain types and service interfaces
// of the place-reading quiz. It has no external dependencies.
package placequiz

import (
	"context"
	"errors"
)

// DefaultTotal is the number of questions in a session when the caller
// does not ask for a positive count.
const DefaultTotal = 10

var (
	ErrNotFound     = errors.New("session not found")
	ErrMismatch     = errors.New("question_id does not match current question")
	ErrPlaceMissing = errors.New("place not found in catalog")
	ErrEmptyCatalog = errors.New("place catalog is empty")
)

type Place struct {
	ID         int64
	Name       string
	Reading    string
	Difficulty *int
}

// Record is the ephemeral server-side state of one quiz session.
type Record struct {
	QuestionIDs []int64 `json:"question_ids"`
	Progress
}

// NewRecord starts a session over the given question ids.
func NewRecord(ids []int64) Record {
	return Record{
		QuestionIDs: ids,
		Progress:    Progress{Total: len(ids)},
	}
}

// Current resolves the place id of the question the session is waiting on.
// It reports false once every question has been answered.
func Current(rec Record) (int64, bool) {
	if rec.Index < 0 || rec.Index >= rec.Total || rec.Index >= len(rec.QuestionIDs) {
		return 0, false
	}
	return rec.QuestionIDs[rec.Index], true
}

// Catalog is the read side of the place store.
type Catalog interface {
	SampleRandom(ctx context.Context, n int) ([]Place, error)
	FindByID(ctx context.Context, id int64) (Place, bool, error)
}

// SessionStore holds one Record per active session. Get reports false
// when the record does not exist or has expired.
type SessionStore interface {
	Put(ctx context.Context, id string, rec Record) error
	Get(ctx context.Context, id string) (Record, bool, error)
}
