package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

// SQLiteStore keeps records as JSONB documents in the quiz_sessions table.
// Rows past expires_at read as absent until Purge removes them.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSQLiteStore(db *sql.DB, ttl time.Duration) *SQLiteStore {
	return &SQLiteStore{db: db, ttl: ttl}
}

var _ placequiz.SessionStore = (*SQLiteStore)(nil)

func (s *SQLiteStore) Put(ctx context.Context, id string, rec placequiz.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO quiz_sessions (id, data, expires_at) VALUES (?, jsonb(?), ?)`,
		key(id), string(data), now().Add(s.ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing session %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (placequiz.Record, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM quiz_sessions WHERE id = ? AND expires_at > ?`,
		key(id), now().UnixMilli(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return placequiz.Record{}, false, nil
	}
	if err != nil {
		return placequiz.Record{}, false, fmt.Errorf("reading session %s: %w", id, err)
	}

	var rec placequiz.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return placequiz.Record{}, false, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return rec, true, nil
}

// Purge deletes expired rows and reports how many went.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM quiz_sessions WHERE expires_at <= ?`, now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return res.RowsAffected()
}
