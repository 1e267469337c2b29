// Package catalog is the libSQL-backed place store the quiz draws its
// questions from.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

// Store implements placequiz.Catalog over the places table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ placequiz.Catalog = (*Store)(nil)

// SampleRandom returns up to n distinct places in random order.
func (s *Store) SampleRandom(ctx context.Context, n int) ([]placequiz.Place, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, reading, difficulty
		FROM places
		ORDER BY RANDOM()
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("sampling places: %w", err)
	}
	defer rows.Close()

	var places []placequiz.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func (s *Store) FindByID(ctx context.Context, id int64) (placequiz.Place, bool, error) {
	p, err := scanPlace(s.db.QueryRowContext(ctx, `
		SELECT id, name, reading, difficulty FROM places WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return placequiz.Place{}, false, nil
	}
	if err != nil {
		return placequiz.Place{}, false, err
	}
	return p, true, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM places`).Scan(&n)
	return n, err
}

// Upsert inserts places keyed by name, replacing the reading and
// difficulty of names that already exist.
func (s *Store) Upsert(ctx context.Context, places []placequiz.Place) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO places (name, reading, difficulty) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			reading = excluded.reading,
			difficulty = excluded.difficulty,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range places {
		if _, err := stmt.ExecContext(ctx, p.Name, p.Reading, p.Difficulty); err != nil {
			return fmt.Errorf("upserting %q: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlace(row scanner) (placequiz.Place, error) {
	var p placequiz.Place
	var difficulty sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Reading, &difficulty); err != nil {
		return p, err
	}
	if difficulty.Valid {
		d := int(difficulty.Int64)
		p.Difficulty = &d
	}
	return p, nil
}
