// Package quiz runs quiz sessions: it creates them, serves the current
// question, scores answers and summarizes results. It is the only writer
// of session records.
package quiz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

// Notifier receives session events after a record has been written.
type Notifier interface {
	Publish(sessionID string, ev Event)
}

// Event is emitted after each scored answer.
type Event struct {
	Type     string             `json:"type"`
	Correct  bool               `json:"correct"`
	Progress placequiz.Progress `json:"progress"`
}

const (
	EventAnswered  = "answered"
	EventCompleted = "completed"
)

type Service struct {
	catalog  placequiz.Catalog
	sessions placequiz.SessionStore
	logger   *slog.Logger
	notifier Notifier
	locks    *keyedMutex
	newID    func() string
}

type Option func(*Service)

// WithNotifier publishes session events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(catalog placequiz.Catalog, sessions placequiz.SessionStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
		locks:    newKeyedMutex(),
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session identifies a freshly created quiz.
type Session struct {
	ID    string
	Total int
}

// Question is the place a session is currently asking about.
type Question struct {
	PlaceID    int64
	Name       string
	Difficulty *int
}

// Step is the outcome of NextQuestion. When Completed is set, Question is
// the zero value.
type Step struct {
	Completed bool
	Question  Question
	Progress  placequiz.Progress
}

// Answer is the outcome of SubmitAnswer. CorrectReading is only set for a
// wrong answer. When Completed is set nothing was scored.
type Answer struct {
	Completed      bool
	Correct        bool
	CorrectReading string
	Progress       placequiz.Progress
}

type Summary struct {
	SessionID string
	Total     int
	Correct   int
	Accuracy  float64
}

// Create samples total places and starts a session over them. A
// non-positive total means placequiz.DefaultTotal.
func (s *Service) Create(ctx context.Context, total int) (Session, error) {
	if total <= 0 {
		total = placequiz.DefaultTotal
	}

	places, err := s.catalog.SampleRandom(ctx, total)
	if err != nil {
		return Session{}, fmt.Errorf("sampling places: %w", err)
	}
	if len(places) == 0 {
		return Session{}, placequiz.ErrEmptyCatalog
	}

	ids := make([]int64, len(places))
	for i, p := range places {
		ids[i] = p.ID
	}

	id := s.newID()
	rec := placequiz.NewRecord(ids)
	if err := s.sessions.Put(ctx, id, rec); err != nil {
		return Session{}, fmt.Errorf("storing session: %w", err)
	}

	s.logger.Debug("session created", "session_id", id, "total", rec.Total)
	return Session{ID: id, Total: rec.Total}, nil
}

// NextQuestion reports the question the session is waiting on, or
// completion. It never changes the session.
func (s *Service) NextQuestion(ctx context.Context, sessionID string) (Step, error) {
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Step{}, err
	}

	placeID, ok := placequiz.Current(rec)
	if !ok {
		return Step{Completed: true, Progress: rec.Progress}, nil
	}

	place, err := s.place(ctx, placeID)
	if err != nil {
		return Step{}, err
	}

	return Step{
		Question: Question{
			PlaceID:    place.ID,
			Name:       place.Name,
			Difficulty: place.Difficulty,
		},
		Progress: rec.Progress,
	}, nil
}

// SubmitAnswer scores answer against the session's current question and
// moves the session on by one. A questionID other than the current one is
// rejected with placequiz.ErrMismatch and leaves the session untouched.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, questionID int64, answer string) (Answer, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Answer{}, err
	}

	placeID, ok := placequiz.Current(rec)
	if !ok {
		return Answer{Completed: true, Progress: rec.Progress}, nil
	}
	if placeID != questionID {
		return Answer{}, placequiz.ErrMismatch
	}

	place, err := s.place(ctx, placeID)
	if err != nil {
		return Answer{}, err
	}

	correct := placequiz.Verify(answer, place.Reading)
	rec.Progress = rec.Advance(correct)
	if err := s.sessions.Put(ctx, sessionID, rec); err != nil {
		return Answer{}, fmt.Errorf("storing session: %w", err)
	}

	s.publish(sessionID, correct, rec.Progress)

	out := Answer{Correct: correct, Progress: rec.Progress}
	if !correct {
		out.CorrectReading = place.Reading
	}
	return out, nil
}

// Result summarizes the score so far. It may be called before the last
// question is answered.
func (s *Service) Result(ctx context.Context, sessionID string) (Summary, error) {
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		SessionID: sessionID,
		Total:     rec.Total,
		Correct:   rec.Correct,
		Accuracy:  rec.Accuracy(),
	}, nil
}

func (s *Service) load(ctx context.Context, sessionID string) (placequiz.Record, error) {
	rec, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return placequiz.Record{}, err
	}
	if !ok {
		return placequiz.Record{}, placequiz.ErrNotFound
	}
	return rec, nil
}

func (s *Service) place(ctx context.Context, id int64) (placequiz.Place, error) {
	place, ok, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return placequiz.Place{}, fmt.Errorf("loading place %d: %w", id, err)
	}
	if !ok {
		return placequiz.Place{}, fmt.Errorf("place %d: %w", id, placequiz.ErrPlaceMissing)
	}
	return place, nil
}

func (s *Service) publish(sessionID string, correct bool, p placequiz.Progress) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(sessionID, Event{Type: EventAnswered, Correct: correct, Progress: p})
	if p.Completed() {
		s.notifier.Publish(sessionID, Event{Type: EventCompleted, Progress: p})
	}
}
