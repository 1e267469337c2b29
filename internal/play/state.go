// Package play is the client side of a quiz: a phase state machine that
// mirrors the server session, an HTTP client for the quiz API, and a
// Driver that pairs each server call with its transition.
package play

import (
	"errors"
	"fmt"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseQuestion  Phase = "question"
	PhaseAnswered  Phase = "answered"
	PhaseCompleted Phase = "completed"
)

var (
	// ErrInvalidTransition is returned when a transition is attempted from
	// a phase that does not allow it.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrOutOfSync is returned when a server response disagrees with the
	// local position.
	ErrOutOfSync = errors.New("client out of sync with session")
)

// State is the client's view of one quiz attempt. Progress always equals
// the server record: in the question phase Index is the question on
// screen, in the answered phase it has already moved past it.
type State struct {
	Phase     Phase
	SessionID string
	placequiz.Progress

	QuestionID int64
	PlaceName  string

	AnswerCorrect  bool
	CorrectReading string
}

// Idle is the state before a session exists.
func Idle() State {
	return State{Phase: PhaseIdle}
}

// Started is the first question of a new session.
type Started struct {
	SessionID  string
	Total      int
	QuestionID int64
	PlaceName  string
	Position   int
}

// Answered is the server's verdict on the question on screen.
type Answered struct {
	Correct        bool
	CorrectReading string
}

// Presented is the next question after an answer.
type Presented struct {
	QuestionID int64
	PlaceName  string
	Position   int
	Total      int
}

// Finished is the server's completion marker.
type Finished struct {
	Answered int
	Total    int
}

func invalid(op string, from Phase) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, from)
}

// Start enters the first question. Only an idle client can start.
func Start(s State, p Started) (State, error) {
	if s.Phase != PhaseIdle {
		return s, invalid("start", s.Phase)
	}
	if p.Position < 1 || p.Position > p.Total {
		return s, fmt.Errorf("%w: position %d of %d", ErrOutOfSync, p.Position, p.Total)
	}
	return State{
		Phase:      PhaseQuestion,
		SessionID:  p.SessionID,
		Progress:   placequiz.Progress{Total: p.Total, Index: p.Position - 1},
		QuestionID: p.QuestionID,
		PlaceName:  p.PlaceName,
	}, nil
}

// Answer records the verdict for the question on screen.
func Answer(s State, p Answered) (State, error) {
	if s.Phase != PhaseQuestion {
		return s, invalid("answer", s.Phase)
	}
	next := s
	next.Phase = PhaseAnswered
	next.Progress = s.Advance(p.Correct)
	next.AnswerCorrect = p.Correct
	next.CorrectReading = p.CorrectReading
	return next, nil
}

// Advance moves from a shown verdict to the next question. The server's
// position must match the number of answers the client has seen.
func Advance(s State, p Presented) (State, error) {
	if s.Phase != PhaseAnswered {
		return s, invalid("advance", s.Phase)
	}
	if s.Completed() || p.Position != s.Position() || p.Total != s.Total {
		return s, fmt.Errorf("%w: server at %d/%d, client expected %d/%d",
			ErrOutOfSync, p.Position, p.Total, s.Position(), s.Total)
	}
	next := s
	next.Phase = PhaseQuestion
	next.QuestionID = p.QuestionID
	next.PlaceName = p.PlaceName
	next.AnswerCorrect = false
	next.CorrectReading = ""
	return next, nil
}

// Complete ends the attempt after the last verdict.
func Complete(s State, p Finished) (State, error) {
	if s.Phase != PhaseAnswered {
		return s, invalid("complete", s.Phase)
	}
	if p.Answered != s.Index || p.Total != s.Total || !s.Completed() {
		return s, fmt.Errorf("%w: server finished %d/%d, client answered %d/%d",
			ErrOutOfSync, p.Answered, p.Total, s.Index, s.Total)
	}
	return State{
		Phase:     PhaseCompleted,
		SessionID: s.SessionID,
		Progress:  s.Progress,
	}, nil
}

// Reset abandons the attempt. It is legal from every phase.
func Reset() State {
	return Idle()
}
