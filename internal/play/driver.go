package play

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrBusy is returned when an action starts while another is still
	// waiting on the server.
	ErrBusy = errors.New("another request is in flight")
	// ErrSuperseded is returned when the attempt was reset while a request
	// was in flight. The response has been dropped.
	ErrSuperseded = errors.New("response discarded after reset")
)

// Driver runs one quiz attempt against the API. Every action performs its
// server call first and only then applies the matching transition, so the
// local state never runs ahead of the session. At most one action is in
// flight at a time.
type Driver struct {
	api API

	mu    sync.Mutex
	state State
	busy  bool
	epoch uint64
}

func NewDriver(api API) *Driver {
	return &Driver{api: api, state: Idle()}
}

// State returns a copy of the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start creates a session of total questions and shows the first one.
func (d *Driver) Start(ctx context.Context, total int) (State, error) {
	s, epoch, err := d.begin("start", PhaseIdle)
	if err != nil {
		return s, err
	}

	sess, err := d.api.StartSession(ctx, total)
	if err != nil {
		return d.finish(epoch, nil, err)
	}
	next, err := d.api.NextQuestion(ctx, sess.SessionID)
	if err != nil {
		return d.finish(epoch, nil, err)
	}
	if next.Completed {
		return d.finish(epoch, nil, fmt.Errorf("%w: new session reported completion", ErrOutOfSync))
	}

	return d.finish(epoch, func(s State) (State, error) {
		return Start(s, Started{
			SessionID:  sess.SessionID,
			Total:      next.Total,
			QuestionID: next.QuestionID,
			PlaceName:  next.Name,
			Position:   next.Current,
		})
	}, nil)
}

// Submit sends an answer for the question on screen.
func (d *Driver) Submit(ctx context.Context, answer string) (State, error) {
	s, epoch, err := d.begin("submit", PhaseQuestion)
	if err != nil {
		return s, err
	}

	v, err := d.api.SubmitAnswer(ctx, s.SessionID, s.QuestionID, answer)
	if err != nil {
		return d.finish(epoch, nil, err)
	}
	if v.Completed {
		return d.finish(epoch, nil, fmt.Errorf("%w: session already completed", ErrOutOfSync))
	}

	return d.finish(epoch, func(s State) (State, error) {
		return Answer(s, Answered{Correct: v.Correct, CorrectReading: v.CorrectReading})
	}, nil)
}

// Next moves past a verdict to the following question or to completion.
func (d *Driver) Next(ctx context.Context) (State, error) {
	s, epoch, err := d.begin("next", PhaseAnswered)
	if err != nil {
		return s, err
	}

	next, err := d.api.NextQuestion(ctx, s.SessionID)
	if err != nil {
		return d.finish(epoch, nil, err)
	}

	return d.finish(epoch, func(s State) (State, error) {
		if next.Completed {
			return Complete(s, Finished{Answered: next.Current, Total: next.Total})
		}
		return Advance(s, Presented{
			QuestionID: next.QuestionID,
			PlaceName:  next.Name,
			Position:   next.Current,
			Total:      next.Total,
		})
	}, nil)
}

// Resync rebuilds the state from the server after ErrMismatch or
// ErrOutOfSync. It reads the session and never writes to it. A completed
// attempt stays completed.
func (d *Driver) Resync(ctx context.Context) (State, error) {
	s, epoch, err := d.begin("resync", PhaseQuestion, PhaseAnswered, PhaseCompleted)
	if err != nil {
		return s, err
	}

	sum, err := d.api.Result(ctx, s.SessionID)
	if err != nil {
		return d.finish(epoch, nil, err)
	}
	next, err := d.api.NextQuestion(ctx, s.SessionID)
	if err != nil {
		return d.finish(epoch, nil, err)
	}

	return d.finish(epoch, func(s State) (State, error) {
		if s.Phase == PhaseCompleted && !next.Completed {
			return s, fmt.Errorf("%w: completed session reported question %d/%d",
				ErrOutOfSync, next.Current, next.Total)
		}
		return restore(s.SessionID, sum, next), nil
	}, nil)
}

// Result fetches the score of the current session.
func (d *Driver) Result(ctx context.Context) (Summary, error) {
	s := d.State()
	if s.Phase == PhaseIdle {
		return Summary{}, invalid("result", s.Phase)
	}
	return d.api.Result(ctx, s.SessionID)
}

// Reset abandons the attempt. A request still in flight has its response
// dropped.
func (d *Driver) Reset() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Reset()
	d.busy = false
	d.epoch++
	return d.state
}

// begin claims the driver for one action after checking the phase.
func (d *Driver) begin(op string, allowed ...Phase) (State, uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.busy {
		return d.state, 0, ErrBusy
	}
	ok := false
	for _, p := range allowed {
		if d.state.Phase == p {
			ok = true
			break
		}
	}
	if !ok {
		return d.state, 0, invalid(op, d.state.Phase)
	}

	d.busy = true
	return d.state, d.epoch, nil
}

// finish releases the driver and applies the transition, unless the
// attempt was reset in the meantime.
func (d *Driver) finish(epoch uint64, apply func(State) (State, error), callErr error) (State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if epoch != d.epoch {
		return d.state, ErrSuperseded
	}
	d.busy = false

	if callErr != nil {
		return d.state, callErr
	}
	next, err := apply(d.state)
	if err != nil {
		return d.state, err
	}
	d.state = next
	return next, nil
}

// restore builds the state a fresh client would reach for this session.
func restore(sessionID string, sum Summary, next Next) State {
	s := State{SessionID: sessionID}
	s.Total = sum.TotalQuestions
	s.Progress.Correct = sum.CorrectAnswers
	if next.Completed {
		s.Phase = PhaseCompleted
		s.Index = next.Current
		return s
	}
	s.Phase = PhaseQuestion
	s.Index = next.Current - 1
	s.QuestionID = next.QuestionID
	s.PlaceName = next.Name
	return s
}
