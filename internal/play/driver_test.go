package play_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/catalog"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/database"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/migrations"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/play"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/quiz"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/server"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/sessionstore"
)

// liveAPI serves the real handler stack over HTTP and returns a client
// for it along with the catalog to look up answers.
func liveAPI(t *testing.T) (*play.Client, *catalog.Store) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	places := catalog.New(db)
	if err := places.SeedDemo(ctx, slog.Default()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := quiz.NewService(places, sessionstore.NewMemoryStore(time.Hour), slog.Default())
	srv := httptest.NewServer(server.NewHandler(slog.Default(), server.Deps{Quiz: svc, Broker: server.NewBroker()}))
	t.Cleanup(srv.Close)

	return play.NewClient(srv.URL, srv.Client()), places
}

func readingOf(t *testing.T, places *catalog.Store, id int64) string {
	t.Helper()
	p, ok, err := places.FindByID(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("place %d: %v %v", id, ok, err)
	}
	return p.Reading
}

func TestDriverPlaysWholeQuiz(t *testing.T) {
	ctx := context.Background()
	api, places := liveAPI(t)
	d := play.NewDriver(api)

	s, err := d.Start(ctx, 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Phase != play.PhaseQuestion || s.Total != 3 || s.Position() != 1 {
		t.Fatalf("after start: %+v", s)
	}

	for i := 0; i < 3; i++ {
		answer := readingOf(t, places, s.QuestionID)
		if i == 1 {
			answer = "ちがう"
		}
		s, err = d.Submit(ctx, answer)
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if s.Phase != play.PhaseAnswered || s.Index != i+1 {
			t.Fatalf("after submit %d: %+v", i, s)
		}
		if i == 1 && (s.AnswerCorrect || s.CorrectReading == "") {
			t.Fatalf("wrong answer should reveal reading: %+v", s)
		}

		s, err = d.Next(ctx)
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
	}

	if s.Phase != play.PhaseCompleted || s.Index != 3 || s.Progress.Correct != 2 {
		t.Fatalf("final state: %+v", s)
	}

	sum, err := d.Result(ctx)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if sum.CorrectAnswers != 2 || sum.TotalQuestions != 3 || sum.Accuracy != 66.67 {
		t.Fatalf("summary: %+v", sum)
	}

	// No path from completed back to a question without a reset.
	if _, err := d.Submit(ctx, "x"); !errors.Is(err, play.ErrInvalidTransition) {
		t.Fatalf("submit after completion: err = %v", err)
	}
	if _, err := d.Start(ctx, 3); !errors.Is(err, play.ErrInvalidTransition) {
		t.Fatalf("start after completion: err = %v", err)
	}
	d.Reset()
	if _, err := d.Start(ctx, 3); err != nil {
		t.Fatalf("start after reset: %v", err)
	}
}

func TestDriverRejectsOutOfOrderActions(t *testing.T) {
	ctx := context.Background()
	api, _ := liveAPI(t)
	d := play.NewDriver(api)

	if _, err := d.Submit(ctx, "x"); !errors.Is(err, play.ErrInvalidTransition) {
		t.Fatalf("submit while idle: err = %v", err)
	}
	if _, err := d.Next(ctx); !errors.Is(err, play.ErrInvalidTransition) {
		t.Fatalf("next while idle: err = %v", err)
	}
	if _, err := d.Start(ctx, 2); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := d.Next(ctx); !errors.Is(err, play.ErrInvalidTransition) {
		t.Fatalf("next before answering: err = %v", err)
	}
	if s := d.State(); s.Phase != play.PhaseQuestion || s.Index != 0 {
		t.Fatalf("state moved after rejected action: %+v", s)
	}
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	api, _ := liveAPI(t)

	_, err := api.NextQuestion(ctx, "missing")
	if !errors.Is(err, placequiz.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var apiErr *play.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("err = %#v, want APIError 404", err)
	}

	sess, err := api.StartSession(ctx, 2)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	next, _ := api.NextQuestion(ctx, sess.SessionID)
	if _, err := api.SubmitAnswer(ctx, sess.SessionID, next.QuestionID+100000, "x"); !errors.Is(err, placequiz.ErrMismatch) {
		t.Fatalf("err = %v, want ErrMismatch", err)
	}
}

func TestDriverResync(t *testing.T) {
	ctx := context.Background()
	api, places := liveAPI(t)
	d := play.NewDriver(api)

	s, err := d.Start(ctx, 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Another tab answers the question behind the driver's back.
	if _, err := api.SubmitAnswer(ctx, s.SessionID, s.QuestionID, readingOf(t, places, s.QuestionID)); err != nil {
		t.Fatalf("side answer: %v", err)
	}

	if _, err := d.Submit(ctx, "x"); !errors.Is(err, placequiz.ErrMismatch) {
		t.Fatalf("stale submit: err = %v, want ErrMismatch", err)
	}

	s, err = d.Resync(ctx)
	if err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if s.Phase != play.PhaseQuestion || s.Position() != 2 || s.Progress.Correct != 1 {
		t.Fatalf("after resync: %+v", s)
	}
}

// blockingAPI holds StartSession until release is closed.
type blockingAPI struct {
	play.API
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAPI) StartSession(ctx context.Context, total int) (play.NewSession, error) {
	close(b.entered)
	<-b.release
	return play.NewSession{SessionID: "s", Total: total}, nil
}

func (b *blockingAPI) NextQuestion(ctx context.Context, sessionID string) (play.Next, error) {
	return play.Next{QuestionID: 1, Name: "札幌市", Current: 1, Total: 1}, nil
}

func TestDriverBusyAndSuperseded(t *testing.T) {
	ctx := context.Background()
	api := &blockingAPI{entered: make(chan struct{}), release: make(chan struct{})}
	d := play.NewDriver(api)

	done := make(chan error, 1)
	go func() {
		_, err := d.Start(ctx, 1)
		done <- err
	}()
	<-api.entered

	if _, err := d.Start(ctx, 1); !errors.Is(err, play.ErrBusy) {
		t.Fatalf("second start: err = %v, want ErrBusy", err)
	}

	d.Reset()
	close(api.release)

	if err := <-done; !errors.Is(err, play.ErrSuperseded) {
		t.Fatalf("first start: err = %v, want ErrSuperseded", err)
	}
	if s := d.State(); s.Phase != play.PhaseIdle {
		t.Fatalf("stale response applied: %+v", s)
	}
}

// rewindingAPI plays a one-question session, then claims the question is
// open again.
type rewindingAPI struct {
	play.API
	answered bool
}

func (r *rewindingAPI) StartSession(context.Context, int) (play.NewSession, error) {
	return play.NewSession{SessionID: "s", Total: 1}, nil
}

func (r *rewindingAPI) NextQuestion(context.Context, string) (play.Next, error) {
	if r.answered {
		r.answered = false
		return play.Next{Completed: true, Current: 1, Total: 1}, nil
	}
	return play.Next{QuestionID: 1, Name: "札幌市", Current: 1, Total: 1}, nil
}

func (r *rewindingAPI) SubmitAnswer(context.Context, string, int64, string) (play.Verdict, error) {
	r.answered = true
	return play.Verdict{Correct: true, Current: 1, Total: 1}, nil
}

func (r *rewindingAPI) Result(_ context.Context, sessionID string) (play.Summary, error) {
	return play.Summary{SessionID: sessionID, TotalQuestions: 1, CorrectAnswers: 1, Accuracy: 100}, nil
}

func TestDriverResyncKeepsCompletion(t *testing.T) {
	ctx := context.Background()
	d := play.NewDriver(&rewindingAPI{})

	if _, err := d.Start(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := d.Submit(ctx, "さっぽろし"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if s, err := d.Next(ctx); err != nil || s.Phase != play.PhaseCompleted {
		t.Fatalf("next: %+v %v", s, err)
	}

	s, err := d.Resync(ctx)
	if !errors.Is(err, play.ErrOutOfSync) {
		t.Fatalf("resync: err = %v, want ErrOutOfSync", err)
	}
	if s.Phase != play.PhaseCompleted || d.State().Phase != play.PhaseCompleted {
		t.Fatalf("completed attempt reopened: %+v", d.State())
	}
}
