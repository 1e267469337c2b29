// Command quizplay plays a quiz against a running server from the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/play"
)

type config struct {
	APIURL  string        `env:"QUIZ_API_URL" envDefault:"http://localhost:8080"`
	Total   int           `env:"QUIZ_TOTAL" envDefault:"10"`
	Timeout time.Duration `env:"QUIZ_TIMEOUT" envDefault:"10s"`
}

// quitCommand abandons the attempt when typed as an answer.
const quitCommand = ":q"

var errQuit = errors.New("quit")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := env.ParseAs[config]()
	if err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	client := play.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout})
	d := play.NewDriver(client)

	sum, err := playQuiz(ctx, d, cfg.Total, stdin, stdout)
	if errors.Is(err, errQuit) {
		d.Reset()
		fmt.Fprintln(stdout, "bye")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\n結果: %d / %d 問正解 (正答率 %.2f%%)\n",
		sum.CorrectAnswers, sum.TotalQuestions, sum.Accuracy)
	return nil
}

// playQuiz runs one attempt to completion, reading one answer per line.
// It returns errQuit when input ends or the user types the quit command.
func playQuiz(ctx context.Context, d *play.Driver, total int, in io.Reader, out io.Writer) (play.Summary, error) {
	st, err := d.Start(ctx, total)
	if err != nil {
		return play.Summary{}, fmt.Errorf("starting session: %w", err)
	}

	lines := bufio.NewScanner(in)
	for st.Phase != play.PhaseCompleted {
		fmt.Fprintf(out, "[%d/%d] %s の読みは? ", st.Position(), st.Total, st.PlaceName)
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return play.Summary{}, fmt.Errorf("reading answer: %w", err)
			}
			return play.Summary{}, errQuit
		}
		answer := lines.Text()
		if strings.TrimSpace(answer) == quitCommand {
			return play.Summary{}, errQuit
		}

		st, err = d.Submit(ctx, answer)
		if errors.Is(err, placequiz.ErrMismatch) || errors.Is(err, play.ErrOutOfSync) {
			fmt.Fprintln(out, "セッションが進んでいたため再同期します")
			if st, err = d.Resync(ctx); err != nil {
				return play.Summary{}, fmt.Errorf("resyncing: %w", err)
			}
			continue
		}
		if err != nil {
			return play.Summary{}, fmt.Errorf("submitting answer: %w", err)
		}

		if st.AnswerCorrect {
			fmt.Fprintln(out, "正解!")
		} else {
			fmt.Fprintf(out, "不正解 (正しい読み: %s)\n", st.CorrectReading)
		}

		if st, err = d.Next(ctx); err != nil {
			return play.Summary{}, fmt.Errorf("loading next question: %w", err)
		}
	}

	sum, err := d.Result(ctx)
	if err != nil {
		return play.Summary{}, fmt.Errorf("loading result: %w", err)
	}
	return sum, nil
}
