package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/quiz"
)

// QuizService is the session API the handlers drive.
type QuizService interface {
	Create(ctx context.Context, total int) (quiz.Session, error)
	NextQuestion(ctx context.Context, sessionID string) (quiz.Step, error)
	SubmitAnswer(ctx context.Context, sessionID string, questionID int64, answer string) (quiz.Answer, error)
	Result(ctx context.Context, sessionID string) (quiz.Summary, error)
}

// CreateSessionRequest takes total as a number or a numeric string. A
// missing, malformed or non-positive total means the default count.
type CreateSessionRequest struct {
	Total any `json:"total,omitempty" description:"Number of questions. Numeric strings are accepted; anything else means 10."`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Total     int    `json:"total"`
}

func handleCreateSession(logger *slog.Logger, svc QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		raw := req.Total
		if raw == nil && r.URL.Query().Has("total") {
			raw = r.URL.Query().Get("total")
		}
		total := coerceInt(raw)

		sess, err := svc.Create(r.Context(), total)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, CreateSessionResponse{
			SessionID: sess.ID,
			Total:     sess.Total,
		})
	}
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
