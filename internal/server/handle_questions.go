package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

type NextQuestionParams struct {
	SessionID string `query:"session_id" required:"true"`
}

type QuestionResponse struct {
	QuestionID int64  `json:"question_id"`
	SessionID  string `json:"session_id"`
	Name       string `json:"name"`
	Difficulty *int   `json:"difficulty"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
}

// CompletedResponse is returned by next-question and answer once every
// question has been answered. Current is the number answered.
type CompletedResponse struct {
	Completed bool `json:"completed"`
	Current   int  `json:"current"`
	Total     int  `json:"total"`
}

// AnswerRequest carries the answer as typed. Non-string answers are
// scored as their text form.
type AnswerRequest struct {
	SessionID string `json:"session_id"`
	Answer    any    `json:"answer"`
}

type AnswerParams struct {
	ID int64 `path:"id"`
	AnswerRequest
}

type AnswerResponse struct {
	Correct        bool   `json:"correct"`
	CorrectReading string `json:"correct_reading,omitempty"`
}

func completedResponse(p placequiz.Progress) CompletedResponse {
	return CompletedResponse{Completed: true, Current: p.Index, Total: p.Total}
}

func handleNextQuestion(logger *slog.Logger, svc QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")

		step, err := svc.NextQuestion(r.Context(), sessionID)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		if step.Completed {
			writeJSON(w, http.StatusOK, completedResponse(step.Progress))
			return
		}

		writeJSON(w, http.StatusOK, QuestionResponse{
			QuestionID: step.Question.PlaceID,
			SessionID:  sessionID,
			Name:       step.Question.Name,
			Difficulty: step.Question.Difficulty,
			Current:    step.Progress.Position(),
			Total:      step.Progress.Total,
		})
	}
}

func handleAnswer(logger *slog.Logger, svc QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid question id")
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SessionID == "" {
			req.SessionID = r.URL.Query().Get("session_id")
		}
		answer := strings.TrimSpace(coerceString(req.Answer))

		ans, err := svc.SubmitAnswer(r.Context(), req.SessionID, questionID, answer)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		if ans.Completed {
			writeJSON(w, http.StatusOK, completedResponse(ans.Progress))
			return
		}

		writeJSON(w, http.StatusOK, AnswerResponse{
			Correct:        ans.Correct,
			CorrectReading: ans.CorrectReading,
		})
	}
}
