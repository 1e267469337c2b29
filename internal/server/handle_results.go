package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ResultParams struct {
	SessionID string `path:"sessionID"`
}

type ResultResponse struct {
	SessionID      string  `json:"session_id"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
}

func handleResult(logger *slog.Logger, svc QuizService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Result(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, ResultResponse{
			SessionID:      sum.SessionID,
			TotalQuestions: sum.Total,
			CorrectAnswers: sum.Correct,
			Accuracy:       sum.Accuracy,
		})
	}
}
