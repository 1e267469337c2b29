package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readJSON decodes the request body into v. An empty body leaves v alone.
func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps quiz errors onto HTTP statuses. Anything it does
// not recognize is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, placequiz.ErrNotFound):
		writeError(w, http.StatusNotFound, placequiz.ErrNotFound.Error())
	case errors.Is(err, placequiz.ErrMismatch):
		writeError(w, http.StatusUnprocessableEntity, placequiz.ErrMismatch.Error())
	case errors.Is(err, placequiz.ErrEmptyCatalog):
		writeError(w, http.StatusServiceUnavailable, "no places available")
	default:
		logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", requestID(r),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
