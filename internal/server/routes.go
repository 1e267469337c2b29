package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Place Quiz API", "/openapi.json", "/docs"))
	if deps.Health != nil {
		r.Mount("/healthz", deps.Health)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", handleCreateSession(logger, deps.Quiz))
		r.Get("/sessions/{sessionID}/events", handleEvents(logger, deps.Quiz, deps.Broker))
		r.Get("/questions/next", handleNextQuestion(logger, deps.Quiz))
		r.Post("/questions/{id}/answer", handleAnswer(logger, deps.Quiz))
		r.Get("/results/{sessionID}", handleResult(logger, deps.Quiz))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
