package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/gamehall/trivianight/internal/docstore"
	"github.com/gamehall/trivianight/internal/game"
)

func addRoutes(r chi.Router, logger *slog.Logger, svc *game.Service, store *docstore.Store, db *sql.DB, opts Options) {
	gate := newPlayGate(store, opts.PlayKeyHash)
	sid := opts.SessionID

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Trivia Night API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	// Admission: unlock and me are reachable without a session.
	r.Post("/api/auth/unlock", handleUnlock(gate))
	r.Get("/api/auth/me", handleAuthMe(gate))

	// Player and host routes, behind the play-key gate.
	r.Group(func(r chi.Router) {
		r.Use(gate.middleware)

		r.Post("/api/join", handleJoin(svc, sid))
		r.Get("/api/state", handleState(svc, sid))
		r.Get("/api/player/state", handlePlayerState(svc, sid))
		r.Get("/api/display", handleDisplay(svc, sid))
		r.Post("/api/answer", handleAnswer(svc, sid))
		r.Get("/api/events", handleEvents(logger, svc, sid))

		r.Get("/api/admin/questions", handleListQuestions(svc, sid))
		r.Post("/api/admin/questions", handleAddQuestion(svc, sid))
		r.Post("/api/admin/round/begin", handleBeginRound(svc, sid))
		r.Post("/api/admin/round/end", handleEndRound(svc, sid))
		r.Get("/api/admin/worksheet", handleWorksheet(svc, sid))
		r.Post("/api/admin/scores", handleApplyScores(svc, sid))
		r.Put("/api/admin/timer", handleSetTimer(svc, sid))
		r.Post("/api/admin/reset", handleReset(svc, sid))

		r.Get("/ws/state", handleWSState(logger, svc, sid))
	})
}
