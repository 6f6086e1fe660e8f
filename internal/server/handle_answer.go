package server

import (
	"errors"
	"net/http"

	"github.com/gamehall/trivianight/internal/docstore"
	"github.com/gamehall/trivianight/internal/game"
	"github.com/gamehall/trivianight/internal/trivia"
)

type AnswerRequest struct {
	PlayerID   string `json:"playerId"`
	RoundID    string `json:"roundId"`
	AnswerText string `json:"answerText"`
}

func handleAnswer(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerID == "" || req.RoundID == "" {
			writeError(w, http.StatusBadRequest, "playerId and roundId are required")
			return
		}

		err := svc.SubmitAnswer(r.Context(), sessionID, req.PlayerID, req.RoundID, req.AnswerText)
		if errors.Is(err, trivia.ErrRoundMismatch) {
			writeError(w, http.StatusConflict, "round is not open for answers")
			return
		}
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
