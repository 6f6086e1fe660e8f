package server

import (
	"errors"
	"net/http"

	"github.com/gamehall/trivianight/internal/game"
	"github.com/gamehall/trivianight/internal/trivia"
)

type RoundView struct {
	ID           string `json:"id"`
	Index        int    `json:"index"`
	QuestionText string `json:"questionText"`
	CreatedAt    int64  `json:"createdAt"`
	ClosedAt     *int64 `json:"closedAt"`
}

// handleBeginRound opens the next round on the oldest bank entry.
// An empty bank is the one refusal: 409, nothing changes.
func handleBeginRound(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := svc.BeginRound(r.Context(), sessionID)
		if errors.Is(err, trivia.ErrEmptyQuestionBank) {
			writeError(w, http.StatusConflict, "question bank is empty; add a question first")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, RoundView{
			ID:           entry.ID,
			Index:        entry.Round.Index,
			QuestionText: entry.Round.QuestionText,
			CreatedAt:    entry.Round.CreatedAt,
			ClosedAt:     entry.Round.ClosedAt,
		})
	}
}

func handleEndRound(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.EndRound(r.Context(), sessionID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
