package server

import (
	"net/http"

	"github.com/gamehall/trivianight/internal/game"
)

type ApplyScoresRequest struct {
	CorrectPlayerIDs []string `json:"correctPlayerIds"`
}

// handleApplyScores awards a point to each listed player and reveals
// the round's answers. Submitting the same list twice awards twice;
// the host console disables its button after the first click.
func handleApplyScores(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ApplyScoresRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := svc.ApplyScores(r.Context(), sessionID, req.CorrectPlayerIDs); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
