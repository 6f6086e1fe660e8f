package server

import (
	"net/http"

	"github.com/gamehall/trivianight/internal/game"
)

// handleReset wipes the session back to an empty lobby. Safe to call
// again if a previous reset was interrupted.
func handleReset(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reset(r.Context(), sessionID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
