package server

import (
	"net/http"

	"github.com/gamehall/trivianight/internal/game"
)

type SetTimerRequest struct {
	Enabled bool `json:"enabled"`
	Seconds int  `json:"seconds"`
}

// handleSetTimer stores the timer configuration. It takes effect at
// the next round start; a running round keeps its deadline.
func handleSetTimer(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetTimerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Seconds < 1 {
			writeError(w, http.StatusBadRequest, "seconds must be at least 1")
			return
		}

		if err := svc.SetTimer(r.Context(), sessionID, req.Enabled, req.Seconds); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
