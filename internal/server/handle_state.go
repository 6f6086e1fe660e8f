package server

import (
	"net/http"

	"github.com/gamehall/trivianight/internal/game"
)

func handleState(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := stateView(r.Context(), svc, sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
