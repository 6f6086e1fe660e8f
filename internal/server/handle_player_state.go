package server

import (
	"errors"
	"net/http"

	"github.com/gamehall/trivianight/internal/docstore"
	"github.com/gamehall/trivianight/internal/game"
)

type PlayerStateResponse struct {
	State       StateView  `json:"state"`
	Player      PlayerView `json:"player"`
	HasAnswered bool       `json:"hasAnswered"`
	CanSubmit   bool       `json:"canSubmit"`
}

func handlePlayerState(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerId")
		if playerID == "" {
			writeError(w, http.StatusBadRequest, "playerId query parameter required")
			return
		}

		p, err := svc.Player(r.Context(), sessionID, playerID)
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		st, err := svc.State(r.Context(), sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		answered := false
		if st.CurrentRoundID != nil {
			answered, err = svc.HasAnswer(r.Context(), sessionID, *st.CurrentRoundID, playerID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}

		view, err := resolveStateView(r.Context(), svc, sessionID, st)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, PlayerStateResponse{
			State: view,
			Player: PlayerView{
				ID:       playerID,
				Name:     p.Name,
				Score:    p.Score,
				JoinedAt: p.JoinedAt,
				IsActive: p.IsActive,
			},
			HasAnswered: answered,
			CanSubmit:   game.CanSubmit(st, answered),
		})
	}
}
