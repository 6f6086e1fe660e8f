package server

import (
	"net/http"
	"strings"

	"github.com/gamehall/trivianight/internal/game"
)

type JoinRequest struct {
	Name string `json:"name"`
}

type JoinResponse struct {
	PlayerID string     `json:"playerId"`
	Player   PlayerView `json:"player"`
}

func handleJoin(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		id, p, err := svc.JoinPlayer(r.Context(), sessionID, req.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, JoinResponse{
			PlayerID: id,
			Player: PlayerView{
				ID:       id,
				Name:     p.Name,
				Score:    p.Score,
				JoinedAt: p.JoinedAt,
				IsActive: p.IsActive,
			},
		})
	}
}
