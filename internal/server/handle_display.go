package server

import (
	"net/http"

	"github.com/gamehall/trivianight/internal/game"
	"github.com/gamehall/trivianight/internal/trivia"
)

type DisplayRow struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Answer   string `json:"answer"`
}

type DisplayResponse struct {
	State   StateView    `json:"state"`
	Players []DisplayRow `json:"players"`
}

// handleDisplay renders the shared-screen projection: the state with
// countdown, and one row per player whose answer column obeys the
// reveal rules (revealed text, waiting placeholder, or hidden marker).
func handleDisplay(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.State(r.Context(), sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		players, err := svc.Players(r.Context(), sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		byPlayer := map[string]trivia.Answer{}
		if st.CurrentRoundID != nil {
			answers, err := svc.Answers(r.Context(), sessionID, *st.CurrentRoundID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			for _, a := range answers {
				byPlayer[a.ID] = a.Answer
			}
		}

		rows := make([]DisplayRow, 0, len(players))
		for _, p := range players {
			var ans *trivia.Answer
			if a, ok := byPlayer[p.ID]; ok {
				ans = &a
			}
			rows = append(rows, DisplayRow{
				PlayerID: p.ID,
				Name:     p.Player.Name,
				Score:    p.Player.Score,
				Answer:   game.AnswerCell(st, ans),
			})
		}

		view, err := resolveStateView(r.Context(), svc, sessionID, st)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, DisplayResponse{State: view, Players: rows})
	}
}
