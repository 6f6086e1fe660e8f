package server

import (
	"net/http"

	"github.com/gamehall/trivianight/internal/game"
)

type WorksheetResponse struct {
	RoundID string              `json:"roundId"`
	Rows    []game.WorksheetRow `json:"rows"`
}

// handleWorksheet serves the host's scoring sheet for the current
// round: every player with their raw answer text, regardless of the
// reveal flag. The host marks correct rows client-side and submits
// the ids to /api/admin/scores.
func handleWorksheet(svc *game.Service, sessionID string) http.HandlerFunc {
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

		resp := WorksheetResponse{Rows: []game.WorksheetRow{}}
		if st.CurrentRoundID != nil {
			resp.RoundID = *st.CurrentRoundID
			answers, err := svc.Answers(r.Context(), sessionID, *st.CurrentRoundID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			resp.Rows = game.Worksheet(players, answers)
		} else {
			resp.Rows = game.Worksheet(players, nil)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
