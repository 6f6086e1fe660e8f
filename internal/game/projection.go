package game

import (
	"time"

	"github.com/gamehall/trivianight/internal/trivia"
)

// Read projections: pure functions over the latest subscribed
// snapshots. They never write and must cope with partially-updated
// state (the store orders writes per document only).

// RemainingSeconds is the display countdown value. It is nil unless a
// timed round is running, and clamps at zero once the deadline has
// passed; it never goes negative. Displays recompute it on a local
// cadence off the last received deadline; crossing zero does not end
// the round, only the admin does.
func RemainingSeconds(st trivia.SessionState, now time.Time) *int {
	if !st.TimerEnabled || st.Status != trivia.PhaseInRound || st.RoundEndsAt == nil {
		return nil
	}
	ms := *st.RoundEndsAt - now.UnixMilli()
	sec := int((ms + 999) / 1000)
	if sec < 0 {
		sec = 0
	}
	return &sec
}

// AnswerCell is the per-player answer column on the shared display:
// the answer text once revealed (or a placeholder for players who
// never submitted), a redaction while the round is open, blank
// otherwise.
func AnswerCell(st trivia.SessionState, answer *trivia.Answer) string {
	switch {
	case st.Reveal:
		if answer == nil {
			return "—"
		}
		return answer.AnswerText
	case st.Status == trivia.PhaseInRound:
		return "(hidden)"
	default:
		return ""
	}
}

// CanSubmit is the player-side submit affordance: enabled only during
// an active round the player has not answered yet. Submitting anyway
// (a race) is still safe: the write is a keyed upsert.
func CanSubmit(st trivia.SessionState, alreadySubmitted bool) bool {
	return st.Status == trivia.PhaseInRound &&
		st.CurrentRoundID != nil &&
		!alreadySubmitted
}

// WorksheetRow is one line of the admin scoring sheet.
type WorksheetRow struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Answered   bool   `json:"answered"`
	AnswerText string `json:"answerText"`
}

// Worksheet enumerates every player against any answer recorded for
// the round, in join order. The admin's "correct" markings live on the
// client until ApplyScores is invoked.
func Worksheet(players []PlayerEntry, answers []AnswerEntry) []WorksheetRow {
	byPlayer := make(map[string]trivia.Answer, len(answers))
	for _, a := range answers {
		byPlayer[a.ID] = a.Answer
	}

	rows := make([]WorksheetRow, 0, len(players))
	for _, p := range players {
		row := WorksheetRow{
			PlayerID: p.ID,
			Name:     p.Player.Name,
			Score:    p.Player.Score,
		}
		if a, ok := byPlayer[p.ID]; ok {
			row.Answered = true
			row.AnswerText = a.AnswerText
		}
		rows = append(rows, row)
	}
	return rows
}
