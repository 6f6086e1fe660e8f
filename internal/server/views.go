package server

import (
	"context"
	"errors"
	"time"

	"github.com/gamehall/trivianight/internal/docstore"
	"github.com/gamehall/trivianight/internal/game"
	"github.com/gamehall/trivianight/internal/trivia"
)

// StateView is the session state as clients see it: the raw machine
// fields plus the server-computed countdown and the active question.
type StateView struct {
	Status         string  `json:"status"`
	CurrentRoundID *string `json:"currentRoundId"`
	RoundIndex     int     `json:"roundIndex"`
	TimerEnabled   bool    `json:"timerEnabled"`
	TimerSec       int     `json:"timerSec"`
	RoundEndsAt    *int64  `json:"roundEndsAt"`
	RemainingSec   *int    `json:"remainingSec"`
	Reveal         bool    `json:"reveal"`
	Question       string  `json:"question,omitempty"`
}

type PlayerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	JoinedAt int64  `json:"joinedAt"`
	IsActive bool   `json:"isActive"`
}

func newStateView(st trivia.SessionState, question string) StateView {
	return StateView{
		Status:         string(st.Status),
		CurrentRoundID: st.CurrentRoundID,
		RoundIndex:     st.RoundIndex,
		TimerEnabled:   st.TimerEnabled,
		TimerSec:       st.TimerSec,
		RoundEndsAt:    st.RoundEndsAt,
		RemainingSec:   game.RemainingSeconds(st, time.Now()),
		Reveal:         st.Reveal,
		Question:       question,
	}
}

// stateView reads the current state and resolves the active round's
// question text. A round document that is missing (mid-reset race)
// degrades to an empty question rather than an error.
func stateView(ctx context.Context, svc *game.Service, sessionID string) (StateView, error) {
	st, err := svc.State(ctx, sessionID)
	if err != nil {
		return StateView{}, err
	}
	return resolveStateView(ctx, svc, sessionID, st)
}

func resolveStateView(ctx context.Context, svc *game.Service, sessionID string, st trivia.SessionState) (StateView, error) {
	question := ""
	if st.CurrentRoundID != nil {
		round, err := svc.Round(ctx, sessionID, *st.CurrentRoundID)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return StateView{}, err
		}
		question = round.QuestionText
	}
	return newStateView(st, question), nil
}

func newPlayerViews(entries []game.PlayerEntry) []PlayerView {
	views := make([]PlayerView, 0, len(entries))
	for _, e := range entries {
		views = append(views, PlayerView{
			ID:       e.ID,
			Name:     e.Player.Name,
			Score:    e.Player.Score,
			JoinedAt: e.Player.JoinedAt,
			IsActive: e.Player.IsActive,
		})
	}
	return views
}
