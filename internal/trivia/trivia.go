// Package trivia defines the core domain types and their invariants.
//
// All timestamps are unix epoch milliseconds, matching the wire format
// every client reads over the document subscriptions.
package trivia

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Phase is the authoritative stage of a session.
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseInRound Phase = "in-round"
	PhaseScoring Phase = "scoring"
)

func (p Phase) String() string { return string(p) }

func (p Phase) valid() bool {
	switch p {
	case PhaseLobby, PhaseInRound, PhaseScoring:
		return true
	}
	return false
}

// DefaultTimerSec is the timer duration a fresh session starts with.
const DefaultTimerSec = 30

var (
	// ErrEmptyQuestionBank is returned by BeginRound when no question
	// is queued. The session does not transition.
	ErrEmptyQuestionBank = errors.New("question bank is empty")

	// ErrRoundMismatch is returned when an answer targets a round that
	// is not the currently active one.
	ErrRoundMismatch = errors.New("round is not accepting answers")
)

// SessionState is the single shared document every role agrees on.
// It is mutated exclusively by admin-driven operations; all other
// clients observe it through subscriptions.
type SessionState struct {
	Status         Phase   `json:"status"`
	CurrentRoundID *string `json:"currentRoundId"`
	TimerEnabled   bool    `json:"timerEnabled"`
	TimerSec       int     `json:"timerSec"`
	RoundEndsAt    *int64  `json:"roundEndsAt"`
	Reveal         bool    `json:"reveal"`
	RoundIndex     int     `json:"roundIndex"`
}

// DefaultState is the canonical lobby state a session starts in and
// returns to after a reset. Readers also fall back to it when the
// state document is absent or unparseable.
func DefaultState() SessionState {
	return SessionState{
		Status:         PhaseLobby,
		CurrentRoundID: nil,
		TimerEnabled:   false,
		TimerSec:       DefaultTimerSec,
		RoundEndsAt:    nil,
		Reveal:         false,
		RoundIndex:     0,
	}
}

// Validate reports whether the state satisfies the structural
// invariants. Every writer of the state document must produce a value
// that passes.
func (s SessionState) Validate() error {
	if !s.Status.valid() {
		return fmt.Errorf("unknown phase %q", s.Status)
	}
	hasRound := s.CurrentRoundID != nil && *s.CurrentRoundID != ""
	if hasRound != (s.Status == PhaseInRound || s.Status == PhaseScoring) {
		return fmt.Errorf("currentRoundId must be set exactly in phases %s and %s", PhaseInRound, PhaseScoring)
	}
	if s.RoundEndsAt != nil && !(s.TimerEnabled && s.Status == PhaseInRound) {
		return errors.New("roundEndsAt requires an enabled timer and an active round")
	}
	if s.Reveal && s.Status != PhaseScoring {
		return errors.New("reveal is only meaningful while scoring")
	}
	if s.TimerSec < 1 {
		return fmt.Errorf("timerSec must be >= 1, got %d", s.TimerSec)
	}
	if s.RoundIndex < 0 {
		return fmt.Errorf("roundIndex must be >= 0, got %d", s.RoundIndex)
	}
	return nil
}

// ParseState decodes a state document snapshot. An absent document
// (nil raw) or one that fails to parse yields the default lobby state
// rather than an error, so an undefined shape never propagates into
// the state machine.
func ParseState(raw json.RawMessage) SessionState {
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultState()
	}
	var s SessionState
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultState()
	}
	if !s.Status.valid() {
		return DefaultState()
	}
	if s.TimerSec < 1 {
		s.TimerSec = DefaultTimerSec
	}
	return s
}

// Player is keyed by the case-normalized display name, unique per
// session. Score is owned by the scoring step; Name and JoinedAt are
// set once at creation.
type Player struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	JoinedAt int64  `json:"joinedAt"`
	IsActive bool   `json:"isActive"`
}

// PlayerID normalizes a display name into the player's document key.
// An empty result means the name is unusable.
func PlayerID(displayName string) string {
	return strings.ToLower(strings.TrimSpace(displayName))
}

// Round is one question-and-answer cycle. Immutable once ClosedAt is
// stamped, except for being superseded by the next round.
type Round struct {
	Index        int    `json:"index"`
	QuestionText string `json:"questionText"`
	CreatedAt    int64  `json:"createdAt"`
	ClosedAt     *int64 `json:"closedAt"`
}

// Answer is keyed by player id under its round, so a resubmission
// overwrites rather than duplicates: last write before the round
// closes wins.
type Answer struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	AnswerText  string `json:"answerText"`
	SubmittedAt int64  `json:"submittedAt"`
}

// Question is a bank entry. The bank is a FIFO queue ordered by
// AddedAt; consuming an entry removes it.
type Question struct {
	Text    string `json:"text"`
	AddedAt int64  `json:"addedAt"`
}
