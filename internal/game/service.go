// Package game implements the session state machine (lobby → in-round
// → scoring → …), the answer collection protocol, the question bank,
// and the read projections derived from subscribed state.
//
// The service is the only writer of session-phase documents. It holds
// no state of its own: every operation is a read of the latest
// document snapshots followed by at most one phase-affecting write, so
// concurrent admins race benignly at the document level (last write
// wins) instead of corrupting shared memory.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gamehall/trivianight/internal/docstore"
	"github.com/gamehall/trivianight/internal/trivia"
)

type Service struct {
	store *docstore.Store
	now   func() time.Time
}

func New(store *docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) nowMillis() int64 {
	return s.now().UnixMilli()
}

// PlayerEntry pairs a player document with its key.
type PlayerEntry struct {
	ID     string
	Player trivia.Player
}

// QuestionEntry pairs a bank entry with its key.
type QuestionEntry struct {
	ID       string
	Question trivia.Question
}

// AnswerEntry pairs an answer document with its key (the player id).
type AnswerEntry struct {
	ID     string
	Answer trivia.Answer
}

// RoundEntry pairs a round document with its key.
type RoundEntry struct {
	ID    string
	Round trivia.Round
}

// State returns the current session state. An absent or malformed
// state document reads as the canonical lobby default.
func (s *Service) State(ctx context.Context, sessionID string) (trivia.SessionState, error) {
	raw, err := s.store.Get(ctx, stateCollection(sessionID), stateDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		return trivia.DefaultState(), nil
	}
	if err != nil {
		return trivia.SessionState{}, fmt.Errorf("reading session state: %w", err)
	}
	return trivia.ParseState(raw), nil
}

// JoinPlayer registers a player under the case-normalized name,
// creating the document on first appearance. Joining again with the
// same name returns the existing player untouched.
func (s *Service) JoinPlayer(ctx context.Context, sessionID, displayName string) (string, trivia.Player, error) {
	id := trivia.PlayerID(displayName)
	if id == "" {
		return "", trivia.Player{}, errors.New("player name is required")
	}

	coll := playersCollection(sessionID)
	raw, err := s.store.Get(ctx, coll, id)
	if err == nil {
		var p trivia.Player
		if err := json.Unmarshal(raw, &p); err != nil {
			return "", trivia.Player{}, fmt.Errorf("decoding player %s: %w", id, err)
		}
		return id, p, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return "", trivia.Player{}, err
	}

	p := trivia.Player{
		Name:     displayName,
		Score:    0,
		JoinedAt: s.nowMillis(),
		IsActive: true,
	}
	if err := s.store.Set(ctx, coll, id, p); err != nil {
		return "", trivia.Player{}, fmt.Errorf("creating player %s: %w", id, err)
	}
	return id, p, nil
}

// Player returns one player document.
func (s *Service) Player(ctx context.Context, sessionID, playerID string) (trivia.Player, error) {
	raw, err := s.store.Get(ctx, playersCollection(sessionID), playerID)
	if err != nil {
		return trivia.Player{}, err
	}
	var p trivia.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return trivia.Player{}, fmt.Errorf("decoding player %s: %w", playerID, err)
	}
	return p, nil
}

// Players lists the session's players in join order.
func (s *Service) Players(ctx context.Context, sessionID string) ([]PlayerEntry, error) {
	docs, err := s.store.Query(ctx, playersCollection(sessionID), "joinedAt", docstore.Asc)
	if err != nil {
		return nil, err
	}
	players := make([]PlayerEntry, 0, len(docs))
	for _, d := range docs {
		var p trivia.Player
		if err := json.Unmarshal(d.Data, &p); err != nil {
			return nil, fmt.Errorf("decoding player %s: %w", d.ID, err)
		}
		players = append(players, PlayerEntry{ID: d.ID, Player: p})
	}
	return players, nil
}

// AddQuestion appends a question to the bank.
func (s *Service) AddQuestion(ctx context.Context, sessionID, text string) (string, error) {
	q := trivia.Question{Text: text, AddedAt: s.nowMillis()}
	id, err := s.store.Add(ctx, questionsCollection(sessionID), q)
	if err != nil {
		return "", fmt.Errorf("queueing question: %w", err)
	}
	return id, nil
}

// Questions lists the bank in FIFO order (oldest first).
func (s *Service) Questions(ctx context.Context, sessionID string) ([]QuestionEntry, error) {
	docs, err := s.store.Query(ctx, questionsCollection(sessionID), "addedAt", docstore.Asc)
	if err != nil {
		return nil, err
	}
	questions := make([]QuestionEntry, 0, len(docs))
	for _, d := range docs {
		var q trivia.Question
		if err := json.Unmarshal(d.Data, &q); err != nil {
			return nil, fmt.Errorf("decoding question %s: %w", d.ID, err)
		}
		questions = append(questions, QuestionEntry{ID: d.ID, Question: q})
	}
	return questions, nil
}

// Round returns one round document.
func (s *Service) Round(ctx context.Context, sessionID, roundID string) (trivia.Round, error) {
	raw, err := s.store.Get(ctx, roundsCollection(sessionID), roundID)
	if err != nil {
		return trivia.Round{}, err
	}
	var r trivia.Round
	if err := json.Unmarshal(raw, &r); err != nil {
		return trivia.Round{}, fmt.Errorf("decoding round %s: %w", roundID, err)
	}
	return r, nil
}

// BeginRound pops the oldest bank entry and opens a round on it. Also
// serves as "next round" when invoked from scoring: the index advances
// past the previous round and reveal resets. The timer configuration
// in effect right now is snapshotted into the round deadline; later
// config changes do not touch an already-running round.
//
// Fails with trivia.ErrEmptyQuestionBank when nothing is queued, in
// which case no transition occurs. The phase-affecting state write is
// the final, single-document step.
func (s *Service) BeginRound(ctx context.Context, sessionID string) (RoundEntry, error) {
	st, err := s.State(ctx, sessionID)
	if err != nil {
		return RoundEntry{}, err
	}

	queue, err := s.Questions(ctx, sessionID)
	if err != nil {
		return RoundEntry{}, fmt.Errorf("reading question bank: %w", err)
	}
	if len(queue) == 0 {
		return RoundEntry{}, trivia.ErrEmptyQuestionBank
	}
	next := queue[0]

	index := 0
	if st.Status != trivia.PhaseLobby {
		index = st.RoundIndex + 1
	}

	now := s.nowMillis()
	round := trivia.Round{
		Index:        index,
		QuestionText: next.Question.Text,
		CreatedAt:    now,
		ClosedAt:     nil,
	}
	roundID, err := s.store.Add(ctx, roundsCollection(sessionID), round)
	if err != nil {
		return RoundEntry{}, fmt.Errorf("creating round: %w", err)
	}
	if err := s.store.Delete(ctx, questionsCollection(sessionID), next.ID); err != nil {
		return RoundEntry{}, fmt.Errorf("consuming question: %w", err)
	}

	var endsAt *int64
	if st.TimerEnabled {
		v := now + int64(st.TimerSec)*1000
		endsAt = &v
	}
	newState := trivia.SessionState{
		Status:         trivia.PhaseInRound,
		CurrentRoundID: &roundID,
		TimerEnabled:   st.TimerEnabled,
		TimerSec:       st.TimerSec,
		RoundEndsAt:    endsAt,
		Reveal:         false,
		RoundIndex:     index,
	}
	if err := s.store.Set(ctx, stateCollection(sessionID), stateDocID, newState); err != nil {
		return RoundEntry{}, fmt.Errorf("writing session state: %w", err)
	}
	return RoundEntry{ID: roundID, Round: round}, nil
}

// EndRound stamps the active round closed and moves the session to
// scoring, clearing the deadline. With no active round this is a
// benign no-op: phase mismatches between racing admins are tolerated
// rather than rejected. Calling it twice restamps closedAt; the phase
// stays scoring.
func (s *Service) EndRound(ctx context.Context, sessionID string) error {
	st, err := s.State(ctx, sessionID)
	if err != nil {
		return err
	}
	if st.CurrentRoundID == nil {
		return nil
	}

	err = s.store.Update(ctx, roundsCollection(sessionID), *st.CurrentRoundID, map[string]any{
		"closedAt": s.nowMillis(),
	})
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("closing round: %w", err)
	}

	err = s.store.Update(ctx, stateCollection(sessionID), stateDocID, map[string]any{
		"status":      trivia.PhaseScoring,
		"roundEndsAt": nil,
	})
	if err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}
	return nil
}

// ApplyScores awards exactly one point to every listed player, then
// flips reveal on so displays show the round's answers. Players not
// listed are untouched; unknown ids are skipped. The phase does not
// change. Deliberately not idempotent: a repeated call re-awards the
// points.
func (s *Service) ApplyScores(ctx context.Context, sessionID string, correctPlayerIDs []string) error {
	coll := playersCollection(sessionID)
	for _, id := range correctPlayerIDs {
		err := s.store.Modify(ctx, coll, id, func(raw json.RawMessage) (any, error) {
			var p trivia.Player
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("decoding player %s: %w", id, err)
			}
			p.Score++
			return p, nil
		})
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("scoring player %s: %w", id, err)
		}
	}

	err := s.store.Update(ctx, stateCollection(sessionID), stateDocID, map[string]any{
		"reveal": true,
	})
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("writing session state: %w", err)
	}
	return nil
}

// SubmitAnswer upserts the player's answer for the active round. The
// document is keyed by player id, so a resubmission before the round
// closes silently replaces the earlier one: last submission wins, and
// a rapid double-click is harmless. Empty trimmed text is accepted.
//
// Returns trivia.ErrRoundMismatch when the session is not in-round on
// that exact round anymore.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, playerID, roundID, text string) error {
	st, err := s.State(ctx, sessionID)
	if err != nil {
		return err
	}
	if st.Status != trivia.PhaseInRound || st.CurrentRoundID == nil || *st.CurrentRoundID != roundID {
		return trivia.ErrRoundMismatch
	}

	p, err := s.Player(ctx, sessionID, playerID)
	if err != nil {
		return err
	}

	ans := trivia.Answer{
		PlayerID:    playerID,
		Name:        p.Name,
		AnswerText:  strings.TrimSpace(text),
		SubmittedAt: s.nowMillis(),
	}
	if err := s.store.Set(ctx, answersCollection(sessionID, roundID), playerID, ans); err != nil {
		return fmt.Errorf("writing answer: %w", err)
	}
	return nil
}

// HasAnswer reports whether the player already has an answer recorded
// for the round.
func (s *Service) HasAnswer(ctx context.Context, sessionID, roundID, playerID string) (bool, error) {
	_, err := s.store.Get(ctx, answersCollection(sessionID, roundID), playerID)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Answers lists a round's answers in submission order. Admin and
// display capability only; players never enumerate each other's
// answers.
func (s *Service) Answers(ctx context.Context, sessionID, roundID string) ([]AnswerEntry, error) {
	docs, err := s.store.Query(ctx, answersCollection(sessionID, roundID), "submittedAt", docstore.Asc)
	if err != nil {
		return nil, err
	}
	answers := make([]AnswerEntry, 0, len(docs))
	for _, d := range docs {
		var a trivia.Answer
		if err := json.Unmarshal(d.Data, &a); err != nil {
			return nil, fmt.Errorf("decoding answer %s: %w", d.ID, err)
		}
		answers = append(answers, AnswerEntry{ID: d.ID, Answer: a})
	}
	return answers, nil
}

// SetTimer stores the admin's timer configuration. It is captured into
// a round deadline only at the next BeginRound; an already-running
// round keeps its deadline, except that disabling the timer mid-round
// clears it so the state stays structurally valid.
func (s *Service) SetTimer(ctx context.Context, sessionID string, enabled bool, seconds int) error {
	if seconds < 1 {
		return fmt.Errorf("timer seconds must be >= 1, got %d", seconds)
	}

	fields := map[string]any{
		"timerEnabled": enabled,
		"timerSec":     seconds,
	}
	if !enabled {
		fields["roundEndsAt"] = nil
	}

	err := s.store.Update(ctx, stateCollection(sessionID), stateDocID, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		st := trivia.DefaultState()
		st.TimerEnabled = enabled
		st.TimerSec = seconds
		return s.store.Set(ctx, stateCollection(sessionID), stateDocID, st)
	}
	if err != nil {
		return fmt.Errorf("writing timer config: %w", err)
	}
	return nil
}

// Reset deletes every answer, round, player, and bank entry in the
// session and rewrites the state document to the lobby defaults.
// Usable from any phase. Every delete is independently idempotent, so
// an interrupted reset can simply be re-invoked.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	rounds, err := s.store.Query(ctx, roundsCollection(sessionID), "createdAt", docstore.Asc)
	if err != nil {
		return fmt.Errorf("listing rounds: %w", err)
	}
	for _, r := range rounds {
		answers, err := s.store.Query(ctx, answersCollection(sessionID, r.ID), "submittedAt", docstore.Asc)
		if err != nil {
			return fmt.Errorf("listing answers for round %s: %w", r.ID, err)
		}
		for _, a := range answers {
			if err := s.store.Delete(ctx, answersCollection(sessionID, r.ID), a.ID); err != nil {
				return fmt.Errorf("deleting answer %s: %w", a.ID, err)
			}
		}
		if err := s.store.Delete(ctx, roundsCollection(sessionID), r.ID); err != nil {
			return fmt.Errorf("deleting round %s: %w", r.ID, err)
		}
	}

	for _, coll := range []struct {
		name    string
		orderBy string
	}{
		{playersCollection(sessionID), "joinedAt"},
		{questionsCollection(sessionID), "addedAt"},
	} {
		docs, err := s.store.Query(ctx, coll.name, coll.orderBy, docstore.Asc)
		if err != nil {
			return fmt.Errorf("listing %s: %w", coll.name, err)
		}
		for _, d := range docs {
			if err := s.store.Delete(ctx, coll.name, d.ID); err != nil {
				return fmt.Errorf("deleting %s/%s: %w", coll.name, d.ID, err)
			}
		}
	}

	if err := s.store.Set(ctx, stateCollection(sessionID), stateDocID, trivia.DefaultState()); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}
	return nil
}
