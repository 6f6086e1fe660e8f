package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gamehall/trivianight/internal/docstore"
	"github.com/gamehall/trivianight/internal/game"
	"github.com/gamehall/trivianight/internal/trivia"
)

type eventPlayers struct {
	Players []PlayerView `json:"players"`
}

type eventAnswers struct {
	RoundID string       `json:"roundId"`
	Answers []DisplayRow `json:"answers"`
}

type eventQuestions struct {
	Count int `json:"count"`
}

// handleEvents is the SSE stream behind every live page: named events
// carrying full snapshots of the state, the roster, the bank size,
// and the active round's answer cells. When the active round changes
// the stream silently re-follows the new round's answers.
func handleEvents(logger *slog.Logger, svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ctx := r.Context()

		stateSub, err := svc.WatchState(ctx, sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		defer svc.UnwatchState(stateSub)

		playersSub, err := svc.WatchPlayers(ctx, sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		defer svc.UnwatchList(playersSub)

		questionsSub, err := svc.WatchQuestions(ctx, sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		defer svc.UnwatchList(questionsSub)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		// The answers subscription follows the active round.
		var (
			st           trivia.SessionState
			answersSub   *docstore.CollSub
			answersCh    chan []docstore.Document
			answersRound string
		)
		defer func() {
			if answersSub != nil {
				svc.UnwatchList(answersSub)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case raw := <-stateSub.C:
				st = trivia.ParseState(raw)
				view, err := resolveStateView(ctx, svc, sessionID, st)
				if err != nil {
					logger.Error("building state snapshot", "error", err)
					continue
				}
				writeSSE(w, flusher, "state", view)

				roundID := ""
				if st.CurrentRoundID != nil {
					roundID = *st.CurrentRoundID
				}
				if roundID != answersRound {
					if answersSub != nil {
						svc.UnwatchList(answersSub)
						answersSub, answersCh = nil, nil
					}
					answersRound = roundID
					if roundID != "" {
						answersSub, err = svc.WatchAnswers(ctx, sessionID, roundID)
						if err != nil {
							logger.Error("following round answers", "round", roundID, "error", err)
							continue
						}
						answersCh = answersSub.C
					} else {
						writeSSE(w, flusher, "answers", eventAnswers{Answers: []DisplayRow{}})
					}
				}

			case docs := <-playersSub.C:
				players, err := decodePlayers(docs)
				if err != nil {
					logger.Error("decoding roster snapshot", "error", err)
					continue
				}
				writeSSE(w, flusher, "players", eventPlayers{Players: players})

			case docs := <-questionsSub.C:
				writeSSE(w, flusher, "questions", eventQuestions{Count: len(docs)})

			case docs := <-answersCh:
				rows, err := decodeAnswerRows(st, docs)
				if err != nil {
					logger.Error("decoding answers snapshot", "error", err)
					continue
				}
				writeSSE(w, flusher, "answers", eventAnswers{RoundID: answersRound, Answers: rows})

			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}

func decodePlayers(docs []docstore.Document) ([]PlayerView, error) {
	players := make([]PlayerView, 0, len(docs))
	for _, d := range docs {
		var p trivia.Player
		if err := json.Unmarshal(d.Data, &p); err != nil {
			return nil, err
		}
		players = append(players, PlayerView{
			ID:       d.ID,
			Name:     p.Name,
			Score:    p.Score,
			JoinedAt: p.JoinedAt,
			IsActive: p.IsActive,
		})
	}
	return players, nil
}

// decodeAnswerRows applies the reveal rules so the stream never leaks
// answer text before the host reveals it.
func decodeAnswerRows(st trivia.SessionState, docs []docstore.Document) ([]DisplayRow, error) {
	rows := make([]DisplayRow, 0, len(docs))
	for _, d := range docs {
		var a trivia.Answer
		if err := json.Unmarshal(d.Data, &a); err != nil {
			return nil, err
		}
		rows = append(rows, DisplayRow{
			PlayerID: d.ID,
			Name:     a.Name,
			Answer:   game.AnswerCell(st, &a),
		})
	}
	return rows, nil
}
