package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/gamehall/trivianight/internal/game"
	"github.com/gamehall/trivianight/internal/trivia"
)

// handleWSState streams session-state snapshots over a WebSocket, one
// JSON StateView per message, starting with the current state. Reads
// from the client are discarded; closing the socket ends the stream.
func handleWSState(logger *slog.Logger, svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 4*time.Hour)
		defer cancel()

		sub, err := svc.WatchState(ctx, sessionID)
		if err != nil {
			logger.Error("subscribing to state", "error", err)
			return
		}
		defer svc.UnwatchState(sub)

		// Drain client frames so pings and close frames are processed.
		go func() {
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					cancel()
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case raw := <-sub.C:
				st := trivia.ParseState(raw)
				view, err := resolveStateView(ctx, svc, sessionID, st)
				if err != nil {
					logger.Error("building state snapshot", "error", err)
					continue
				}
				data, err := json.Marshal(view)
				if err != nil {
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
