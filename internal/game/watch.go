package game

import (
	"context"

	"github.com/gamehall/trivianight/internal/docstore"
)

// WatchState subscribes to session-state snapshots. The current
// snapshot arrives immediately; release with UnwatchState.
func (s *Service) WatchState(ctx context.Context, sessionID string) (*docstore.DocSub, error) {
	return s.store.SubscribeDoc(ctx, stateCollection(sessionID), stateDocID)
}

func (s *Service) UnwatchState(sub *docstore.DocSub) {
	s.store.UnsubscribeDoc(sub)
}

// WatchPlayers subscribes to roster snapshots in join order.
func (s *Service) WatchPlayers(ctx context.Context, sessionID string) (*docstore.CollSub, error) {
	return s.store.SubscribeCollection(ctx, playersCollection(sessionID), "joinedAt", docstore.Asc)
}

// WatchQuestions subscribes to bank snapshots in FIFO order.
func (s *Service) WatchQuestions(ctx context.Context, sessionID string) (*docstore.CollSub, error) {
	return s.store.SubscribeCollection(ctx, questionsCollection(sessionID), "addedAt", docstore.Asc)
}

// WatchAnswers subscribes to one round's answer snapshots in
// submission order.
func (s *Service) WatchAnswers(ctx context.Context, sessionID, roundID string) (*docstore.CollSub, error) {
	return s.store.SubscribeCollection(ctx, answersCollection(sessionID, roundID), "submittedAt", docstore.Asc)
}

// UnwatchList releases a collection subscription from any of the
// Watch helpers.
func (s *Service) UnwatchList(sub *docstore.CollSub) {
	s.store.UnsubscribeCollection(sub)
}
