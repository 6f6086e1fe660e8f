package game

// Logical collection paths, scoped per session id. The layout mirrors
// the subscription paths clients watch: one singleton state document,
// flat players/rounds/questions collections, and per-round answer
// subcollections keyed by player id.

const stateDocID = "global"

func stateCollection(sessionID string) string {
	return "trivia/" + sessionID + "/state"
}

func playersCollection(sessionID string) string {
	return "trivia/" + sessionID + "/players"
}

func roundsCollection(sessionID string) string {
	return "trivia/" + sessionID + "/rounds"
}

func answersCollection(sessionID, roundID string) string {
	return "trivia/" + sessionID + "/rounds/" + roundID + "/answers"
}

func questionsCollection(sessionID string) string {
	return "trivia/" + sessionID + "/questions"
}
