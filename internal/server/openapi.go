package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Trivia Night API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the live trivia game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/auth/unlock
	postUnlock, _ := r.NewOperationContext(http.MethodPost, "/api/auth/unlock")
	postUnlock.SetSummary("Unlock with play key")
	postUnlock.SetDescription("Exchanges the shared play key for a session token. Sets the play_session cookie.")
	postUnlock.AddReqStructure(UnlockRequest{})
	postUnlock.AddRespStructure(UnlockResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postUnlock.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postUnlock)

	// GET /api/auth/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/auth/me")
	getMe.SetSummary("Authentication status")
	getMe.SetDescription("Reports whether the caller holds a valid play session.")
	getMe.AddRespStructure(AuthMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getMe)

	// POST /api/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/join")
	postJoin.SetSummary("Join the game")
	postJoin.SetDescription("Registers a player by display name. Rejoining with the same name returns the existing player.")
	postJoin.AddReqStructure(JoinRequest{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postJoin)

	// GET /api/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/state")
	getState.SetSummary("Session state")
	getState.SetDescription("Returns the session state with the computed countdown and the active question.")
	getState.AddRespStructure(StateView{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// GET /api/player/state
	getPlayerState, _ := r.NewOperationContext(http.MethodGet, "/api/player/state")
	getPlayerState.SetSummary("Player state")
	getPlayerState.SetDescription("Returns the session state combined with one player's score and answer status. Pass playerId as query parameter.")
	getPlayerState.AddRespStructure(PlayerStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getPlayerState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPlayerState)

	// GET /api/display
	getDisplay, _ := r.NewOperationContext(http.MethodGet, "/api/display")
	getDisplay.SetSummary("Display projection")
	getDisplay.SetDescription("Returns the shared-screen projection: state plus one answer row per player, redacted until reveal.")
	getDisplay.AddRespStructure(DisplayResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getDisplay)

	// POST /api/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Records the player's answer for the active round. Resubmitting before the round closes replaces the earlier answer.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postAnswer)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of state, players, questions, and answers snapshots. Pass token as query parameter if the gate is enabled.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/state
	getWSState, _ := r.NewOperationContext(http.MethodGet, "/ws/state")
	getWSState.SetSummary("WebSocket state stream")
	getWSState.SetDescription("Upgrades to a WebSocket that delivers one JSON state snapshot per message.")
	getWSState.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSState)

	// GET /api/admin/questions
	listQuestions, _ := r.NewOperationContext(http.MethodGet, "/api/admin/questions")
	listQuestions.SetSummary("List question bank")
	listQuestions.SetDescription("Returns the queued questions in the order rounds will consume them.")
	listQuestions.AddRespStructure(QuestionListResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listQuestions)

	// POST /api/admin/questions
	addQuestion, _ := r.NewOperationContext(http.MethodPost, "/api/admin/questions")
	addQuestion.SetSummary("Queue a question")
	addQuestion.SetDescription("Appends a question to the bank.")
	addQuestion.AddReqStructure(AddQuestionRequest{})
	addQuestion.AddRespStructure(AddQuestionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	addQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(addQuestion)

	// POST /api/admin/round/begin
	beginRound, _ := r.NewOperationContext(http.MethodPost, "/api/admin/round/begin")
	beginRound.SetSummary("Begin round")
	beginRound.SetDescription("Pops the oldest bank question and opens a round on it. Also advances from scoring to the next round.")
	beginRound.AddRespStructure(RoundView{}, openapi.WithHTTPStatus(http.StatusOK))
	beginRound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(beginRound)

	// POST /api/admin/round/end
	endRound, _ := r.NewOperationContext(http.MethodPost, "/api/admin/round/end")
	endRound.SetSummary("End round")
	endRound.SetDescription("Closes the active round and moves the session to scoring. A no-op without an active round.")
	endRound.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(endRound)

	// GET /api/admin/worksheet
	worksheet, _ := r.NewOperationContext(http.MethodGet, "/api/admin/worksheet")
	worksheet.SetSummary("Scoring worksheet")
	worksheet.SetDescription("Returns the host's scoring sheet for the current round, with raw answer text.")
	worksheet.AddRespStructure(WorksheetResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(worksheet)

	// POST /api/admin/scores
	applyScores, _ := r.NewOperationContext(http.MethodPost, "/api/admin/scores")
	applyScores.SetSummary("Apply scores")
	applyScores.SetDescription("Awards one point to each listed player and reveals the round's answers.")
	applyScores.AddReqStructure(ApplyScoresRequest{})
	applyScores.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(applyScores)

	// PUT /api/admin/timer
	setTimer, _ := r.NewOperationContext(http.MethodPut, "/api/admin/timer")
	setTimer.SetSummary("Configure timer")
	setTimer.SetDescription("Stores the round timer configuration. Applied when the next round begins.")
	setTimer.AddReqStructure(SetTimerRequest{})
	setTimer.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	setTimer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(setTimer)

	// POST /api/admin/reset
	reset, _ := r.NewOperationContext(http.MethodPost, "/api/admin/reset")
	reset.SetSummary("Reset session")
	reset.SetDescription("Deletes every player, round, answer, and queued question, and restores the lobby defaults.")
	reset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(reset)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}
}
