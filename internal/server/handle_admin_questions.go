package server

import (
	"net/http"
	"strings"

	"github.com/gamehall/trivianight/internal/game"
)

type QuestionView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	AddedAt int64  `json:"addedAt"`
}

type QuestionListResponse struct {
	Questions []QuestionView `json:"questions"`
}

type AddQuestionRequest struct {
	Text string `json:"text"`
}

type AddQuestionResponse struct {
	ID string `json:"id"`
}

// handleListQuestions returns the bank in the order rounds will
// consume it.
func handleListQuestions(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Questions(r.Context(), sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		views := make([]QuestionView, 0, len(entries))
		for _, e := range entries {
			views = append(views, QuestionView{
				ID:      e.ID,
				Text:    e.Question.Text,
				AddedAt: e.Question.AddedAt,
			})
		}
		writeJSON(w, http.StatusOK, QuestionListResponse{Questions: views})
	}
}

func handleAddQuestion(svc *game.Service, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddQuestionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Text = strings.TrimSpace(req.Text)
		if req.Text == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}

		id, err := svc.AddQuestion(r.Context(), sessionID, req.Text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, AddQuestionResponse{ID: id})
	}
}
