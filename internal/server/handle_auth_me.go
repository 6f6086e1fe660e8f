package server

import "net/http"

type AuthMeResponse struct {
	Authenticated bool `json:"authenticated"`
}

func handleAuthMe(gate *playGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, AuthMeResponse{
			Authenticated: gate.authenticated(r),
		})
	}
}
