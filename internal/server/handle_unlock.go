package server

import (
	"errors"
	"net/http"
	"time"
)

type UnlockRequest struct {
	Key string `json:"key"`
}

type UnlockResponse struct {
	Token string `json:"token"`
}

func handleUnlock(gate *playGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnlockRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		token, err := gate.unlock(r.Context(), req.Key)
		if errors.Is(err, errInvalidKey) {
			writeError(w, http.StatusUnauthorized, "invalid play key")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if token != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     playCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(24 * time.Hour),
			})
		}
		writeJSON(w, http.StatusOK, UnlockResponse{Token: token})
	}
}
