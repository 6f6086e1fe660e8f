package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gamehall/trivianight/internal/docstore"
)

const (
	playCookieName         = "play_session"
	authSessionsCollection = "authSessions"
)

var errInvalidKey = errors.New("invalid play key")

// playGate is the shared-key admission gate. Visitors who present the
// play key get an opaque token; the token is the only thing checked
// afterwards. With no key configured the gate admits everyone.
type playGate struct {
	store   *docstore.Store
	keyHash string
}

func newPlayGate(store *docstore.Store, keyHash string) *playGate {
	return &playGate{store: store, keyHash: keyHash}
}

type authSession struct {
	CreatedAt int64 `json:"createdAt"`
}

func (g *playGate) enabled() bool {
	return g.keyHash != ""
}

// unlock checks the key against the configured bcrypt hash and mints
// a session token.
func (g *playGate) unlock(ctx context.Context, key string) (string, error) {
	if !g.enabled() {
		return "", nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.keyHash), []byte(key)); err != nil {
		return "", errInvalidKey
	}

	token := newToken()
	sess := authSession{CreatedAt: time.Now().UnixMilli()}
	if err := g.store.Set(ctx, authSessionsCollection, token, sess); err != nil {
		return "", err
	}
	return token, nil
}

func (g *playGate) authenticated(r *http.Request) bool {
	if !g.enabled() {
		return true
	}
	token := tokenFromRequest(r)
	if token == "" {
		return false
	}
	_, err := g.store.Get(r.Context(), authSessionsCollection, token)
	return err == nil
}

func (g *playGate) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.authenticated(r) {
			writeError(w, http.StatusUnauthorized, "play key required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// tokenFromRequest accepts the session token as a Bearer header, the
// play_session cookie, or a token query parameter (EventSource and
// WebSocket clients cannot set headers).
func tokenFromRequest(r *http.Request) string {
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found && token != "" {
		return token
	}
	if cookie, err := r.Cookie(playCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

func newToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
