package server

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestEventsInitialSnapshots connects to the SSE stream and waits for
// the initial state, players, and questions events that every new
// subscriber receives before any write happens.
func TestEventsInitialSnapshots(t *testing.T) {
	h, _ := newTestHandler(t, "")
	srv := httptest.NewServer(h)
	defer srv.Close()

	doJSON(t, h, http.MethodPost, "/api/join", JoinRequest{Name: "Alice"})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	seen := map[string]bool{}
	scanner := bufio.NewScanner(resp.Body)
	deadline := time.Now().Add(5 * time.Second)
	for scanner.Scan() && time.Now().Before(deadline) {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			seen[name] = true
		}
		if seen["state"] && seen["players"] && seen["questions"] {
			return
		}
	}
	t.Fatalf("initial events seen = %v, want state+players+questions", seen)
}
