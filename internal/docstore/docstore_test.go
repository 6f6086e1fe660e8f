package docstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/gamehall/trivianight/internal/database"
	"github.com/gamehall/trivianight/internal/docstore"
	"github.com/gamehall/trivianight/internal/migrations"
)

func newTestStore(t *testing.T) *docstore.Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return docstore.New(db, slog.Default())
}

type note struct {
	Text  string `json:"text"`
	Order int64  `json:"order"`
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "notes", "n1", note{Text: "hello", Order: 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	raw, err := s.Get(ctx, "notes", "n1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var got note
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("text = %q, want hello", got.Text)
	}

	// Set replaces the whole document.
	if err := s.Set(ctx, "notes", "n1", note{Text: "replaced", Order: 2}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, _ = s.Get(ctx, "notes", "n1")
	json.Unmarshal(raw, &got)
	if got.Text != "replaced" {
		t.Errorf("text = %q, want replaced", got.Text)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "notes", "missing")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "a", "x", note{Text: "in a"})
	if _, err := s.Get(ctx, "b", "x"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("same id in another collection = %v, want ErrNotFound", err)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "notes", "n1", map[string]any{"text": "hello", "count": 1, "extra": true})

	err := s.Update(ctx, "notes", "n1", map[string]any{"count": 2, "extra": nil})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	raw, _ := s.Get(ctx, "notes", "n1")
	var got map[string]any
	json.Unmarshal(raw, &got)
	if got["text"] != "hello" {
		t.Errorf("text = %v, merge must keep untouched fields", got["text"])
	}
	if got["count"] != float64(2) {
		t.Errorf("count = %v, want 2", got["count"])
	}
	if got["extra"] != nil {
		t.Errorf("extra = %v, want cleared to null", got["extra"])
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	s := newTestStore(t)

	err := s.Update(context.Background(), "notes", "missing", map[string]any{"x": 1})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
}

func TestModify(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "counters", "c1", map[string]any{"n": 5})

	err := s.Modify(ctx, "counters", "c1", func(raw json.RawMessage) (any, error) {
		var doc map[string]any
		json.Unmarshal(raw, &doc)
		doc["n"] = doc["n"].(float64) + 1
		return doc, nil
	})
	if err != nil {
		t.Fatalf("Modify: %v", err)
	}

	raw, _ := s.Get(ctx, "counters", "c1")
	var got map[string]any
	json.Unmarshal(raw, &got)
	if got["n"] != float64(6) {
		t.Errorf("n = %v, want 6", got["n"])
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "notes", "n1", note{Text: "bye"})
	if err := s.Delete(ctx, "notes", "n1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "notes", "n1"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent document is a no-op, not an error.
	if err := s.Delete(ctx, "notes", "n1"); err != nil {
		t.Errorf("repeat Delete = %v, want nil", err)
	}
}

func TestAddGeneratesDistinctIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.Add(ctx, "notes", note{Text: "a"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	id2, err := s.Add(ctx, "notes", note{Text: "b"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Errorf("ids = %q, %q, want distinct non-empty", id1, id2)
	}
}

func TestQueryOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "notes", "b", note{Text: "second", Order: 20})
	s.Set(ctx, "notes", "a", note{Text: "first", Order: 10})
	s.Set(ctx, "notes", "c", note{Text: "third", Order: 30})

	docs, err := s.Query(ctx, "notes", "order", docstore.Asc)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var texts []string
	for _, d := range docs {
		var n note
		json.Unmarshal(d.Data, &n)
		texts = append(texts, n.Text)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("asc order = %v, want %v", texts, want)
		}
	}

	docs, err = s.Query(ctx, "notes", "order", docstore.Desc)
	if err != nil {
		t.Fatalf("Query desc: %v", err)
	}
	var first note
	json.Unmarshal(docs[0].Data, &first)
	if first.Text != "third" {
		t.Errorf("desc first = %q, want third", first.Text)
	}
}

func TestQueryRejectsBadDirection(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Query(context.Background(), "notes", "order", docstore.Direction("sideways")); err == nil {
		t.Error("expected error for invalid direction")
	}
}

func TestSubscribeDocDeliversInitialAndUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "notes", "n1", note{Text: "v1"})

	sub, err := s.SubscribeDoc(ctx, "notes", "n1")
	if err != nil {
		t.Fatalf("SubscribeDoc: %v", err)
	}
	defer s.UnsubscribeDoc(sub)

	// Initial snapshot arrives without any write.
	raw := recvDoc(t, sub.C)
	var got note
	json.Unmarshal(raw, &got)
	if got.Text != "v1" {
		t.Errorf("initial snapshot = %q, want v1", got.Text)
	}

	s.Set(ctx, "notes", "n1", note{Text: "v2"})
	raw = recvDoc(t, sub.C)
	json.Unmarshal(raw, &got)
	if got.Text != "v2" {
		t.Errorf("updated snapshot = %q, want v2", got.Text)
	}

	// Deletion delivers an absent (nil) snapshot.
	s.Delete(ctx, "notes", "n1")
	if raw = recvDoc(t, sub.C); raw != nil {
		t.Errorf("post-delete snapshot = %q, want nil", raw)
	}
}

func TestSubscribeDocAbsentInitially(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.SubscribeDoc(ctx, "notes", "later")
	if err != nil {
		t.Fatalf("SubscribeDoc: %v", err)
	}
	defer s.UnsubscribeDoc(sub)

	if raw := recvDoc(t, sub.C); raw != nil {
		t.Errorf("initial snapshot = %q, want nil for absent doc", raw)
	}

	s.Set(ctx, "notes", "later", note{Text: "now"})
	var got note
	json.Unmarshal(recvDoc(t, sub.C), &got)
	if got.Text != "now" {
		t.Errorf("snapshot = %q, want now", got.Text)
	}
}

func TestSubscribeDocCoalescesToLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub, err := s.SubscribeDoc(ctx, "notes", "n1")
	if err != nil {
		t.Fatalf("SubscribeDoc: %v", err)
	}
	defer s.UnsubscribeDoc(sub)
	recvDoc(t, sub.C) // drain initial

	// Burst of writes with no reader in between: only the newest
	// snapshot must remain pending.
	for _, v := range []string{"v1", "v2", "v3"} {
		s.Set(ctx, "notes", "n1", note{Text: v})
	}

	var got note
	json.Unmarshal(recvDoc(t, sub.C), &got)
	if got.Text != "v3" {
		t.Errorf("pending snapshot = %q, want v3 (latest wins)", got.Text)
	}
	select {
	case raw := <-sub.C:
		t.Errorf("unexpected extra snapshot %q", raw)
	default:
	}
}

func TestSubscribeCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "notes", "a", note{Text: "first", Order: 1})

	sub, err := s.SubscribeCollection(ctx, "notes", "order", docstore.Asc)
	if err != nil {
		t.Fatalf("SubscribeCollection: %v", err)
	}
	defer s.UnsubscribeCollection(sub)

	docs := recvColl(t, sub.C)
	if len(docs) != 1 {
		t.Fatalf("initial snapshot size = %d, want 1", len(docs))
	}

	s.Set(ctx, "notes", "b", note{Text: "second", Order: 2})
	docs = recvColl(t, sub.C)
	if len(docs) != 2 || docs[1].ID != "b" {
		t.Errorf("snapshot = %+v, want [a b] in order", docs)
	}

	s.Delete(ctx, "notes", "a")
	docs = recvColl(t, sub.C)
	if len(docs) != 1 || docs[0].ID != "b" {
		t.Errorf("snapshot after delete = %+v, want [b]", docs)
	}
}

func recvDoc(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case raw := <-ch:
		return raw
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for document snapshot")
		return nil
	}
}

func recvColl(t *testing.T, ch chan []docstore.Document) []docstore.Document {
	t.Helper()
	select {
	case docs := <-ch:
		return docs
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for collection snapshot")
		return nil
	}
}
