// Package docstore is a subscribable document store backed by a single
// SQLite table of JSONB documents grouped into named collections.
//
// Writers get create/replace, merge-update, delete, and generated-id
// insert; readers get point lookups, ordered collection queries, and
// snapshot subscriptions that deliver the current contents immediately
// on subscribe and a fresh full snapshot after every committed write.
// Ordering is guaranteed per document path only; there is no
// cross-document transaction, and consumers are expected to tolerate
// transient inconsistency between related documents.
package docstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNotFound = errors.New("document not found")

// Direction orders collection queries.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Document is one collection member: its key plus the raw JSON value.
type Document struct {
	ID   string
	Data json.RawMessage
}

type Store struct {
	db     *sql.DB
	logger *slog.Logger
	subs   *broker
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger, subs: newBroker()}
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Get returns the raw document, or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Set writes the full document, creating or replacing it.
func (s *Store) Set(ctx context.Context, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, string(data),
	)
	if err != nil {
		return err
	}
	s.notify(ctx, collection, id)
	return nil
}

// Add inserts the document under a generated id and returns it.
func (s *Store) Add(ctx context.Context, collection string, v any) (string, error) {
	id := newID()
	if err := s.Set(ctx, collection, id, v); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into an existing document inside a transaction.
// A nil field value clears the field to JSON null. Returns ErrNotFound
// when the document does not exist.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.Modify(ctx, collection, id, func(raw json.RawMessage) (any, error) {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding document %s/%s: %w", collection, id, err)
		}
		for k, v := range fields {
			doc[k] = v
		}
		return doc, nil
	})
}

// Modify loads a document, applies fn, and writes the result back in a
// single transaction. Returns ErrNotFound when the document is absent.
func (s *Store) Modify(ctx context.Context, collection, id string, fn func(json.RawMessage) (any, error)) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	next, err := fn(json.RawMessage(data))
	if err != nil {
		return err
	}
	out, err := json.Marshal(next)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET data = jsonb(?) WHERE collection = ? AND id = ?`,
		string(out), collection, id,
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.notify(ctx, collection, id)
	return nil
}

// Delete removes the document. Deleting an absent document is a no-op,
// which keeps bulk teardown safe to re-invoke partway through.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n > 0 {
		s.notify(ctx, collection, id)
	}
	return nil
}

// Query returns the collection ordered by a top-level JSON field.
func (s *Store) Query(ctx context.Context, collection, orderBy string, dir Direction) ([]Document, error) {
	if dir != Asc && dir != Desc {
		return nil, fmt.Errorf("invalid query direction %q", dir)
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(
			`SELECT id, json(data) FROM documents
			 WHERE collection = ?
			 ORDER BY json_extract(data, '$.' || ?) %s, id %s`, dir, dir),
		collection, orderBy,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: json.RawMessage(data)})
	}
	return docs, rows.Err()
}

// SubscribeDoc registers for snapshots of a single document. The
// current snapshot (nil when absent) is delivered immediately; every
// committed write or delete of that document delivers a fresh one.
func (s *Store) SubscribeDoc(ctx context.Context, collection, id string) (*DocSub, error) {
	sub := s.subs.subscribeDoc(collection, id)
	raw, err := s.Get(ctx, collection, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.subs.unsubscribeDoc(sub)
		return nil, err
	}
	sendLatest(sub.C, []byte(raw))
	return sub, nil
}

// UnsubscribeDoc detaches a document subscription.
func (s *Store) UnsubscribeDoc(sub *DocSub) {
	s.subs.unsubscribeDoc(sub)
}

// SubscribeCollection registers for ordered snapshots of a whole
// collection, starting with its current contents.
func (s *Store) SubscribeCollection(ctx context.Context, collection, orderBy string, dir Direction) (*CollSub, error) {
	sub := s.subs.subscribeColl(collection, orderBy, dir)
	docs, err := s.Query(ctx, collection, orderBy, dir)
	if err != nil {
		s.subs.unsubscribeColl(sub)
		return nil, err
	}
	sendLatest(sub.C, docs)
	return sub, nil
}

// UnsubscribeCollection detaches a collection subscription.
func (s *Store) UnsubscribeCollection(sub *CollSub) {
	s.subs.unsubscribeColl(sub)
}

// notify fans the post-write snapshots out to subscribers of the
// document and of its collection. Runs on the writer's goroutine after
// commit, so per-path delivery order follows commit order.
func (s *Store) notify(ctx context.Context, collection, id string) {
	for _, sub := range s.subs.docSubs(collection, id) {
		raw, err := s.Get(ctx, collection, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Error("snapshot read failed", "collection", collection, "id", id, "error", err)
			continue
		}
		sendLatest(sub.C, []byte(raw))
	}
	for _, sub := range s.subs.collSubs(collection) {
		docs, err := s.Query(ctx, collection, sub.orderBy, sub.dir)
		if err != nil {
			s.logger.Error("snapshot query failed", "collection", collection, "error", err)
			continue
		}
		sendLatest(sub.C, docs)
	}
}
