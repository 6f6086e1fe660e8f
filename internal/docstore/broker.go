package docstore

import "sync"

type docKey struct {
	collection string
	id         string
}

// DocSub receives full snapshots of a single document. A nil snapshot
// means the document is absent.
type DocSub struct {
	C  chan []byte
	key docKey
}

// CollSub receives full ordered snapshots of a collection.
type CollSub struct {
	C          chan []Document
	collection string
	orderBy    string
	dir        Direction
}

// broker is the in-process fan-out for document and collection
// subscriptions. Channels are buffered with capacity 1 and carry the
// latest snapshot only: a pending stale snapshot is replaced rather
// than queued, so a slow subscriber never blocks a writer and always
// catches up to current state on its next receive.
type broker struct {
	mu    sync.RWMutex
	docs  map[docKey]map[*DocSub]struct{}
	colls map[string]map[*CollSub]struct{}
}

func newBroker() *broker {
	return &broker{
		docs:  make(map[docKey]map[*DocSub]struct{}),
		colls: make(map[string]map[*CollSub]struct{}),
	}
}

func (b *broker) subscribeDoc(collection, id string) *DocSub {
	sub := &DocSub{C: make(chan []byte, 1), key: docKey{collection, id}}
	b.mu.Lock()
	if b.docs[sub.key] == nil {
		b.docs[sub.key] = make(map[*DocSub]struct{})
	}
	b.docs[sub.key][sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (b *broker) unsubscribeDoc(sub *DocSub) {
	b.mu.Lock()
	delete(b.docs[sub.key], sub)
	if len(b.docs[sub.key]) == 0 {
		delete(b.docs, sub.key)
	}
	b.mu.Unlock()
}

func (b *broker) subscribeColl(collection, orderBy string, dir Direction) *CollSub {
	sub := &CollSub{
		C:          make(chan []Document, 1),
		collection: collection,
		orderBy:    orderBy,
		dir:        dir,
	}
	b.mu.Lock()
	if b.colls[collection] == nil {
		b.colls[collection] = make(map[*CollSub]struct{})
	}
	b.colls[collection][sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (b *broker) unsubscribeColl(sub *CollSub) {
	b.mu.Lock()
	delete(b.colls[sub.collection], sub)
	if len(b.colls[sub.collection]) == 0 {
		delete(b.colls, sub.collection)
	}
	b.mu.Unlock()
}

func (b *broker) docSubs(collection, id string) []*DocSub {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := make([]*DocSub, 0, len(b.docs[docKey{collection, id}]))
	for s := range b.docs[docKey{collection, id}] {
		subs = append(subs, s)
	}
	return subs
}

func (b *broker) collSubs(collection string) []*CollSub {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := make([]*CollSub, 0, len(b.colls[collection]))
	for s := range b.colls[collection] {
		subs = append(subs, s)
	}
	return subs
}

// sendLatest delivers v, displacing an undelivered older snapshot if
// the subscriber has not drained its channel yet.
func sendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
