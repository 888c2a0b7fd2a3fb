// Package memory provides an in-memory store backend. It backs tests and
// development mode; every mutation pushes a fresh full snapshot to the
// collection's subscribers on the writer's goroutine.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gravadigital/partyshare-api/internal/store"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	subs        map[string]map[string]*subscription
	seqs        map[string]uint64
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[string]map[string]*subscription),
		seqs:        make(map[string]uint64),
	}
}

// Write merges fields into the subtree addressed by path, creating the
// record and intermediate maps as needed.
func (s *Store) Write(ctx context.Context, path string, fields map[string]any) error {
	segments := store.SplitPath(path)
	if len(segments) < 2 {
		return fmt.Errorf("write path %q must address a record", path)
	}
	collection := segments[0]

	s.mu.Lock()
	records := s.collections[collection]
	if records == nil {
		records = make(map[string]map[string]any)
		s.collections[collection] = records
	}
	record := records[segments[1]]
	if record == nil {
		record = make(map[string]any)
		records[segments[1]] = record
	}

	store.WriteAt(record, segments[2:], fields)

	seq, snap := s.snapshotLocked(collection)
	targets := s.subscribersLocked(collection)
	s.mu.Unlock()

	deliver(targets, seq, snap)
	return nil
}

// Delete removes the subtree addressed by path. Deleting an absent subtree
// is a no-op, but still pushes a snapshot so callers converge.
func (s *Store) Delete(ctx context.Context, path string) error {
	segments := store.SplitPath(path)
	if len(segments) < 2 {
		return fmt.Errorf("delete path %q must address a record", path)
	}
	collection := segments[0]

	s.mu.Lock()
	records := s.collections[collection]
	if records != nil {
		if len(segments) == 2 {
			delete(records, segments[1])
		} else if record := records[segments[1]]; record != nil {
			store.DeleteAt(record, segments[2:])
		}
	}

	seq, snap := s.snapshotLocked(collection)
	targets := s.subscribersLocked(collection)
	s.mu.Unlock()

	deliver(targets, seq, snap)
	return nil
}

// Subscribe registers fn for full-collection snapshots. The current
// snapshot is delivered before Subscribe returns, mirroring the remote
// primitive's observe semantics.
func (s *Store) Subscribe(collection string, fn store.SnapshotFunc) (store.Subscription, error) {
	sub := &subscription{store: s, collection: collection, id: uuid.NewString(), fn: fn}

	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[string]*subscription)
	}
	s.subs[collection][sub.id] = sub
	seq, snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	sub.deliver(seq, snap)
	return sub, nil
}

// snapshotLocked assigns the next sequence number for the collection and
// builds the snapshot under the store lock, so sequence order equals the
// order snapshots were computed in.
func (s *Store) snapshotLocked(collection string) (uint64, store.Snapshot) {
	s.seqs[collection]++
	seq := s.seqs[collection]

	records := s.collections[collection]
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := make(store.Snapshot, 0, len(keys))
	for _, k := range keys {
		snap = append(snap, store.Record{Key: k, Value: store.DeepCopy(records[k])})
	}
	return seq, snap
}

func (s *Store) subscribersLocked(collection string) []*subscription {
	targets := make([]*subscription, 0, len(s.subs[collection]))
	for _, sub := range s.subs[collection] {
		targets = append(targets, sub)
	}
	return targets
}

func deliver(targets []*subscription, seq uint64, snap store.Snapshot) {
	for _, sub := range targets {
		sub.deliver(seq, snap)
	}
}

type subscription struct {
	store      *Store
	collection string
	id         string

	mu      sync.Mutex
	closed  bool
	lastSeq uint64
	fn      store.SnapshotFunc
}

// deliver applies snapshots in the order they were computed. A delivery that
// lost the race to a newer snapshot is dropped, so subscribers never observe
// state moving backwards.
func (sub *subscription) deliver(seq uint64, snap store.Snapshot) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed || seq <= sub.lastSeq {
		return
	}
	sub.lastSeq = seq
	sub.fn(snap)
}

// Unsubscribe blocks until any in-flight delivery completes; afterwards the
// callback is never invoked again.
func (sub *subscription) Unsubscribe() {
	sub.mu.Lock()
	sub.closed = true
	sub.mu.Unlock()

	sub.store.mu.Lock()
	if subs := sub.store.subs[sub.collection]; subs != nil {
		delete(subs, sub.id)
	}
	sub.store.mu.Unlock()
}
