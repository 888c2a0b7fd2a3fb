// Package sync owns the subscription to the remote event collection. On
// every snapshot push it decodes all records, drops the malformed ones,
// deduplicates by event id and republishes the full set to its observers.
package sync

import (
	stdsync "sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
	"github.com/gravadigital/partyshare-api/internal/logger"
	"github.com/gravadigital/partyshare-api/internal/store"
)

// Handle identifies one engine observer for unsubscription.
type Handle string

// ObserverFunc receives the full deduplicated event set after each snapshot
// push. The slice is shared between observers and must be treated as read
// only.
type ObserverFunc func([]*event.Event)

// Engine transforms remote snapshot pushes into deduplicated in-memory
// event sets. It holds no state beyond the last published set and never
// mutates remote data.
type Engine struct {
	store store.Store
	log   *log.Logger

	mu          stdsync.Mutex
	observers   map[Handle]*observer
	latest      []*event.Event
	hasSnapshot bool
	sub         store.Subscription
}

func New(st store.Store) *Engine {
	return &Engine{
		store:     st,
		log:       logger.Sync(),
		observers: make(map[Handle]*observer),
	}
}

// Start subscribes the engine to the remote event collection.
func (e *Engine) Start() error {
	sub, err := e.store.Subscribe(EventsCollection, e.onSnapshot)
	if err != nil {
		e.log.Error("Failed to subscribe to event collection", "error", err)
		return err
	}
	e.mu.Lock()
	e.sub = sub
	e.mu.Unlock()
	e.log.Info("Sync engine started", "collection", EventsCollection)
	return nil
}

// Stop cancels the remote subscription.
func (e *Engine) Stop() {
	e.mu.Lock()
	sub := e.sub
	e.sub = nil
	e.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
	e.log.Info("Sync engine stopped")
}

// Subscribe registers an observer. If a snapshot has already been seen the
// current set is delivered before Subscribe returns.
func (e *Engine) Subscribe(fn ObserverFunc) Handle {
	handle := Handle(uuid.NewString())
	obs := &observer{fn: fn}

	e.mu.Lock()
	e.observers[handle] = obs
	events := e.latest
	deliver := e.hasSnapshot
	e.mu.Unlock()

	if deliver {
		obs.deliver(events)
	}
	return handle
}

// Unsubscribe removes an observer. It blocks until any in-flight delivery
// to that observer completes; afterwards the callback is never invoked
// again.
func (e *Engine) Unsubscribe(handle Handle) {
	e.mu.Lock()
	obs := e.observers[handle]
	delete(e.observers, handle)
	e.mu.Unlock()

	if obs != nil {
		obs.close()
	}
}

// Latest returns the most recently published event set. The caller must
// not mutate the returned events.
func (e *Engine) Latest() []*event.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*event.Event, len(e.latest))
	copy(out, e.latest)
	return out
}

// onSnapshot recomputes the full event set from one push. No incremental
// diffing: correctness over cleverness at this collection size.
func (e *Engine) onSnapshot(snap store.Snapshot) {
	events := make([]*event.Event, 0, len(snap))
	seen := make(map[string]bool, len(snap))

	for _, record := range snap {
		ev, err := DecodeRecord(record.Key, record.Value)
		if err != nil {
			e.log.Warn("Skipping malformed record", "key", record.Key, "error", err)
			continue
		}
		if seen[ev.ID] {
			// First occurrence wins; later duplicates in the same
			// snapshot are dropped.
			e.log.Debug("Dropping duplicate record", "key", record.Key, "event_id", ev.ID)
			continue
		}
		seen[ev.ID] = true
		events = append(events, ev)
	}

	e.mu.Lock()
	e.latest = events
	e.hasSnapshot = true
	targets := make([]*observer, 0, len(e.observers))
	for _, obs := range e.observers {
		targets = append(targets, obs)
	}
	e.mu.Unlock()

	e.log.Debug("Published snapshot", "records", len(snap), "events", len(events), "observers", len(targets))
	for _, obs := range targets {
		obs.deliver(events)
	}
}

type observer struct {
	mu     stdsync.Mutex
	closed bool
	fn     ObserverFunc
}

func (o *observer) deliver(events []*event.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.fn(events)
}

func (o *observer) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}
