// Package postgres backs the record store with PostgreSQL. Each top-level
// record is one row holding a JSON document; nested-path writes merge into
// the document under a row lock. Snapshot pushes are driven by
// LISTEN/NOTIFY, with a polling ticker as fallback for missed
// notifications.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/partyshare-api/internal/logger"
	"github.com/gravadigital/partyshare-api/internal/store"
)

// notifyChannel is the pg_notify channel carrying changed collection names.
const notifyChannel = "partyshare_records"

type recordRow struct {
	Collection string    `gorm:"primaryKey;size:64"`
	Key        string    `gorm:"primaryKey;size:128"`
	Document   string    `gorm:"type:jsonb;not null;default:'{}'"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (recordRow) TableName() string {
	return "records"
}

// Store implements store.Store on top of PostgreSQL.
type Store struct {
	db           *gorm.DB
	dsn          string
	pollInterval time.Duration
	log          *log.Logger

	mu      sync.Mutex
	subs    map[string]map[string]*subscription
	stop    chan struct{}
	started bool
}

// New creates a Postgres-backed store. dsn is reused for the LISTEN
// connection; pollInterval bounds how stale a snapshot can get if a
// notification is lost.
func New(db *gorm.DB, dsn string, pollInterval time.Duration) *Store {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Store{
		db:           db,
		dsn:          dsn,
		pollInterval: pollInterval,
		log:          logger.Store("postgres"),
		subs:         make(map[string]map[string]*subscription),
		stop:         make(chan struct{}),
	}
}

// Write merges fields into the record subtree addressed by path and
// notifies listeners of the changed collection.
func (s *Store) Write(ctx context.Context, path string, fields map[string]any) error {
	segments := store.SplitPath(path)
	if len(segments) < 2 {
		return fmt.Errorf("write path %q must address a record", path)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := loadDocument(tx, segments[0], segments[1])
		if err != nil {
			return err
		}
		store.WriteAt(doc, segments[2:], fields)
		return saveDocument(tx, segments[0], segments[1], doc)
	})
	if err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}

	s.notify(ctx, segments[0])
	return nil
}

// Delete removes the record subtree addressed by path.
func (s *Store) Delete(ctx context.Context, path string) error {
	segments := store.SplitPath(path)
	if len(segments) < 2 {
		return fmt.Errorf("delete path %q must address a record", path)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(segments) == 2 {
			return tx.Where("collection = ? AND key = ?", segments[0], segments[1]).
				Delete(&recordRow{}).Error
		}

		doc, err := loadDocument(tx, segments[0], segments[1])
		if err != nil {
			return err
		}
		store.DeleteAt(doc, segments[2:])
		return saveDocument(tx, segments[0], segments[1], doc)
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", path, err)
	}

	s.notify(ctx, segments[0])
	return nil
}

// Subscribe registers fn for full snapshots of a collection. The current
// snapshot is delivered before Subscribe returns; afterwards pushes follow
// NOTIFY events and the polling ticker.
func (s *Store) Subscribe(collection string, fn store.SnapshotFunc) (store.Subscription, error) {
	snap, err := s.snapshot(collection)
	if err != nil {
		return nil, err
	}

	sub := &subscription{store: s, collection: collection, id: uuid.NewString(), fn: fn}

	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[string]*subscription)
	}
	s.subs[collection][sub.id] = sub
	if !s.started {
		s.started = true
		go s.pump()
	}
	s.mu.Unlock()

	sub.deliver(snap)
	return sub, nil
}

// Stop shuts down the notification pump. Outstanding subscriptions stop
// receiving pushes.
func (s *Store) Stop() {
	s.mu.Lock()
	if s.started {
		close(s.stop)
		s.started = false
	}
	s.mu.Unlock()
}

// pump listens for NOTIFY events and polls as a safety net, pushing fresh
// snapshots to subscribers.
func (s *Store) pump() {
	listener := pq.NewListener(s.dsn, time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			s.log.Warn("Listener event", "event", event, "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(notifyChannel); err != nil {
		s.log.Error("Failed to LISTEN, relying on polling only", "channel", notifyChannel, "error", err)
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case n := <-listener.Notify:
			if n == nil {
				// Connection reset; the next poll resynchronizes.
				continue
			}
			s.push(n.Extra)
		case <-ticker.C:
			for _, collection := range s.subscribedCollections() {
				s.push(collection)
			}
		}
	}
}

func (s *Store) subscribedCollections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	collections := make([]string, 0, len(s.subs))
	for collection, subs := range s.subs {
		if len(subs) > 0 {
			collections = append(collections, collection)
		}
	}
	return collections
}

func (s *Store) push(collection string) {
	s.mu.Lock()
	targets := make([]*subscription, 0, len(s.subs[collection]))
	for _, sub := range s.subs[collection] {
		targets = append(targets, sub)
	}
	s.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	snap, err := s.snapshot(collection)
	if err != nil {
		s.log.Error("Failed to load snapshot", "collection", collection, "error", err)
		return
	}
	for _, sub := range targets {
		sub.deliver(snap)
	}
}

func (s *Store) snapshot(collection string) (store.Snapshot, error) {
	var rows []recordRow
	if err := s.db.Where("collection = ?", collection).Order("key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load collection %q: %w", collection, err)
	}

	snap := make(store.Snapshot, 0, len(rows))
	for _, row := range rows {
		var doc map[string]any
		if err := json.Unmarshal([]byte(row.Document), &doc); err != nil {
			// Tolerated: downstream decoding skips malformed records.
			s.log.Warn("Record document is not valid JSON", "collection", collection, "key", row.Key)
			doc = nil
		}
		snap = append(snap, store.Record{Key: row.Key, Value: doc})
	}
	return snap, nil
}

func (s *Store) notify(ctx context.Context, collection string) {
	if err := s.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", notifyChannel, collection).Error; err != nil {
		// Pushes fall back to the poll ticker.
		s.log.Warn("pg_notify failed", "collection", collection, "error", err)
	}
}

func loadDocument(tx *gorm.DB, collection, key string) (map[string]any, error) {
	var row recordRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection = ? AND key = ?", collection, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any)
	if err := json.Unmarshal([]byte(row.Document), &doc); err != nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

func saveDocument(tx *gorm.DB, collection, key string, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	row := recordRow{Collection: collection, Key: key, Document: string(raw)}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&row).Error
}

type subscription struct {
	store      *Store
	collection string
	id         string

	mu     sync.Mutex
	closed bool
	fn     store.SnapshotFunc
}

func (sub *subscription) deliver(snap store.Snapshot) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.fn(snap)
}

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
