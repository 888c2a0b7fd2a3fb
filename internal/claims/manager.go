// Package claims translates user intent — create/edit/delete events, join
// and leave, add/remove/claim/release signup items — into remote store
// writes. The manager caches nothing: the remote store is the single source
// of truth, and a write becomes visible through the next snapshot push, not
// through any local read-after-write.
package claims

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
	"github.com/gravadigital/partyshare-api/internal/logger"
	"github.com/gravadigital/partyshare-api/internal/store"
	"github.com/gravadigital/partyshare-api/internal/sync"
	"github.com/gravadigital/partyshare-api/internal/validation"
)

// EventLookup exposes the last event set published by the sync engine.
type EventLookup interface {
	Latest() []*event.Event
}

// Manager performs inventory and roster mutations against one event at a
// time.
type Manager struct {
	store     store.Store
	events    EventLookup
	validator validation.EventValidation
	log       *log.Logger
}

func NewManager(st store.Store, events EventLookup) *Manager {
	return &Manager{
		store:  st,
		events: events,
		log:    logger.Claims(),
	}
}

// CreateEventInput carries the host-provided fields of a new event.
type CreateEventInput struct {
	CreatorID   string
	Name        string
	Description string
	LocationRef string
	StartTime   time.Time
}

// UpdateEventInput carries a host edit of an existing event.
type UpdateEventInput struct {
	Name        string
	Description string
	LocationRef string
	StartTime   time.Time
}

// CreateEvent assigns a fresh id, writes the event record and indexes it
// under the host's personal hosting list.
func (m *Manager) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	if err := validation.ValidateRequired(input.CreatorID, "creator_id"); err != nil {
		return nil, fmt.Errorf("%w: %s", event.ErrValidation, err)
	}
	if err := m.validateFields(input.Name, input.Description, input.LocationRef, input.StartTime); err != nil {
		return nil, err
	}

	e := event.New(input.CreatorID, input.Name, input.Description, input.LocationRef, input.StartTime)

	if err := m.write(ctx, store.Path(sync.EventsCollection, e.ID), sync.EncodeEvent(e)); err != nil {
		return nil, err
	}
	if err := m.write(ctx, store.Path(sync.UsersCollection, input.CreatorID, "hosting"), map[string]any{e.ID: 1}); err != nil {
		return nil, err
	}

	m.log.Info("Created event", "event_id", e.ID, "creator", input.CreatorID)
	return e, nil
}

// UpdateEvent merge-writes the editable fields of an event.
func (m *Manager) UpdateEvent(ctx context.Context, eventID string, input UpdateEventInput) error {
	if _, ok := m.findEvent(eventID); !ok {
		return event.ErrEventNotFound
	}
	if err := m.validateFields(input.Name, input.Description, input.LocationRef, input.StartTime); err != nil {
		return err
	}

	fields := map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"location":    input.LocationRef,
		"date":        sync.FormatDate(input.StartTime),
	}
	if err := m.write(ctx, store.Path(sync.EventsCollection, eventID), fields); err != nil {
		return err
	}
	m.log.Info("Updated event", "event_id", eventID)
	return nil
}

// DeleteEvent retracts the event from every attendee's personal attending
// index, then deletes the record itself. If interrupted between the two
// phases the leftover per-user references point at a missing event; that is
// recoverable, since absent events are simply skipped on the next sync.
func (m *Manager) DeleteEvent(ctx context.Context, eventID string) error {
	e, ok := m.findEvent(eventID)
	if !ok {
		return nil
	}

	for uid := range e.Attendees {
		if err := m.delete(ctx, store.Path(sync.UsersCollection, uid, "attending", eventID)); err != nil {
			return err
		}
	}
	if err := m.delete(ctx, store.Path(sync.UsersCollection, e.CreatorID, "hosting", eventID)); err != nil {
		return err
	}
	if err := m.delete(ctx, store.Path(sync.EventsCollection, eventID)); err != nil {
		return err
	}

	m.log.Info("Deleted event", "event_id", eventID, "attendees_retracted", len(e.Attendees))
	return nil
}

// JoinEvent adds the user to the event roster and to their own attending
// index.
func (m *Manager) JoinEvent(ctx context.Context, eventID, userID string) error {
	if _, ok := m.findEvent(eventID); !ok {
		return event.ErrEventNotFound
	}

	if err := m.write(ctx, store.Path(sync.EventsCollection, eventID, "attending"), map[string]any{userID: 1}); err != nil {
		return err
	}
	if err := m.write(ctx, store.Path(sync.UsersCollection, userID, "attending"), map[string]any{eventID: 1}); err != nil {
		return err
	}

	m.log.Info("User joined event", "event_id", eventID, "user", userID)
	return nil
}

// LeaveEvent removes the user from the event roster and from their own
// attending index. Leaving an absent event is already satisfied.
func (m *Manager) LeaveEvent(ctx context.Context, eventID, userID string) error {
	if err := m.delete(ctx, store.Path(sync.UsersCollection, userID, "attending", eventID)); err != nil {
		return err
	}
	if err := m.delete(ctx, store.Path(sync.EventsCollection, eventID, "attending", userID)); err != nil {
		return err
	}

	m.log.Info("User left event", "event_id", eventID, "user", userID)
	return nil
}

// RemoveParticipant is the host-side twin of LeaveEvent. The host
// restriction lives at the HTTP layer by convention; the core does not
// enforce it.
func (m *Manager) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	return m.LeaveEvent(ctx, eventID, userID)
}

// AddItem creates or overwrites a signup with the claim cleared.
func (m *Manager) AddItem(ctx context.Context, eventID, item string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", event.ErrInvalidQuantity, quantity)
	}
	if err := m.validator.ValidateItemName(item); err != nil {
		return fmt.Errorf("%w: %s", event.ErrValidation, err)
	}
	if _, ok := m.findEvent(eventID); !ok {
		return event.ErrEventNotFound
	}

	fields := map[string]any{
		"Quantity": strconv.Itoa(quantity),
		"userID":   sync.UnclaimedSentinel,
	}
	if err := m.write(ctx, store.Path(sync.EventsCollection, eventID, "signups", item), fields); err != nil {
		return err
	}

	m.log.Info("Added signup item", "event_id", eventID, "item", item, "quantity", quantity)
	return nil
}

// RemoveItem deletes a signup entry. Removing an absent item is already
// satisfied.
func (m *Manager) RemoveItem(ctx context.Context, eventID, item string) error {
	e, ok := m.findEvent(eventID)
	if !ok {
		return nil
	}
	if _, ok := e.Signup(item); !ok {
		return nil
	}

	if err := m.delete(ctx, store.Path(sync.EventsCollection, eventID, "signups", item)); err != nil {
		return err
	}
	m.log.Info("Removed signup item", "event_id", eventID, "item", item)
	return nil
}

// Claim sets the item's claimant to userID. This is a blind overwrite, not
// a compare-and-swap: the remote primitive offers no conditional write, so
// two concurrent claims both succeed and the later write wins silently.
// That lost-update behavior is preserved deliberately for interoperability
// with existing clients.
func (m *Manager) Claim(ctx context.Context, eventID, item, userID string) error {
	e, ok := m.findEvent(eventID)
	if !ok {
		return event.ErrEventNotFound
	}
	if _, ok := e.Signup(item); !ok {
		return event.ErrItemNotFound
	}

	if err := m.write(ctx, store.Path(sync.EventsCollection, eventID, "signups", item), map[string]any{"userID": userID}); err != nil {
		return err
	}

	m.log.Info("Claimed item", "event_id", eventID, "item", item, "user", userID)
	return nil
}

// Release clears the item's claimant back to the unclaimed sentinel. No
// ownership check: any caller can release any claim, as the original
// clients could. Releasing an absent item is already satisfied.
func (m *Manager) Release(ctx context.Context, eventID, item, userID string) error {
	e, ok := m.findEvent(eventID)
	if !ok {
		return nil
	}
	if _, ok := e.Signup(item); !ok {
		return nil
	}

	if err := m.write(ctx, store.Path(sync.EventsCollection, eventID, "signups", item), map[string]any{"userID": sync.UnclaimedSentinel}); err != nil {
		return err
	}

	m.log.Info("Released item", "event_id", eventID, "item", item, "user", userID)
	return nil
}

func (m *Manager) validateFields(name, description, locationRef string, startTime time.Time) error {
	if err := m.validator.ValidateEventName(name); err != nil {
		return fmt.Errorf("%w: %s", event.ErrValidation, err)
	}
	if err := m.validator.ValidateEventDescription(description); err != nil {
		return fmt.Errorf("%w: %s", event.ErrValidation, err)
	}
	if err := validation.ValidateRequired(locationRef, "location_ref"); err != nil {
		return fmt.Errorf("%w: %s", event.ErrValidation, err)
	}
	if err := validation.ValidateFutureDate(startTime, time.Now(), "start_time"); err != nil {
		return fmt.Errorf("%w: %s", event.ErrValidation, err)
	}
	return nil
}

// findEvent consults the last known snapshot. A write performed moments ago
// may not be reflected here yet; callers wait for the next push instead of
// reading their own writes locally.
func (m *Manager) findEvent(eventID string) (*event.Event, bool) {
	for _, e := range m.events.Latest() {
		if e.ID == eventID {
			return e, true
		}
	}
	return nil, false
}

func (m *Manager) write(ctx context.Context, path string, fields map[string]any) error {
	if err := m.store.Write(ctx, path, fields); err != nil {
		m.log.Error("Remote write failed", "path", path, "error", err)
		return fmt.Errorf("%w: %w", event.ErrRemoteUnavailable, err)
	}
	return nil
}

func (m *Manager) delete(ctx context.Context, path string) error {
	if err := m.store.Delete(ctx, path); err != nil {
		m.log.Error("Remote delete failed", "path", path, "error", err)
		return fmt.Errorf("%w: %w", event.ErrRemoteUnavailable, err)
	}
	return nil
}
