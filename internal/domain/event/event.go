package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event represents a hosted party with an attendee roster and a shared
// inventory of item signups.
type Event struct {
	ID          string            `json:"id"`
	CreatorID   string            `json:"creator_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	LocationRef string            `json:"location_ref"`
	StartTime   time.Time         `json:"start_time"`
	Attendees   map[string]bool   `json:"attendees"`
	Signups     map[string]Signup `json:"signups"`
}

// Signup is one inventory item entry within an event. ClaimedBy is empty
// while the item is unclaimed.
type Signup struct {
	Item      string `json:"item"`
	Quantity  int    `json:"quantity"`
	ClaimedBy string `json:"claimed_by,omitempty"`
}

// Claimed reports whether the signup has a claimant.
func (s Signup) Claimed() bool {
	return s.ClaimedBy != ""
}

// New creates a new event hosted by creatorID with a freshly assigned id.
func New(creatorID, name, description, locationRef string, startTime time.Time) *Event {
	return &Event{
		ID:          uuid.NewString(),
		CreatorID:   creatorID,
		Name:        name,
		Description: description,
		LocationRef: locationRef,
		StartTime:   startTime,
		Attendees:   make(map[string]bool),
		Signups:     make(map[string]Signup),
	}
}

// Equal compares events by identifier only. Two events with the same id are
// the same entity no matter how the remaining fields differ; the sync
// engine's dedup relies on this.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID
}

// IsCreator checks if the given user is the host of this event
func (e *Event) IsCreator(userID string) bool {
	return e.CreatorID == userID
}

// IsAttending checks if the given user has joined this event. The creator is
// implicitly attending and is not listed in the roster.
func (e *Event) IsAttending(userID string) bool {
	return e.Attendees[userID]
}

// HasPassed reports whether the event's start time is before now.
func (e *Event) HasPassed(now time.Time) bool {
	return e.StartTime.Before(now)
}

// Signup returns the signup for the given item, if present.
func (e *Event) Signup(item string) (Signup, bool) {
	s, ok := e.Signups[item]
	return s, ok
}

// Validate checks if the event data is valid
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if e.CreatorID == "" {
		return fmt.Errorf("%w: creator_id is required", ErrValidation)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if e.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if e.LocationRef == "" {
		return fmt.Errorf("%w: location_ref is required", ErrValidation)
	}
	if e.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrValidation)
	}
	for item, s := range e.Signups {
		if s.Quantity <= 0 {
			return fmt.Errorf("%w: signup %q has non-positive quantity", ErrValidation, item)
		}
	}
	return nil
}
