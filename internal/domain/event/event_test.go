package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_EqualByIDOnly(t *testing.T) {
	a := &Event{ID: "e1", Name: "Housewarming", CreatorID: "host"}
	b := &Event{ID: "e1", Name: "Totally different", CreatorID: "someone-else"}
	c := &Event{ID: "e2", Name: "Housewarming", CreatorID: "host"}

	assert.True(t, a.Equal(b), "events with equal ids are the same entity")
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestNew_AssignsID(t *testing.T) {
	e := New("host", "BBQ", "Bring snacks", "place-1", time.Now().Add(24*time.Hour))

	require.NotEmpty(t, e.ID)
	assert.Equal(t, "host", e.CreatorID)
	assert.NotNil(t, e.Attendees)
	assert.NotNil(t, e.Signups)
	assert.NoError(t, e.Validate())

	other := New("host", "BBQ", "Bring snacks", "place-1", time.Now().Add(24*time.Hour))
	assert.NotEqual(t, e.ID, other.ID)
}

func TestEvent_Validate(t *testing.T) {
	valid := func() *Event {
		return New("host", "BBQ", "Bring snacks", "place-1", time.Now().Add(time.Hour))
	}

	e := valid()
	e.Name = ""
	assert.ErrorIs(t, e.Validate(), ErrValidation)

	e = valid()
	e.Description = ""
	assert.ErrorIs(t, e.Validate(), ErrValidation)

	e = valid()
	e.Signups["chips"] = Signup{Item: "chips", Quantity: 0}
	assert.ErrorIs(t, e.Validate(), ErrValidation)
}

func TestEvent_IsAttending(t *testing.T) {
	e := New("host", "BBQ", "Bring snacks", "place-1", time.Now().Add(time.Hour))
	e.Attendees["alice"] = true

	assert.True(t, e.IsAttending("alice"))
	assert.False(t, e.IsAttending("bob"))
	// The creator is implicitly attending but not listed in the roster.
	assert.False(t, e.IsAttending("host"))
}

func TestSignup_Claimed(t *testing.T) {
	assert.False(t, Signup{Item: "chips", Quantity: 2}.Claimed())
	assert.True(t, Signup{Item: "chips", Quantity: 2, ClaimedBy: "alice"}.Claimed())
}
