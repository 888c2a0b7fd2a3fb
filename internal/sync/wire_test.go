package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
)

func validRecord() map[string]any {
	return map[string]any{
		"eventID":     "e1",
		"creatorUID":  "host",
		"name":        "Housewarming",
		"description": "Bring snacks",
		"location":    "Union Square",
		"date":        "2026-09-12T18:00:00Z",
	}
}

func TestDecodeRecord(t *testing.T) {
	value := validRecord()
	value["attending"] = map[string]any{"alice": float64(1), "bob": float64(1)}
	value["signups"] = map[string]any{
		"chips": map[string]any{"Quantity": "2", "userID": "alice"},
		"soda":  map[string]any{"Quantity": "6", "userID": "null"},
	}

	e, err := DecodeRecord("e1", value)
	require.NoError(t, err)

	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "host", e.CreatorID)
	assert.Equal(t, "Union Square", e.LocationRef)
	assert.Equal(t, time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC), e.StartTime.UTC())
	assert.Equal(t, map[string]bool{"alice": true, "bob": true}, e.Attendees)

	require.Contains(t, e.Signups, "chips")
	assert.Equal(t, event.Signup{Item: "chips", Quantity: 2, ClaimedBy: "alice"}, e.Signups["chips"])

	// "null" is the unclaimed sentinel, not a user id.
	require.Contains(t, e.Signups, "soda")
	assert.False(t, e.Signups["soda"].Claimed())
}

func TestDecodeRecord_MissingRequiredField(t *testing.T) {
	for _, field := range []string{"eventID", "creatorUID", "name", "description", "location", "date"} {
		value := validRecord()
		delete(value, field)

		_, err := DecodeRecord("e1", value)
		assert.ErrorIs(t, err, event.ErrMalformedRecord, "missing %s", field)
	}
}

func TestDecodeRecord_WrongFieldType(t *testing.T) {
	value := validRecord()
	value["name"] = 42

	_, err := DecodeRecord("e1", value)
	assert.ErrorIs(t, err, event.ErrMalformedRecord)
}

func TestDecodeRecord_UnparseableDate(t *testing.T) {
	value := validRecord()
	value["date"] = "next friday"

	_, err := DecodeRecord("e1", value)
	assert.ErrorIs(t, err, event.ErrMalformedRecord)
}

func TestDecodeRecord_ZonelessDate(t *testing.T) {
	value := validRecord()
	value["date"] = "2026-09-12T18:00:00"

	e, err := DecodeRecord("e1", value)
	require.NoError(t, err)
	assert.Equal(t, 2026, e.StartTime.Year())
	assert.Equal(t, 18, e.StartTime.Hour())
}

func TestDecodeRecord_OptionalFieldsDefaultEmpty(t *testing.T) {
	e, err := DecodeRecord("e1", validRecord())
	require.NoError(t, err)

	assert.NotNil(t, e.Attendees)
	assert.NotNil(t, e.Signups)
	assert.Empty(t, e.Attendees)
	assert.Empty(t, e.Signups)
}

func TestDecodeRecord_MalformedSignupEntriesSkipped(t *testing.T) {
	value := validRecord()
	value["signups"] = map[string]any{
		"chips":    map[string]any{"Quantity": "2", "userID": "null"},
		"notamap":  "bogus",
		"badqty":   map[string]any{"Quantity": "lots", "userID": "null"},
		"zeroqty":  map[string]any{"Quantity": "0", "userID": "null"},
		"negative": map[string]any{"Quantity": "-3", "userID": "null"},
	}

	e, err := DecodeRecord("e1", value)
	require.NoError(t, err)

	assert.Len(t, e.Signups, 1)
	assert.Contains(t, e.Signups, "chips")
}

func TestDecodeRecord_NumericQuantityTolerated(t *testing.T) {
	value := validRecord()
	value["signups"] = map[string]any{
		"chips": map[string]any{"Quantity": float64(3), "userID": "null"},
	}

	e, err := DecodeRecord("e1", value)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Signups["chips"].Quantity)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := &event.Event{
		ID:          "e7",
		CreatorID:   "host",
		Name:        "Potluck",
		Description: "Everyone brings a dish",
		LocationRef: "Dolores Park",
		StartTime:   time.Date(2026, 10, 3, 12, 30, 0, 0, time.UTC),
		Attendees:   map[string]bool{"alice": true},
		Signups: map[string]event.Signup{
			"plates": {Item: "plates", Quantity: 20, ClaimedBy: "alice"},
			"forks":  {Item: "forks", Quantity: 20},
		},
	}

	decoded, err := DecodeRecord(original.ID, EncodeEvent(original))
	require.NoError(t, err)

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.CreatorID, decoded.CreatorID)
	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, original.Description, decoded.Description)
	assert.Equal(t, original.LocationRef, decoded.LocationRef)
	assert.True(t, original.StartTime.Equal(decoded.StartTime))
	assert.Equal(t, original.Attendees, decoded.Attendees)
	assert.Equal(t, original.Signups, decoded.Signups)
}

func TestEncodeSignup_UnclaimedSentinel(t *testing.T) {
	encoded := EncodeSignup(event.Signup{Item: "chips", Quantity: 2})

	assert.Equal(t, "null", encoded["userID"])
	assert.Equal(t, "2", encoded["Quantity"], "quantities are persisted as strings")
}
