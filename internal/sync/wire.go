package sync

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
)

// Persisted record field names. These match the records already in remote
// storage and must not drift.
const (
	fieldEventID     = "eventID"
	fieldCreatorUID  = "creatorUID"
	fieldName        = "name"
	fieldDescription = "description"
	fieldLocation    = "location"
	fieldDate        = "date"
	fieldAttending   = "attending"
	fieldSignups     = "signups"

	fieldQuantity = "Quantity"
	fieldUserID   = "userID"
)

// UnclaimedSentinel is the literal stored for an unclaimed signup. It is a
// string, not an absent key; existing remote data depends on it.
const UnclaimedSentinel = "null"

// EventsCollection is the store collection holding event records.
const EventsCollection = "events"

// UsersCollection holds per-user personal indexes (hosting/attending).
const UsersCollection = "users"

// Date strings are ISO-8601 with year/month/day/time components. Records
// written by older clients omit the zone designator.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// DecodeRecord converts one raw remote record into a validated Event. It
// fails if any required field is missing or has the wrong shape; optional
// fields (attending, signups) default to empty and never cause rejection.
// Decoding is pure: a malformed record must not disturb the rest of the
// batch.
func DecodeRecord(key string, value map[string]any) (*event.Event, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: record %q has no value", event.ErrMalformedRecord, key)
	}

	required := make(map[string]string, 6)
	for _, field := range []string{fieldDate, fieldName, fieldCreatorUID, fieldEventID, fieldLocation, fieldDescription} {
		s, ok := value[field].(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%w: record %q missing field %q", event.ErrMalformedRecord, key, field)
		}
		required[field] = s
	}

	startTime, err := parseDate(required[fieldDate])
	if err != nil {
		return nil, fmt.Errorf("%w: record %q has unparseable date %q", event.ErrMalformedRecord, key, required[fieldDate])
	}

	return &event.Event{
		ID:          required[fieldEventID],
		CreatorID:   required[fieldCreatorUID],
		Name:        required[fieldName],
		Description: required[fieldDescription],
		LocationRef: required[fieldLocation],
		StartTime:   startTime,
		Attendees:   decodeAttending(value[fieldAttending]),
		Signups:     decodeSignups(value[fieldSignups]),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func decodeAttending(raw any) map[string]bool {
	attendees := make(map[string]bool)
	m, ok := raw.(map[string]any)
	if !ok {
		return attendees
	}
	for uid := range m {
		attendees[uid] = true
	}
	return attendees
}

func decodeSignups(raw any) map[string]event.Signup {
	signups := make(map[string]event.Signup)
	m, ok := raw.(map[string]any)
	if !ok {
		return signups
	}
	for item, rawEntry := range m {
		entry, ok := rawEntry.(map[string]any)
		if !ok {
			continue
		}
		quantity, ok := decodeQuantity(entry[fieldQuantity])
		if !ok {
			continue
		}
		claimedBy := ""
		if uid, ok := entry[fieldUserID].(string); ok && uid != UnclaimedSentinel {
			claimedBy = uid
		}
		signups[item] = event.Signup{Item: item, Quantity: quantity, ClaimedBy: claimedBy}
	}
	return signups
}

// Quantities are persisted as strings; tolerate numbers written by other
// clients. Non-positive values are dropped with the entry.
func decodeQuantity(raw any) (int, bool) {
	switch v := raw.(type) {
	case string:
		q, err := strconv.Atoi(v)
		if err != nil || q <= 0 {
			return 0, false
		}
		return q, true
	case float64:
		q := int(v)
		if float64(q) != v || q <= 0 {
			return 0, false
		}
		return q, true
	case int:
		if v <= 0 {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// EncodeEvent converts an event into the persisted record shape.
func EncodeEvent(e *event.Event) map[string]any {
	record := map[string]any{
		fieldEventID:     e.ID,
		fieldCreatorUID:  e.CreatorID,
		fieldName:        e.Name,
		fieldDescription: e.Description,
		fieldLocation:    e.LocationRef,
		fieldDate:        FormatDate(e.StartTime),
	}
	if len(e.Attendees) > 0 {
		attending := make(map[string]any, len(e.Attendees))
		for uid := range e.Attendees {
			attending[uid] = 1
		}
		record[fieldAttending] = attending
	}
	if len(e.Signups) > 0 {
		signups := make(map[string]any, len(e.Signups))
		for item, s := range e.Signups {
			signups[item] = EncodeSignup(s)
		}
		record[fieldSignups] = signups
	}
	return record
}

// EncodeSignup converts a signup into its persisted entry shape.
func EncodeSignup(s event.Signup) map[string]any {
	claimedBy := s.ClaimedBy
	if claimedBy == "" {
		claimedBy = UnclaimedSentinel
	}
	return map[string]any{
		fieldQuantity: strconv.Itoa(s.Quantity),
		fieldUserID:   claimedBy,
	}
}

// FormatDate renders a timestamp in the persisted ISO-8601 form.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
