package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(id, creator string, start time.Time, attendees ...string) *Event {
	e := New(creator, "Party "+id, "desc", "place-"+id, start)
	e.ID = id
	for _, uid := range attendees {
		e.Attendees[uid] = true
	}
	return e
}

func TestCategorize_PassedBeatsHosted(t *testing.T) {
	now := time.Now()
	hostedButOver := testEvent("e1", "me", now.Add(-time.Hour))

	b := Categorize([]*Event{hostedButOver}, "me", now)

	require.Len(t, b.Passed, 1)
	assert.Empty(t, b.Hosted, "an event the user hosts that already started must appear as passed")
	assert.Empty(t, b.Attending)
	assert.Empty(t, b.NearbyCandidates)
}

func TestCategorize_Buckets(t *testing.T) {
	now := time.Now()
	events := []*Event{
		testEvent("hosted", "me", now.Add(time.Hour)),
		testEvent("attending", "other", now.Add(time.Hour), "me"),
		testEvent("passed", "other", now.Add(-time.Hour), "me"),
		testEvent("nearby", "other", now.Add(time.Hour), "someone-else"),
	}

	b := Categorize(events, "me", now)

	require.Len(t, b.Hosted, 1)
	require.Len(t, b.Attending, 1)
	require.Len(t, b.Passed, 1)
	require.Len(t, b.NearbyCandidates, 1)
	assert.Equal(t, "hosted", b.Hosted[0].ID)
	assert.Equal(t, "attending", b.Attending[0].ID)
	assert.Equal(t, "passed", b.Passed[0].ID)
	assert.Equal(t, "nearby", b.NearbyCandidates[0].ID)
}

func TestCategorize_PartitionIsDisjointAndComplete(t *testing.T) {
	now := time.Now()
	events := []*Event{
		testEvent("a", "me", now.Add(-2*time.Hour)),
		testEvent("b", "me", now.Add(time.Minute)),
		testEvent("c", "x", now.Add(time.Minute), "me"),
		testEvent("d", "x", now.Add(time.Minute)),
		testEvent("e", "x", now.Add(-time.Minute), "y"),
	}

	b := Categorize(events, "me", now)

	seen := make(map[string]int)
	for _, bucket := range [][]*Event{b.Hosted, b.Attending, b.Passed, b.NearbyCandidates} {
		for _, e := range bucket {
			seen[e.ID]++
		}
	}

	assert.Len(t, seen, len(events), "every event lands in a bucket")
	for id, count := range seen {
		assert.Equal(t, 1, count, "event %s appears in exactly one bucket", id)
	}
}
