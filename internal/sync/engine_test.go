package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
	"github.com/gravadigital/partyshare-api/internal/store"
	"github.com/gravadigital/partyshare-api/internal/store/memory"
)

func writeEvent(t *testing.T, st *memory.Store, id string) {
	t.Helper()
	e := &event.Event{
		ID:          id,
		CreatorID:   "host",
		Name:        "Party " + id,
		Description: "desc",
		LocationRef: "somewhere",
		StartTime:   time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.Write(context.Background(), store.Path(EventsCollection, id), EncodeEvent(e)))
}

func startedEngine(t *testing.T, st *memory.Store) *Engine {
	t.Helper()
	engine := New(st)
	require.NoError(t, engine.Start())
	t.Cleanup(engine.Stop)
	return engine
}

func TestEngine_PublishesDecodedEvents(t *testing.T) {
	st := memory.New()
	writeEvent(t, st, "e1")
	writeEvent(t, st, "e2")

	engine := startedEngine(t, st)

	var got []*event.Event
	engine.Subscribe(func(events []*event.Event) { got = events })

	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)
	assert.Len(t, engine.Latest(), 2)
}

func TestEngine_SubscribeBeforeFirstSnapshotSeesNextPush(t *testing.T) {
	st := memory.New()
	engine := startedEngine(t, st)

	var sets [][]*event.Event
	engine.Subscribe(func(events []*event.Event) {
		sets = append(sets, events)
	})
	// The store is empty, so the initial delivery carries zero events.
	require.Len(t, sets, 1)
	assert.Empty(t, sets[0])

	writeEvent(t, st, "e1")
	require.Len(t, sets, 2)
	assert.Len(t, sets[1], 1)
}

func TestEngine_SkipsMalformedRecords(t *testing.T) {
	st := memory.New()
	writeEvent(t, st, "good")
	// Well formed except for the missing description.
	require.NoError(t, st.Write(context.Background(), store.Path(EventsCollection, "broken"), map[string]any{
		"eventID":    "broken",
		"creatorUID": "host",
		"name":       "Broken party",
		"location":   "somewhere",
		"date":       "2026-09-12T18:00:00Z",
	}))

	engine := startedEngine(t, st)

	latest := engine.Latest()
	require.Len(t, latest, 1)
	assert.Equal(t, "good", latest[0].ID)
}

func TestEngine_DuplicateIDsFirstOccurrenceWins(t *testing.T) {
	st := memory.New()
	record := map[string]any{
		"eventID":     "dup",
		"creatorUID":  "host",
		"name":        "First copy",
		"description": "desc",
		"location":    "somewhere",
		"date":        "2026-09-12T18:00:00Z",
	}
	require.NoError(t, st.Write(context.Background(), store.Path(EventsCollection, "a-first"), record))

	second := store.DeepCopy(record)
	second["name"] = "Second copy"
	require.NoError(t, st.Write(context.Background(), store.Path(EventsCollection, "b-second"), second))

	engine := startedEngine(t, st)

	latest := engine.Latest()
	require.Len(t, latest, 1)
	// Snapshots arrive in key order, so the record under the smaller key is
	// the one that survives.
	assert.Equal(t, "First copy", latest[0].Name)
}

func TestEngine_UnsubscribeStopsDelivery(t *testing.T) {
	st := memory.New()
	engine := startedEngine(t, st)

	calls := 0
	handle := engine.Subscribe(func([]*event.Event) { calls++ })
	require.Equal(t, 1, calls)

	engine.Unsubscribe(handle)
	writeEvent(t, st, "e1")

	assert.Equal(t, 1, calls, "no delivery after Unsubscribe returns")
}

func TestEngine_EachObserverSeesWholeSet(t *testing.T) {
	st := memory.New()
	writeEvent(t, st, "e1")
	writeEvent(t, st, "e2")
	writeEvent(t, st, "e3")

	engine := startedEngine(t, st)

	var sizes []int
	engine.Subscribe(func(events []*event.Event) { sizes = append(sizes, len(events)) })
	writeEvent(t, st, "e4")

	assert.Equal(t, []int{3, 4}, sizes, "observers always receive the full set, never a partial one")
}

func TestEngine_StopCancelsSubscription(t *testing.T) {
	st := memory.New()
	engine := New(st)
	require.NoError(t, engine.Start())

	calls := 0
	engine.Subscribe(func([]*event.Event) { calls++ })
	engine.Stop()

	writeEvent(t, st, "e1")
	assert.Equal(t, 1, calls)
}
