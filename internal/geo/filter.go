// Package geo filters nearby-candidate events by great-circle distance from
// a location fix. Place resolution is asynchronous and per event; a slow or
// failed resolution never blocks the rest of the candidate list.
package geo

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
	"github.com/gravadigital/partyshare-api/internal/logger"
)

// DefaultCutoffMeters is the observed nearby radius: 100 km.
const DefaultCutoffMeters = 100000

// Place is a resolved location: a display name and a coordinate.
type Place struct {
	Name       string
	Coordinate Coordinate
}

// PlaceResolver resolves an opaque location reference. Calls may fail
// independently of one another.
type PlaceResolver interface {
	Resolve(ctx context.Context, locationRef string) (Place, error)
}

// ResultFunc receives the filtered event list for one candidate set.
type ResultFunc func([]*event.Event)

// Filter retains candidate events within a fixed radius of a location fix.
// Each Filter call supersedes the previous one: results computed for an
// older candidate list are discarded instead of being merged into a newer
// one.
type Filter struct {
	places PlaceResolver
	cutoff float64
	log    *log.Logger

	mu         sync.Mutex
	generation uint64
}

func NewFilter(places PlaceResolver, cutoffMeters float64) *Filter {
	if cutoffMeters <= 0 {
		cutoffMeters = DefaultCutoffMeters
	}
	return &Filter{
		places: places,
		cutoff: cutoffMeters,
		log:    logger.Geo(),
	}
}

// Filter resolves every candidate's place concurrently, keeps the events
// within the cutoff and delivers them in candidate order. A candidate whose
// resolution fails is kept, matching the observed behavior of the original
// filter. If a newer Filter call starts before this one finishes, deliver
// is never invoked for the stale result.
func (f *Filter) Filter(ctx context.Context, candidates []*event.Event, fix Coordinate, deliver ResultFunc) {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.mu.Unlock()

	go f.run(ctx, gen, candidates, fix, deliver)
}

func (f *Filter) run(ctx context.Context, gen uint64, candidates []*event.Event, fix Coordinate, deliver ResultFunc) {
	keep := make([]bool, len(candidates))
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate *event.Event) {
			defer wg.Done()
			place, err := f.places.Resolve(ctx, candidate.LocationRef)
			if err != nil {
				f.log.Warn("Place resolution failed, keeping candidate",
					"event_id", candidate.ID, "location_ref", candidate.LocationRef, "error", err)
				keep[i] = true
				return
			}
			distance := Distance(fix, place.Coordinate)
			keep[i] = distance <= f.cutoff
			f.log.Debug("Resolved candidate place",
				"event_id", candidate.ID, "place", place.Name, "distance_m", distance, "kept", keep[i])
		}(i, candidate)
	}
	wg.Wait()

	filtered := make([]*event.Event, 0, len(candidates))
	for i, candidate := range candidates {
		if keep[i] {
			filtered = append(filtered, candidate)
		}
	}

	// Delivery happens under the generation lock: a superseded run can
	// never deliver once a newer Filter call has started. deliver must not
	// call back into Filter.
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen {
		f.log.Debug("Discarding stale filter result", "generation", gen)
		return
	}
	deliver(filtered)
}
