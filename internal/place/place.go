// Package place resolves opaque location references to named coordinates.
package place

import (
	"context"
	"fmt"
	"sync"

	"github.com/gravadigital/partyshare-api/internal/geo"
)

// StaticDirectory is a fixed in-memory place directory for development and
// tests.
type StaticDirectory struct {
	mu     sync.RWMutex
	places map[string]geo.Place
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{places: make(map[string]geo.Place)}
}

// Add registers a place under the given reference, replacing any previous
// entry.
func (d *StaticDirectory) Add(locationRef string, place geo.Place) {
	d.mu.Lock()
	d.places[locationRef] = place
	d.mu.Unlock()
}

func (d *StaticDirectory) Resolve(ctx context.Context, locationRef string) (geo.Place, error) {
	d.mu.RLock()
	place, ok := d.places[locationRef]
	d.mu.RUnlock()
	if !ok {
		return geo.Place{}, fmt.Errorf("unknown location reference %q", locationRef)
	}
	return place, nil
}

// Cached wraps a resolver and memoizes successful lookups. Location
// references are immutable identifiers, so entries never expire.
type Cached struct {
	next geo.PlaceResolver

	mu    sync.RWMutex
	cache map[string]geo.Place
}

func NewCached(next geo.PlaceResolver) *Cached {
	return &Cached{next: next, cache: make(map[string]geo.Place)}
}

func (c *Cached) Resolve(ctx context.Context, locationRef string) (geo.Place, error) {
	c.mu.RLock()
	place, ok := c.cache[locationRef]
	c.mu.RUnlock()
	if ok {
		return place, nil
	}

	place, err := c.next.Resolve(ctx, locationRef)
	if err != nil {
		return geo.Place{}, err
	}

	c.mu.Lock()
	c.cache[locationRef] = place
	c.mu.Unlock()
	return place, nil
}
