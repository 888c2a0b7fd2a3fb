// Package location supplies the current location fix.
package location

import (
	"context"

	"github.com/gravadigital/partyshare-api/internal/geo"
)

// Provider returns the device's current coordinate, one shot per call.
type Provider interface {
	CurrentLocation(ctx context.Context) (geo.Coordinate, error)
}

// Static always returns the same coordinate. Useful for tests and for
// deployments serving a single venue.
type Static struct {
	Coord geo.Coordinate
}

func (s Static) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	return s.Coord, nil
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context) (geo.Coordinate, error)

func (f Func) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	return f(ctx)
}
