package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
	"github.com/gravadigital/partyshare-api/internal/geo"
	"github.com/gravadigital/partyshare-api/internal/location"
	"github.com/gravadigital/partyshare-api/internal/response"
	"github.com/gravadigital/partyshare-api/internal/sync"
)

// nearbyTimeout bounds how long a request waits for place resolutions.
const nearbyTimeout = 10 * time.Second

type NearbyHandler struct {
	engine    *sync.Engine
	places    geo.PlaceResolver
	cutoff    float64
	locations location.Provider
}

func NewNearbyHandler(engine *sync.Engine, places geo.PlaceResolver, cutoffMeters float64, locations location.Provider) *NearbyHandler {
	return &NearbyHandler{
		engine:    engine,
		places:    places,
		cutoff:    cutoffMeters,
		locations: locations,
	}
}

// ListNearby handles GET /api/events/nearby. The location fix comes from
// lat/lng query parameters, falling back to the configured location
// provider. Candidates are the future events the caller neither hosts nor
// attends, filtered by distance.
func (h *NearbyHandler) ListNearby(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	fix, err := h.locationFix(c)
	if err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	candidates := event.Categorize(h.engine.Latest(), uid, time.Now()).NearbyCandidates

	// Each request gets its own filter. The staleness guard supersedes
	// older runs within one view; concurrent requests are independent views
	// and must not cancel each other.
	filter := geo.NewFilter(h.places, h.cutoff)

	results := make(chan []*event.Event, 1)
	filter.Filter(c.Request.Context(), candidates, fix, func(filtered []*event.Event) {
		results <- filtered
	})

	select {
	case filtered := <-results:
		c.JSON(http.StatusOK, gin.H{
			"nearby": emptyIfNil(filtered),
			"count":  len(filtered),
		})
	case <-time.After(nearbyTimeout):
		response.ErrorResponseWithMessage(c, http.StatusGatewayTimeout, "nearby filtering timed out")
	case <-c.Request.Context().Done():
		response.ErrorResponseWithMessage(c, http.StatusRequestTimeout, "request canceled")
	}
}

func (h *NearbyHandler) locationFix(c *gin.Context) (geo.Coordinate, error) {
	latStr, latOK := c.GetQuery("lat")
	lngStr, lngOK := c.GetQuery("lng")
	if latOK && lngOK {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return geo.Coordinate{}, errInvalidCoordinate
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return geo.Coordinate{}, errInvalidCoordinate
		}
		return geo.Coordinate{Lat: lat, Lng: lng}, nil
	}
	return h.locations.CurrentLocation(c.Request.Context())
}

var errInvalidCoordinate = errors.New("lat and lng must be decimal degrees")
