package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/partyshare-api/internal/domain/event"
	"github.com/gravadigital/partyshare-api/internal/identity"
	"github.com/gravadigital/partyshare-api/internal/response"
)

// currentUser resolves the caller identity or writes a 401.
func currentUser(c *gin.Context) (string, bool) {
	uid, ok := identity.FromRequest(c.Request)
	if !ok {
		response.UnauthorizedError(c, "missing "+identity.UserIDHeader+" header")
		return "", false
	}
	return uid, true
}

// respondError maps the core error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, event.ErrEventNotFound), errors.Is(err, event.ErrItemNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, event.ErrInvalidQuantity), errors.Is(err, event.ErrValidation):
		response.BadRequestError(c, err.Error())
	case errors.Is(err, event.ErrRemoteUnavailable):
		response.ServiceUnavailableError(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}

// findEvent looks an event up in the last published set.
func findEvent(events []*event.Event, eventID string) (*event.Event, bool) {
	for _, e := range events {
		if e.ID == eventID {
			return e, true
		}
	}
	return nil, false
}
