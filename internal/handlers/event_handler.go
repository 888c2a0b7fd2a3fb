package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/partyshare-api/internal/claims"
	"github.com/gravadigital/partyshare-api/internal/domain/event"
	"github.com/gravadigital/partyshare-api/internal/response"
	"github.com/gravadigital/partyshare-api/internal/sync"
)

type EventHandler struct {
	engine  *sync.Engine
	manager *claims.Manager
}

func NewEventHandler(engine *sync.Engine, manager *claims.Manager) *EventHandler {
	return &EventHandler{
		engine:  engine,
		manager: manager,
	}
}

// ListEvents handles GET /api/events. It returns the caller's hosted,
// attending and passed buckets computed from the last published snapshot.
func (h *EventHandler) ListEvents(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	buckets := event.Categorize(h.engine.Latest(), uid, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"hosted":    emptyIfNil(buckets.Hosted),
		"attending": emptyIfNil(buckets.Attending),
		"passed":    emptyIfNil(buckets.Passed),
	})
}

type CreateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	LocationRef string `json:"location_ref" binding:"required"`
	Date        string `json:"date" binding:"required"`
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload: "+err.Error())
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.BadRequestError(c, "date must be an RFC 3339 timestamp")
		return
	}

	created, err := h.manager.CreateEvent(c.Request.Context(), claims.CreateEventInput{
		CreatorID:   uid,
		Name:        req.Name,
		Description: req.Description,
		LocationRef: req.LocationRef,
		StartTime:   startTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "event created", created)
}

type UpdateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	LocationRef string `json:"location_ref" binding:"required"`
	Date        string `json:"date" binding:"required"`
}

// UpdateEvent handles PATCH /api/events/:event_id. Host only.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	eventID := c.Param("event_id")

	existing, ok := findEvent(h.engine.Latest(), eventID)
	if !ok {
		response.NotFoundError(c, "event not found")
		return
	}
	if !existing.IsCreator(uid) {
		response.ForbiddenError(c, "only the host can edit an event")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload: "+err.Error())
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.BadRequestError(c, "date must be an RFC 3339 timestamp")
		return
	}

	if err := h.manager.UpdateEvent(c.Request.Context(), eventID, claims.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		LocationRef: req.LocationRef,
		StartTime:   startTime,
	}); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "event updated", nil)
}

// DeleteEvent handles DELETE /api/events/:event_id. Host only; retracts
// every attendee's personal index before removing the record.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	eventID := c.Param("event_id")

	if existing, ok := findEvent(h.engine.Latest(), eventID); ok && !existing.IsCreator(uid) {
		response.ForbiddenError(c, "only the host can delete an event")
		return
	}

	if err := h.manager.DeleteEvent(c.Request.Context(), eventID); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "event deleted", nil)
}

// JoinEvent handles POST /api/events/:event_id/join
func (h *EventHandler) JoinEvent(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.manager.JoinEvent(c.Request.Context(), c.Param("event_id"), uid); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "joined event", nil)
}

// LeaveEvent handles POST /api/events/:event_id/leave
func (h *EventHandler) LeaveEvent(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.manager.LeaveEvent(c.Request.Context(), c.Param("event_id"), uid); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "left event", nil)
}

// RemoveParticipant handles DELETE /api/events/:event_id/attendees/:user_id.
// Host only.
func (h *EventHandler) RemoveParticipant(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	eventID := c.Param("event_id")

	if existing, ok := findEvent(h.engine.Latest(), eventID); ok && !existing.IsCreator(uid) {
		response.ForbiddenError(c, "only the host can remove attendees")
		return
	}

	if err := h.manager.RemoveParticipant(c.Request.Context(), eventID, c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "attendee removed", nil)
}

func emptyIfNil(events []*event.Event) []*event.Event {
	if events == nil {
		return []*event.Event{}
	}
	return events
}
