package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/partyshare-api/internal/claims"
	"github.com/gravadigital/partyshare-api/internal/response"
	"github.com/gravadigital/partyshare-api/internal/sync"
)

type SignupHandler struct {
	engine  *sync.Engine
	manager *claims.Manager
}

func NewSignupHandler(engine *sync.Engine, manager *claims.Manager) *SignupHandler {
	return &SignupHandler{
		engine:  engine,
		manager: manager,
	}
}

type AddItemRequest struct {
	Item     string `json:"item" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// AddItem handles POST /api/events/:event_id/signups. The host restriction
// is a presentation convention, mirrored here; the claim core itself does
// not enforce it.
func (h *SignupHandler) AddItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	eventID := c.Param("event_id")

	if existing, ok := findEvent(h.engine.Latest(), eventID); ok && !existing.IsCreator(uid) {
		response.ForbiddenError(c, "only the host can add items")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload: "+err.Error())
		return
	}

	if err := h.manager.AddItem(c.Request.Context(), eventID, req.Item, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "item added", nil)
}

// RemoveItem handles DELETE /api/events/:event_id/signups/:item. Host only
// by the same convention.
func (h *SignupHandler) RemoveItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	eventID := c.Param("event_id")

	if existing, ok := findEvent(h.engine.Latest(), eventID); ok && !existing.IsCreator(uid) {
		response.ForbiddenError(c, "only the host can remove items")
		return
	}

	if err := h.manager.RemoveItem(c.Request.Context(), eventID, c.Param("item")); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "item removed", nil)
}

// ClaimItem handles POST /api/events/:event_id/signups/:item/claim
func (h *SignupHandler) ClaimItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.manager.Claim(c.Request.Context(), c.Param("event_id"), c.Param("item"), uid); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "item claimed", nil)
}

// ReleaseItem handles POST /api/events/:event_id/signups/:item/release
func (h *SignupHandler) ReleaseItem(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.manager.Release(c.Request.Context(), c.Param("event_id"), c.Param("item"), uid); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "item released", nil)
}
