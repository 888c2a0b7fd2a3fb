package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/partyshare-api/internal/photos"
	"github.com/gravadigital/partyshare-api/internal/response"
	"github.com/gravadigital/partyshare-api/internal/sync"
)

// maxPhotoSize is the upload limit for a single photo (10MB).
const maxPhotoSize = 10 << 20

type PhotoHandler struct {
	engine *sync.Engine
	photos *photos.Store
}

func NewPhotoHandler(engine *sync.Engine, photoStore *photos.Store) *PhotoHandler {
	return &PhotoHandler{
		engine: engine,
		photos: photoStore,
	}
}

// UploadPhoto handles POST /api/events/:event_id/photos. The gallery is
// limited to the host and attendees, and opens once the event has passed.
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
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
	if !existing.IsCreator(uid) && !existing.IsAttending(uid) {
		response.ForbiddenError(c, "photos are limited to the event's attendees")
		return
	}
	if !existing.HasPassed(time.Now()) {
		response.BadRequestError(c, "photos open once the event has passed")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequestError(c, "no file provided")
		return
	}
	defer file.Close()

	if header.Size > maxPhotoSize {
		response.BadRequestError(c, "file exceeds the 10MB limit")
		return
	}

	key, err := h.photos.Upload(c.Request.Context(), eventID, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		response.InternalServerError(c, "failed to store photo")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "photo uploaded", gin.H{"key": key})
}

// ListPhotos handles GET /api/events/:event_id/photos. Same audience as
// UploadPhoto: host and attendees only.
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
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
	if !existing.IsCreator(uid) && !existing.IsAttending(uid) {
		response.ForbiddenError(c, "photos are limited to the event's attendees")
		return
	}

	list, err := h.photos.List(c.Request.Context(), eventID)
	if err != nil {
		response.InternalServerError(c, "failed to list photos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photos": list,
		"count":  len(list),
	})
}
