package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/partyshare-api/internal/claims"
	"github.com/gravadigital/partyshare-api/internal/config"
	"github.com/gravadigital/partyshare-api/internal/geo"
	"github.com/gravadigital/partyshare-api/internal/handlers"
	"github.com/gravadigital/partyshare-api/internal/location"
	"github.com/gravadigital/partyshare-api/internal/logger"
	"github.com/gravadigital/partyshare-api/internal/middleware/requestlog"
	"github.com/gravadigital/partyshare-api/internal/photos"
	"github.com/gravadigital/partyshare-api/internal/sync"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config

	engine    *sync.Engine
	manager   *claims.Manager
	places    geo.PlaceResolver
	locations location.Provider
	photos    *photos.Store
}

// New creates a new server instance. photoStore may be nil, in which case
// the photo routes are not registered.
func New(cfg *config.Config, engine *sync.Engine, manager *claims.Manager, places geo.PlaceResolver, locations location.Provider, photoStore *photos.Store) *Server {
	return &Server{
		config:    cfg,
		engine:    engine,
		manager:   manager,
		places:    places,
		locations: locations,
		photos:    photoStore,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestlog.New())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	eventHandler := handlers.NewEventHandler(s.engine, s.manager)
	signupHandler := handlers.NewSignupHandler(s.engine, s.manager)
	nearbyHandler := handlers.NewNearbyHandler(s.engine, s.places, s.config.Geo.CutoffMeters, s.locations)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "PartyShare API is running",
			"status":  "healthy",
		})
	})

	api := router.Group("/api")
	{
		events := api.Group("/events")
		{
			events.GET("", eventHandler.ListEvents)
			events.POST("", eventHandler.CreateEvent)
			events.GET("/nearby", nearbyHandler.ListNearby)
			events.PATCH("/:event_id", eventHandler.UpdateEvent)
			events.DELETE("/:event_id", eventHandler.DeleteEvent)
			events.POST("/:event_id/join", eventHandler.JoinEvent)
			events.POST("/:event_id/leave", eventHandler.LeaveEvent)
			events.DELETE("/:event_id/attendees/:user_id", eventHandler.RemoveParticipant)

			events.POST("/:event_id/signups", signupHandler.AddItem)
			events.DELETE("/:event_id/signups/:item", signupHandler.RemoveItem)
			events.POST("/:event_id/signups/:item/claim", signupHandler.ClaimItem)
			events.POST("/:event_id/signups/:item/release", signupHandler.ReleaseItem)

			if s.photos != nil {
				photoHandler := handlers.NewPhotoHandler(s.engine, s.photos)
				events.POST("/:event_id/photos", photoHandler.UploadPhoto)
				events.GET("/:event_id/photos", photoHandler.ListPhotos)
			}
		}
	}

	return router
}
