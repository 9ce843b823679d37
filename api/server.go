package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tombola/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Services groups the operations exposed over HTTP
type Services struct {
	Raffles        service.RaffleService
	Participations service.ParticipationService
	Validation     service.ValidationService
	Draw           service.DrawService
	Users          service.UserService
}

// Handler holds the dependencies of the HTTP handlers
type Handler struct {
	services Services
	now      func() time.Time
}

// NewHandler creates a new Handler
func NewHandler(services Services) *Handler {
	return &Handler{
		services: services,
		now:      time.Now,
	}
}

// RegisterRoutes registers all the application routes
func (h *Handler) RegisterRoutes(router *gin.Engine, verifier *TokenVerifier) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := router.Group("/", RequireAuth(verifier))
	admin := authed.Group("/", RequireAdmin())

	authed.GET("/raffles", h.ListRaffles)
	authed.GET("/raffles/:id", h.GetRaffle)
	admin.POST("/raffles", h.CreateRaffle)
	admin.PUT("/raffles/:id", h.EditRaffle)
	admin.DELETE("/raffles/:id", h.DeleteRaffle)
	admin.POST("/raffles/:id/draw", h.DrawRaffle)
	admin.POST("/raffles/:id/recompute", h.RecomputeRaffleStats)
	admin.POST("/raffles/:id/cancel", h.CancelRaffle)

	authed.POST("/participations", h.SubmitParticipation)
	admin.GET("/participations", h.ListParticipations)
	authed.GET("/participations/:id", h.GetParticipation)
	authed.GET("/participations/number/:number", h.GetParticipationByNumber)
	admin.PUT("/participations/:id/validate", h.DecideParticipation)

	authed.GET("/users/participations", h.ListMyParticipations)
	authed.GET("/users/me/stats", h.GetMyStats)
}

// NewRouter builds the gin engine with middleware and routes
func NewRouter(handler *Handler, verifier *TokenVerifier, recorder HTTPRecorder) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AccessLog(recorder), Recovery())
	router.NoRoute(func(c *gin.Context) {
		writeError(c, errRouteNotFound)
	})
	handler.RegisterRoutes(router, verifier)
	return router
}

// Server wraps the HTTP listener
type Server struct {
	httpServer *http.Server
}

// NewServer creates a server listening on addr
func NewServer(addr string, router *gin.Engine) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}
