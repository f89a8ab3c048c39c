// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inzerio_backend/internal/config"
	"inzerio_backend/internal/firebase"
	"inzerio_backend/internal/jobs"
	"inzerio_backend/internal/listing"
	"inzerio_backend/internal/middleware"
	"inzerio_backend/internal/promotion"
	"inzerio_backend/internal/taxonomy"
	"inzerio_backend/internal/user"
)

// Server holds the HTTP surface and the background workers that keep the
// catalog fresh: the remote mirror, the TOP expiry checker and the plan
// enforcement cron.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	store            *listing.Store
	mirror           *listing.Mirror
	topExpiryChecker *promotion.TopExpiryChecker
	planEnforcement  *jobs.PlanEnforcementJob
	backgroundCancel context.CancelFunc
}

// NewServer wires the router, middleware and routes.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	firebaseService *firebase.FirebaseService,
	store *listing.Store,
	mirror *listing.Mirror,
	topExpiryChecker *promotion.TopExpiryChecker,
	planEnforcement *jobs.PlanEnforcementJob,
	listingHandler *listing.Handler,
	userHandler *user.Handler,
	promotionHandler *promotion.Handler,
	taxonomyHandler *taxonomy.Handler,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(firebaseService, logger.Named("AuthMiddleware"))

	router.GET("/health", func(c *gin.Context) {
		state, updatedAt := store.State()
		c.JSON(http.StatusOK, gin.H{
			"status":             "UP",
			"catalog_source":     state,
			"catalog_updated_at": updatedAt,
		})
	})

	v1 := router.Group("/api/v1")
	listingHandler.RegisterRoutes(v1, authMW)
	userHandler.RegisterRoutes(v1, authMW)
	promotionHandler.RegisterRoutes(v1, authMW)
	taxonomyHandler.RegisterRoutes(v1)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:       httpServer,
		router:           router,
		cfg:              cfg,
		logger:           logger,
		store:            store,
		mirror:           mirror,
		topExpiryChecker: topExpiryChecker,
		planEnforcement:  planEnforcement,
	}, nil
}

// Start launches the background workers and serves HTTP until the server
// is shut down.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.backgroundCancel = cancel

	go s.mirror.Run(ctx)
	go s.topExpiryChecker.Start(ctx)

	if err := s.planEnforcement.SetupAndStart(); err != nil {
		s.logger.Error("Failed to start plan enforcement job", zap.Error(err))
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the background workers and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.backgroundCancel != nil {
		s.backgroundCancel()
	}
	s.planEnforcement.Stop()
	return s.httpServer.Shutdown(ctx)
}
