package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"solace/internal/ai"
	"solace/internal/config"
	"solace/internal/handler"
	authHandler "solace/internal/handler/auth"
	"solace/internal/pkg/cache"
	"solace/internal/pkg/database"
	"solace/internal/pkg/jwt"
	"solace/internal/repository"
	authRepo "solace/internal/repository/auth"
	"solace/internal/server/middleware"
	"solace/internal/service"
)

// Server HTTP server
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	db     *gorm.DB
	redis  *cache.RedisCache
}

// New builds the server: opens the database, connects Redis, constructs the
// model gateway, and wires handlers onto the router.
func New(cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	// Redis is optional; without it the guest cap degrades to open access
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	gateway, err := ai.NewGateway(context.Background(), &cfg.AI)
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized model gateway")

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		db:     db,
		redis:  redisCache,
	}

	srv.setupRoutes(gateway)

	return srv, nil
}

// setupRoutes wires middleware, handlers, and route groups
func (s *Server) setupRoutes(gateway *ai.Gateway) {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}

	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}

	refreshTokenExpiry := s.cfg.Auth.RefreshTokenExpiry
	if refreshTokenExpiry == 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}

	jwtUtil := jwt.NewJWT(jwtSecret, accessTokenExpiry)

	userRepo := authRepo.NewUserRepo(s.db)
	refreshTokenRepo := authRepo.NewRefreshTokenRepo(s.db)
	convRepo := repository.NewConversationRepo(s.db)

	authSvc := service.NewAuthService(userRepo, refreshTokenRepo, jwtSecret, accessTokenExpiry, refreshTokenExpiry)
	chatSvc := service.NewChatService(gateway, convRepo)
	guestSvc := service.NewGuestService(gateway, s.cfg.AI.StreamDelay)

	authHdl := authHandler.NewHandler(authSvc)
	chatHdl := handler.NewChatHandler(chatSvc, guestSvc)
	convHdl := handler.NewConversationHandler(chatSvc)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/auth/register", authHdl.Register)
		v1.POST("/auth/login", authHdl.Login)
		v1.POST("/auth/refresh", authHdl.Refresh)
		v1.POST("/auth/logout", authHdl.Logout)

		// guest preview, capped per IP when Redis is available
		guest := v1.Group("")
		if s.redis != nil {
			guest.Use(middleware.GuestLimit(s.redis, s.cfg.Guest.MaxExchanges, s.cfg.Guest.Window))
		}
		guest.GET("/chat/guest", chatHdl.Guest)

		authed := v1.Group("")
		authed.Use(middleware.Auth(jwtUtil))
		{
			authed.GET("/auth/me", authHdl.GetMe)

			authed.POST("/chat", chatHdl.Send)
			authed.GET("/chat/stream", chatHdl.Stream)

			authed.GET("/conversations", convHdl.List)
			authed.GET("/conversations/:id", convHdl.Get)
			authed.DELETE("/conversations/:id", convHdl.Delete)
		}
	}
}

// Run starts the server and blocks until the context is canceled or the
// listener fails
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.engine,
		ReadTimeout: s.cfg.Server.ReadTimeout,
		// WriteTimeout stays zero so long-lived event streams are not cut off
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine exposes the Gin engine for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
