package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/api/handlers"
	"github.com/leozw/domainy/internal/api/middleware"
	"github.com/leozw/domainy/internal/config"
)

type Server struct {
	Config  *config.Config
	Router  *gin.Engine
	Handler *handlers.Handler
	auth    middleware.Authenticator
	metrics http.Handler
	logger  *zap.Logger
}

// NewServer wires the HTTP surface. metrics may be nil, in which case
// /metrics is not served.
func NewServer(cfg *config.Config, h *handlers.Handler, auth middleware.Authenticator, metrics http.Handler, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{
		Config:  cfg,
		Router:  router,
		Handler: h,
		auth:    auth,
		metrics: metrics,
		logger:  logger,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.Handler.Health)
	s.Router.GET("/ready", s.Handler.Ready)
	if s.metrics != nil {
		s.Router.GET("/metrics", gin.WrapH(s.metrics))
	}

	// Auth routes
	limiter := middleware.NewIPRateLimiter(s.Config.RateLimit.RPS, s.Config.RateLimit.Burst)
	auth := s.Router.Group("/api/v1/auth")
	auth.Use(middleware.RateLimit(limiter))
	{
		auth.POST("/register", s.Handler.Register)
		auth.POST("/login", s.Handler.Login)
	}

	// API routes (protected)
	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.auth))
	{
		api.GET("/domains", s.Handler.ListDomains)
		api.POST("/domains", s.Handler.CreateDomain)
		api.PATCH("/domains/:id", s.Handler.UpdateDomain)
		api.DELETE("/domains/:id", s.Handler.DeleteDomain)
		api.POST("/domains/:id/refresh", s.Handler.RefreshDomain)
		api.GET("/whois", s.Handler.WhoisLookup)
	}
}
