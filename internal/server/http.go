package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	adminservice "github.com/lk2023060901/ai-video-backend/internal/admin/service"
	"github.com/lk2023060901/ai-video-backend/internal/auth"
	"github.com/lk2023060901/ai-video-backend/internal/auth/middleware"
	"github.com/lk2023060901/ai-video-backend/internal/conf"
	findingservice "github.com/lk2023060901/ai-video-backend/internal/finding/service"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/validator"
	userservice "github.com/lk2023060901/ai-video-backend/internal/user/service"
	videoservice "github.com/lk2023060901/ai-video-backend/internal/video/service"
	"go.uber.org/zap"
)

// Pinger 健康检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services 需要挂载的各领域接口
type Services struct {
	Auth    *userservice.AuthService
	Video   *videoservice.VideoService
	Finding *findingservice.FindingService
	Admin   *adminservice.AdminService
}

type HTTPServer struct {
	server *http.Server
	engine *gin.Engine
	logger *logger.Logger
}

// NewHTTPServer limiter 为 nil 时检索接口不限流
func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	tokens middleware.TokenVerifier,
	limiter middleware.ScriptRunner,
	health Pinger,
	services Services,
) (*HTTPServer, error) {
	if err := validator.Register(); err != nil {
		return nil, err
	}
	if config.Server.HTTP.Mode != "" {
		gin.SetMode(config.Server.HTTP.Mode)
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, "/metrics", "/health"))
	router.Use(metrics.GinMiddleware())
	router.Use(corsMiddleware(config.CORS))

	router.GET("/health", func(c *gin.Context) {
		if err := health.Ping(c.Request.Context()); err != nil {
			log.Warn("health check failed", zap.Error(err))
			response.Error(c, http.StatusServiceUnavailable, "unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	authed := middleware.JWTAuth(tokens, log)
	optional := middleware.OptionalJWTAuth(tokens)

	api := router.Group("/api")
	services.Auth.RegisterRoutes(api, authed)
	services.Video.RegisterRoutes(api, authed, optional)
	services.Admin.RegisterRoutes(api, authed, middleware.RequireRole(auth.RoleAdmin))

	var findingLimiter gin.HandlerFunc
	if limiter != nil {
		findingLimiter = middleware.RateLimiter(limiter, middleware.RateLimiterConfig{
			MaxRequests:   config.RateLimit.Finding.MaxRequests,
			WindowSeconds: config.RateLimit.Finding.WindowSeconds,
			Strategy:      "user",
			Prefix:        "rate_limit:finding",
		}, log)
	}
	services.Finding.RegisterRoutes(api, optional, findingLimiter)

	return &HTTPServer{
		server: &http.Server{
			Addr:         config.Server.HTTP.Addr,
			Handler:      router,
			ReadTimeout:  config.Server.HTTP.ReadTimeout,
			WriteTimeout: config.Server.HTTP.WriteTimeout,
		},
		engine: router,
		logger: log,
	}, nil
}

// corsMiddleware 预检请求统一放行
func corsMiddleware(cfg conf.CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"Accept",
			"Origin",
			logger.RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Disposition",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
}

// Handler 供测试直接驱动路由
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
