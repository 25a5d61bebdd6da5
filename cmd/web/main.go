package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/internal/apiclient"
	"github.com/mentorexpress/mentorexpress-web/internal/backend"
	"github.com/mentorexpress/mentorexpress-web/internal/flow"
	"github.com/mentorexpress/mentorexpress-web/internal/handlers"
	"github.com/mentorexpress/mentorexpress-web/internal/handoff"
	"github.com/mentorexpress/mentorexpress-web/internal/middleware"
	"github.com/mentorexpress/mentorexpress-web/internal/services"
	"github.com/mentorexpress/mentorexpress-web/internal/session"
	"github.com/mentorexpress/mentorexpress-web/internal/web"
	"github.com/mentorexpress/mentorexpress-web/pkg/httpclient"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"github.com/mentorexpress/mentorexpress-web/pkg/profiling"
	"github.com/mentorexpress/mentorexpress-web/pkg/retry"
	"github.com/mentorexpress/mentorexpress-web/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting MentorExpress web",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.Bool("scheduling_enabled", cfg.Scheduling.Enabled),
	)
	if cfg.Backend.URLFromDefault {
		logger.Warn("No backend URL configured, using default", zap.String("backend_url", cfg.Backend.URL))
	}

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Session store backs every hand-off record
	store, err := session.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = retry.Do(pingCtx, retry.StoreStartupConfig(), "session_store_ping", func() error {
		return store.Ping(pingCtx)
	})
	pingCancel()
	if err != nil {
		logger.Fatal("Session store unreachable", zap.String("store", store.Name()), zap.Error(err))
	}

	// Backend gateway and the in-process adapter over it
	httpClient := httpclient.NewStandardClient(cfg.BackendTimeout())
	backendClient := backend.NewClient(cfg.Backend.URL, httpClient)
	gatewayService := services.NewGatewayService(backendClient, cfg)
	adapter := apiclient.New(gatewayService, cfg)

	// Page flow
	channels := handoff.NewChannels(store, cfg.SessionTTL(), cfg.ProfileTTL())
	orchestrator := flow.NewOrchestrator(adapter, channels, cfg.Scheduling.Enabled)
	renderer, err := web.NewRenderer(cfg.Scheduling)
	if err != nil {
		logger.Fatal("Failed to parse page templates", zap.Error(err))
	}
	sessions := session.NewManager(cfg)

	// Initialize handlers
	gatewayHandler := handlers.NewGatewayHandler(gatewayService)
	pageHandler := handlers.NewPageHandler(orchestrator, adapter, channels, renderer)
	healthHandler := handlers.NewHealthHandler(store, backendClient.BreakerState)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.SetHTMLTemplate(renderer.Templates())

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:8080", "http://127.0.0.1:8080")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generalRateLimiter := middleware.NewRateLimiter(100, 200)  // 100 req/sec, burst of 200
	registrationRateLimiter := middleware.NewRateLimiter(1, 5) // 1 req/sec, burst of 5
	go generalRateLimiter.Run(ctx, time.Minute)
	go registrationRateLimiter.Run(ctx, time.Minute)

	// Operational endpoints
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// JSON gateway
	gateway := router.Group("/api", registrationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024))
	handlers.RegisterGatewayRoutes(gateway, gatewayHandler)

	// HTML pages
	pages := router.Group("/", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), middleware.SessionMiddleware(sessions))
	handlers.RegisterPageRoutes(pages, pageHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.BackendTimeout() + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
