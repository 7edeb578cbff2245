package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/king-nomura/cloudflare-workers-api-proxy/configs"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/application/services"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/downstream"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/health"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/httpserver"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting anonymous API proxy...")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	quotaStore := redis.NewQuotaStore(redisClient, cfg.Redis.KeyPrefix)

	// Wire services
	identityService := services.NewIdentityService(nil)
	credentialService := services.NewCredentialService(&cfg.Credential, nil, logger)
	rateLimiterService := services.NewRateLimiterService(quotaStore, &services.RateLimiterConfig{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
		KeyPrefix:   cfg.RateLimit.KeyPrefix,
		FailOpen:    cfg.RateLimit.FailOpen,
	}, logger)
	usageTracker := services.NewUsageTrackerService(quotaStore, &services.UsageTrackerConfig{
		KeyPrefix: cfg.Usage.KeyPrefix,
		Retention: cfg.Usage.Retention,
	}, logger)

	gatewayService := services.NewGatewayService(
		identityService,
		credentialService,
		rateLimiterService,
		usageTracker,
		quota.Policy{MaxRequests: cfg.RateLimit.MaxRequests, Window: cfg.RateLimit.Window},
		cfg.Usage.MeterTimeout,
		logger,
	)

	downstreamClient := downstream.NewClient(&cfg.Downstream, logger)

	hcSlice := []ports.HealthChecker{
		health.NewRedisHealthChecker(redisClient),
		health.NewDownstreamHealthChecker(downstreamClient),
	}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	deps := httpserver.ServerDeps{
		GatewayService:   gatewayService,
		DownstreamClient: downstreamClient,
		HealthCheckers:   hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
