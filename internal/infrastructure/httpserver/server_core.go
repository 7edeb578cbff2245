package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
	customMiddleware "github.com/king-nomura/cloudflare-workers-api-proxy/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
}

type ServerDeps struct {
	GatewayService   ports.GatewayService
	DownstreamClient ports.DownstreamClient
	HealthCheckers   []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	gateway        ports.GatewayService
	downstream     ports.DownstreamClient
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		gateway:        deps.GatewayService,
		downstream:     deps.DownstreamClient,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.GatewayService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
			GetRateLimitDecisions(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
