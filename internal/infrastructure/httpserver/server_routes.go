package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api")
	api.POST("/token", s.issueToken)
	api.POST("/external-service", s.proxyExternalService, s.middleware.Gateway.RequireAnonymousToken())
}
