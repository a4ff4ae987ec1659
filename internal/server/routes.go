// Package server wires HTTP handlers into a gin engine for the relaychat
// application via routing helpers.
package server

import "github.com/gin-gonic/gin"

// SetupRoutes configures and returns a gin engine with all application routes.
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = true

	router.Use(AccessLogMiddleware(s.log))
	router.Use(RecoveryMiddleware(s.log))

	router.GET("/", s.HealthHandler)
	router.GET("/health", s.HealthHandler)
	router.GET("/test", TestPageHandler)
	router.GET("/ws", gin.WrapF(s.WebSocketHandler))

	// WebSocket origins are enforced by the upgrader; CORS covers the REST API.
	channels := router.Group("/channels")
	channels.Use(CorsMiddleware(s.origins.corsOrigins()))
	s.RegisterChannelEndpoints(channels)
	return router
}
