package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cors "github.com/OnlyNico43/gin-cors"
	"github.com/gin-gonic/gin"
)

// AccessLogMiddleware logs one line per request once the handler chain has
// finished.
func AccessLogMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

// RecoveryMiddleware turns a handler panic into a 500 response carrying the
// panic message.
func RecoveryMiddleware(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error("Panic recovered in HTTP handler", "path", c.Request.URL.Path, "err", recovered)
		abortWithError(c, http.StatusInternalServerError, CodeInternal, fmt.Sprint(recovered))
	})
}

// CorsMiddleware applies the configured origin allow-list to browser requests.
// Requests without an Origin header pass straight through.
func CorsMiddleware(origins []string) gin.HandlerFunc {
	handler := cors.CorsMiddleware(cors.Config{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})

	return func(c *gin.Context) {
		if c.GetHeader("Origin") == "" {
			c.Next()
			return
		}
		handler(c)
	}
}
