package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesdesk-api/internal/config"
)

var (
	defaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	defaultMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin", RequestIDHeader}

	// headers browsers need to read invoice exports, replays and rate limits
	exposedHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Content-Disposition",
		RequestIDHeader,
		"X-Idempotency-Replayed",
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"Retry-After",
	}
)

// CORSMiddleware creates a CORS middleware with the provided configuration.
// Idempotency-Key is always an allowed header.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := orDefault(cfg.AllowedOrigins, defaultOrigins)
	methods := orDefault(cfg.AllowedMethods, defaultMethods)
	headers := slices.Clone(orDefault(cfg.AllowedHeaders, defaultHeaders))
	if !slices.Contains(headers, IdempotencyKeyHeader) {
		headers = append(headers, IdempotencyKeyHeader)
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
