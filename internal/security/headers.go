// Package security provides security middleware for the Kollabary API.
package security

import (
	"github.com/gin-gonic/gin"
)

// HeadersMiddleware adds security headers to all responses
func HeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Referrer policy
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Content Security Policy: pure JSON API, lock everything down
		c.Header("Content-Security-Policy", "default-src 'none'; connect-src 'self' ws: wss:; frame-ancestors 'none'")

		// Permissions Policy
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		c.Next()
	}
}

// CORSMiddleware handles CORS for API endpoints
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originsMap := make(map[string]bool)
	for _, o := range allowedOrigins {
		originsMap[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		// Check if origin is allowed
		if len(allowedOrigins) == 0 || originsMap[origin] || originsMap["*"] {
			if origin != "" {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID, X-User-ID, X-Admin-Secret")
			c.Header("Access-Control-Max-Age", "86400")
			// Only set Allow-Credentials when NOT using wildcard origins
			// (wildcard + credentials is a security vulnerability per CORS spec)
			if !originsMap["*"] {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		// Handle preflight
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
