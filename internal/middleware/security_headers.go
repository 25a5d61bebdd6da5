package middleware

import (
	"github.com/gin-gonic/gin"
)

// calendlyOrigins may be framed and scripted by the scheduling page
const calendlyOrigins = "https://calendly.com https://assets.calendly.com"

// SecurityHeadersMiddleware adds security headers to all HTTP responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")

		// The scheduling widget is an iframe loaded by an external script
		c.Header("Content-Security-Policy",
			"default-src 'self'; script-src 'self' "+calendlyOrigins+
				"; frame-src "+calendlyOrigins+
				"; style-src 'self' 'unsafe-inline' "+calendlyOrigins+
				"; img-src 'self' data: "+calendlyOrigins+
				"; form-action 'self'; frame-ancestors 'none'")

		// Pages render per-session hand-off records and must not be cached
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
		c.Header("Pragma", "no-cache")

		c.Next()
	}
}
