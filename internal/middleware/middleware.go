package middleware

import (
	"fmt"
	"net/http"
	"time"

	"checkout-gateway/internal/logger"
	"checkout-gateway/internal/session"
	"checkout-gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Context keys set by Session for downstream handlers.
const (
	ContextSessionID  = "session_id"
	ContextCustomerID = "customer_id"
	ContextEmail      = "customer_email"
)

func EnhancedLogger(log *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		// Log to our enhanced logger
		duration := param.Latency.String()
		status := fmt.Sprintf("%d", param.StatusCode)

		// Determine log level based on status code
		if param.StatusCode >= 500 {
			log.Error("API", fmt.Sprintf("%s %s - %s (%s) - ERROR: %s",
				param.Method, param.Path, status, duration, param.ErrorMessage))
		} else if param.StatusCode >= 400 {
			log.Warn("API", fmt.Sprintf("%s %s - %s (%s) - Client Error",
				param.Method, param.Path, status, duration))
		} else {
			log.LogAPI(param.Method, param.Path, status, duration)
		}

		// Also log request details for debugging
		log.Debug("REQUEST", fmt.Sprintf("IP: %s, UserAgent: %s",
			param.ClientIP, param.Request.UserAgent()))

		// Return empty string since we're handling logging ourselves
		return ""
	})
}

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(string); ok {
			log.Error("PANIC", fmt.Sprintf("Recovered from panic: %s", err))
			c.String(http.StatusInternalServerError, fmt.Sprintf("error: %s", err))
		} else {
			log.Error("PANIC", fmt.Sprintf("Recovered from panic: %v", recovered))
			c.String(http.StatusInternalServerError, "Internal server error")
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// CORS allows the storefront origin with credentials. The session cookie
// never crosses origins under a wildcard, so the origin is echoed back.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowedOrigin == origin || allowedOrigin == "") {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func RateLimit(log *logger.Logger) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), 100) // 100 requests per second

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.LogSecurity("RATE_LIMIT", fmt.Sprintf("Rate limit exceeded for IP: %s", c.ClientIP()))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func SecurityHeaders(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Add security headers
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		// Log security events
		if c.GetHeader("X-Forwarded-For") != "" {
			log.LogSecurity("PROXY_REQUEST", fmt.Sprintf("Request via proxy from: %s", c.GetHeader("X-Forwarded-For")))
		}

		c.Next()
	}
}

// Session resolves the checkout session cookie, minting a fresh anonymous
// session when none exists yet, and exposes the session and customer ids to
// handlers through the gin context.
func Session(store *session.Store, cookieName string, ttl time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)

		var rec *session.Record
		if err == nil && sessionID != "" {
			rec, err = store.Load(c.Request.Context(), sessionID)
			if err != nil && err != session.ErrNotFound {
				log.Error("SESSION", fmt.Sprintf("Failed to load session %s: %v", sessionID, err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Session lookup failed"})
				c.Abort()
				return
			}
		}

		if rec == nil {
			rec = &session.Record{
				SessionID:  utils.GenerateSessionID(),
				CustomerID: utils.GenerateUUID(),
			}
			if err := store.Save(c.Request.Context(), rec); err != nil {
				log.Error("SESSION", fmt.Sprintf("Failed to save session: %v", err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Session creation failed"})
				c.Abort()
				return
			}
			c.SetCookie(cookieName, rec.SessionID, int(ttl.Seconds()), "/", "", false, true)
			log.LogSecurity("SESSION_CREATED", fmt.Sprintf("New session %s for IP %s", rec.SessionID, c.ClientIP()))
		}

		c.Set(ContextSessionID, rec.SessionID)
		c.Set(ContextCustomerID, rec.CustomerID)
		c.Set(ContextEmail, rec.Email)
		c.Next()
	}
}
