package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request through logger and tags the
// response with a request id.
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = shared.GenerateID()
		}
		c.Header(requestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"elapsed", time.Since(start),
			"request_id", id,
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", kv...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", kv...)
		default:
			logger.Debug("request", kv...)
		}
	}
}

// Recovery turns a panic into a 500 and logs it.
func Recovery(logger *log.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		logger.Error("panic", "path", c.Request.URL.Path, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

// CORS allows origins to call the JSON API from a browser. "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// LoadSession puts the cookie session, when present, on the request context.
func LoadSession(store session.CookieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, err := store.Load(c.Request); err == nil {
			c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), s))
		}
		c.Next()
	}
}

// currentSession returns the session loaded by [LoadSession].
func currentSession(c *gin.Context) (*session.Session, bool) {
	return session.FromContext(c.Request.Context())
}
