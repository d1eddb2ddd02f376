package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/stats"
	"github.com/gin-gonic/gin"
)

// APIHandler passes profile and top item reads through for clients that hold
// their own token. The token comes from an Authorization bearer header or,
// failing that, the session cookie.
//
//	GET /api/me
//	GET /api/top/:resource?time_range=&limit=
type APIHandler struct {
	service services.Reader
	logger  *log.Logger
}

type topResponse struct {
	Resource  stats.Resource   `json:"resource"`
	TimeRange models.TimeRange `json:"time_range"`
	Limit     int              `json:"limit"`
	Items     any              `json:"items"`
}

func (h *APIHandler) Register(r gin.IRouter) {
	r.GET("/me", h.me)
	r.GET("/top/:resource", h.top)
}

func (h *APIHandler) me(c *gin.Context) {
	sess, ok := requestSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
		return
	}

	res := stats.NewLoader(h.service, sess, h.logger).Load(c.Request.Context(), stats.ProfileKey())
	if !writeFailure(c, res) {
		c.JSON(http.StatusOK, res.Profile)
	}
}

func (h *APIHandler) top(c *gin.Context) {
	resource, err := stats.ParseResource(c.Param("resource"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	key := stats.Key{Resource: resource, TimeRange: models.MediumTerm, Limit: models.DefaultLimit}
	if v := c.Query("time_range"); v != "" {
		if key.TimeRange, err = models.ParseTimeRange(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if v := c.Query("limit"); v != "" {
		if key.Limit, err = models.ParseLimit(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sess, ok := requestSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
		return
	}

	res := stats.NewLoader(h.service, sess, h.logger).Load(c.Request.Context(), key)
	if writeFailure(c, res) {
		return
	}

	out := topResponse{Resource: resource, TimeRange: key.TimeRange, Limit: key.Limit}
	if resource == stats.ArtistsResource {
		out.Items = res.Artists
	} else {
		out.Items = res.Tracks
	}
	c.JSON(http.StatusOK, out)
}

// requestSession prefers the bearer header over the cookie session.
func requestSession(c *gin.Context) (*session.Session, bool) {
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok && token != "" {
		return &session.Session{AccessToken: token, TokenType: "Bearer"}, true
	}
	return currentSession(c)
}

// writeFailure writes the error response for a failed load and reports
// whether it did.
func writeFailure(c *gin.Context, res stats.Result) bool {
	switch res.Status {
	case stats.StatusOK:
		return false
	case stats.StatusExpired:
		c.JSON(http.StatusUnauthorized, gin.H{"error": res.Message()})
	default:
		msg := res.Message()
		if msg == "" {
			msg = "Failed to fetch " + string(res.Key.Resource)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
	}
	return true
}
