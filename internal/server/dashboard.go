package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/stats"
	"github.com/desertthunder/soundslate/internal/web"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// DashboardHandler serves GET /, which is either the login page or the stats
// dashboard, and completes the OAuth redirect.
type DashboardHandler struct {
	auth    *AuthHandler
	service services.Reader
	store   session.CookieStore
	appURL  string
	logger  *log.Logger
	now     func() time.Time
}

func (h *DashboardHandler) Register(r gin.IRouter) {
	r.GET("/", h.index)
}

func (h *DashboardHandler) index(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		msg := "Login failed: " + e
		if desc := c.Query("error_description"); desc != "" {
			msg += " (" + desc + ")"
		}
		h.auth.renderLogin(c, http.StatusOK, msg)
		return
	}

	if code := c.Query("code"); code != "" {
		h.auth.complete(c, code, c.Query("state"))
		return
	}

	sess, ok := currentSession(c)
	if !ok {
		h.auth.renderLogin(c, http.StatusOK, "")
		return
	}

	filters, err := stats.ParseFilters(c.Request.URL.Query())
	if err != nil {
		h.logger.Warn("ignoring invalid filters", "err", err)
	}

	ctx := c.Request.Context()
	loader := stats.NewLoader(h.service, sess, h.logger)

	var profile, list stats.Result
	var g errgroup.Group
	g.Go(func() error {
		profile = loader.Load(ctx, stats.ProfileKey())
		return nil
	})
	g.Go(func() error {
		list = loader.Load(ctx, filters.Key())
		return nil
	})
	_ = g.Wait()

	// A rejected token on the profile read ends the session.
	if profile.Status == stats.StatusExpired {
		h.store.Clear(c.Writer)
		h.auth.renderLogin(c, http.StatusOK, "")
		return
	}

	page, err := web.NewDashboard(web.DashboardInput{
		Filters: filters,
		Profile: profile.Profile,
		List:    list,
		AppURL:  h.appURL,
		Now:     h.now(),
	})
	if err != nil {
		h.logger.Error("failed to build dashboard", "err", err)
		c.String(http.StatusInternalServerError, internalError)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", page)
}
