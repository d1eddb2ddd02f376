package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/web"
	"github.com/gin-gonic/gin"
)

const internalError = "Internal server error"

// AuthHandler starts and ends browser sessions.
//
//	GET  /login  redirects to the authorize URL with a fresh state
//	POST /logout clears the session cookie
type AuthHandler struct {
	service services.Service
	store   session.CookieStore
	logger  *log.Logger
	now     func() time.Time
}

func (h *AuthHandler) Register(r gin.IRouter) {
	r.GET("/login", h.login)
	r.POST("/logout", h.logout)
}

func (h *AuthHandler) login(c *gin.Context) {
	state := shared.GenerateID()
	h.store.SaveState(c.Writer, state)
	c.Redirect(http.StatusFound, h.service.AuthURL(state))
}

// logout always ends on the login screen, whether or not a session existed.
func (h *AuthHandler) logout(c *gin.Context) {
	h.store.Clear(c.Writer)
	c.Redirect(http.StatusSeeOther, "/")
}

// complete finishes the redirect from the provider: it checks state, exchanges
// the code, stores the token and redirects to a clean URL.
func (h *AuthHandler) complete(c *gin.Context, code, state string) {
	expected := h.store.TakeState(c.Writer, c.Request)
	if (state != "" || expected != "") && state != expected {
		h.logger.Warn("oauth state mismatch")
		h.renderLogin(c, http.StatusBadRequest, "Login failed: "+shared.ErrStateMismatch.Error())
		return
	}

	tok, err := h.service.Exchange(c.Request.Context(), code)
	if err != nil {
		status, msg := exchangeFailure(err)
		h.logger.Warn("token exchange failed", "status", status, "err", err)
		h.renderLogin(c, status, msg)
		return
	}

	h.store.Save(c.Writer, session.New(tok, h.now()))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, msg string) {
	c.HTML(status, "login.html", web.NewLoginPage(msg, h.now()))
}

// ExchangeHandler trades an authorization code for a token on behalf of a
// browser client that keeps the token itself.
//
//	POST /api/spotify/callback {"code": "..."}
type ExchangeHandler struct {
	service services.Service
	logger  *log.Logger
}

type exchangeRequest struct {
	Code string `json:"code"`
}

func (h *ExchangeHandler) Register(r gin.IRouter) {
	r.POST("/spotify/callback", h.exchange)
}

func (h *ExchangeHandler) exchange(c *gin.Context) {
	var body exchangeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	tok, err := h.service.Exchange(c.Request.Context(), body.Code)
	if err != nil {
		status, msg := exchangeFailure(err)
		h.logger.Warn("token exchange failed", "status", status, "err", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, models.Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   tok.ExpiresIn,
	})
}

// exchangeFailure maps an Exchange error to a status and client message.
// Provider rejections are the client's fault; anything else is ours.
func exchangeFailure(err error) (int, string) {
	var xErr *services.ExchangeError
	switch {
	case errors.As(err, &xErr):
		return http.StatusBadRequest, xErr.Description
	case errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest, "Missing authorization code"
	default:
		return http.StatusInternalServerError, internalError
	}
}
