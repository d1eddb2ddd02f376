package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/gin-gonic/gin"
)

// OAuthResult is the outcome of a CLI login.
type OAuthResult struct {
	Token *models.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives the provider redirect for `soundslate auth login`.
// It serves the app URL root on a temporary local server, accepts exactly one
// callback and reports it on [OAuthHandler.Result].
type OAuthHandler struct {
	service     services.Service
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a handler expecting state on the callback.
func NewOAuthHandler(service services.Service, state string) *OAuthHandler {
	return &OAuthHandler{
		service:    service,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Register(r gin.IRouter) {
	r.GET("/", h.callback)
}

// NewCallbackEngine returns a bare engine serving only h.
func NewCallbackEngine(h *OAuthHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	h.Register(engine)
	return engine
}

func (h *OAuthHandler) callback(c *gin.Context) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		c.String(http.StatusBadRequest, "Callback already processed")
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if e := c.Query("error"); e != "" {
		h.Send(OAuthResult{err: fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, e, c.Query("error_description"))})
		c.String(http.StatusBadRequest, "Authorization failed: "+e)
		return
	}

	if c.Query("state") != h.state {
		h.Send(OAuthResult{err: shared.ErrStateMismatch})
		c.String(http.StatusBadRequest, "Invalid state parameter")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.Send(OAuthResult{err: fmt.Errorf("%w: no authorization code", shared.ErrAuthFailed)})
		c.String(http.StatusBadRequest, "Authorization failed")
		return
	}

	tok, err := h.service.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		c.String(http.StatusInternalServerError, "Token exchange failed")
		return
	}

	h.Send(OAuthResult{Token: tok})
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(callbackPage))
}

// Send delivers result once; later calls are dropped.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result receives exactly one value and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const callbackPage = `<!DOCTYPE html>
<html>
<head>
    <title>SoundSlate</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; color: #fff; }
        .container { text-align: center; padding: 2rem; border-radius: 8px; background: #181818; }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Logged in to SoundSlate</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
