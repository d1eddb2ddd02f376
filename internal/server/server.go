// package server contains the gin engine, middleware and handlers for the SoundSlate web app
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/web"
	"github.com/gin-gonic/gin"
)

// Handler registers a group of related routes.
//
// Handlers own their route definitions so the server only decides where they are mounted.
type Handler interface {
	Register(r gin.IRouter)
}

// Opts configures [New].
type Opts struct {
	Service services.Service
	Config  *shared.Config
	Logger  *log.Logger
	// Now defaults to [time.Now]; tests pin it.
	Now func() time.Time
}

// Server is the SoundSlate web application.
type Server struct {
	engine *gin.Engine
	addr   string
	logger *log.Logger
}

// New builds the gin engine with every route registered.
func New(opts Opts) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("%w: server needs a service", shared.ErrMissingArgument)
	}
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)

	logger := shared.WithLogger(opts.Logger, "component", "server")
	store := session.CookieStore{Secure: opts.Config.Server.SecureCookies}
	appURL := opts.Config.Spotify.RedirectURI()

	origins := opts.Config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{appURL}
	}

	engine.Use(
		Recovery(logger),
		RequestLogger(logger),
		CORS(origins),
		LoadSession(store),
	)

	auth := &AuthHandler{service: opts.Service, store: store, logger: logger, now: opts.Now}
	pages := []Handler{
		healthHandler{},
		auth,
		&DashboardHandler{auth: auth, service: opts.Service, store: store, appURL: appURL, logger: logger, now: opts.Now},
	}
	for _, h := range pages {
		h.Register(engine)
	}

	api := engine.Group("/api")
	for _, h := range []Handler{
		&ExchangeHandler{service: opts.Service, logger: logger},
		&APIHandler{service: opts.Service, logger: logger},
	} {
		h.Register(api)
	}

	return &Server{engine: engine, addr: opts.Config.Server.Addr(), logger: logger}, nil
}

// Handler returns the engine as an [http.Handler].
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on http://%s", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type healthHandler struct{}

func (healthHandler) Register(r gin.IRouter) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
