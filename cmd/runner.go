package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundslate/internal/services"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/stats"
	"github.com/urfave/cli/v3"
)

// SessionStore persists the CLI session. [session.FileStore] implements it.
type SessionStore interface {
	Load() (*session.Session, error)
	Save(*session.Session) error
	Clear() error
	Path() string
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.Service
	store      SessionStore
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service
	Store      SessionStore
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
	// OpenURL opens the authorize URL during login. Defaults to [shared.OpenBrowser].
	OpenURL func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Store == nil {
		opts.Store = session.NewFileStore(opts.Config.Session.Path)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		store:      opts.Store,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
		openURL:    opts.OpenURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, meCommand, topCommand, exportCommand, shareCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) requireService() error {
	if r.service == nil {
		return fmt.Errorf("%w: set SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and APP_URL or run `soundslate setup config`", shared.ErrMissingCredentials)
	}
	return nil
}

// loader returns a [stats.Loader] for the stored session.
func (r *Runner) loader() (*stats.Loader, error) {
	if err := r.requireService(); err != nil {
		return nil, err
	}
	sess, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	return stats.NewLoader(r.service, sess, r.logger), nil
}

// loadList fetches key and turns a failed load into an error. A rejected
// token on a list keeps the session.
func (r *Runner) loadList(ctx context.Context, l *stats.Loader, key stats.Key) (stats.Result, error) {
	res := l.Load(ctx, key)
	switch res.Status {
	case stats.StatusOK:
		return res, nil
	case stats.StatusExpired:
		return res, fmt.Errorf("%w: %s", shared.ErrTokenExpired, res.Message())
	default:
		return res, fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, res.Message(), res.Err)
	}
}

// loadProfile fetches the profile. A rejected token ends the stored session.
func (r *Runner) loadProfile(ctx context.Context, l *stats.Loader) (stats.Result, error) {
	res := l.Load(ctx, stats.ProfileKey())
	switch res.Status {
	case stats.StatusOK:
		return res, nil
	case stats.StatusExpired:
		if err := r.store.Clear(); err != nil {
			r.logger.Warn("failed to clear session", "error", err)
		}
		return res, fmt.Errorf("%w: logged out, run `soundslate auth login`", shared.ErrTokenExpired)
	default:
		return res, fmt.Errorf("%w: failed to fetch profile: %v", shared.ErrAPIRequest, res.Err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
