package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/server"
	"github.com/desertthunder/soundslate/internal/session"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 2 * time.Minute

// AuthLogin runs the authorization code flow against a local callback server
// and stores the token in the session file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}

	tok, err := r.doOAuth(ctx, timeout)
	if err != nil {
		return err
	}

	if err := r.store.Save(session.New(tok, r.now())); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.writePlainln("✓ Logged in")
	r.writePlain("✓ Session saved to %s\n\n", r.store.Path())
	r.writePlain("You can now use: soundslate top tracks\n")
	return nil
}

// AuthLogout removes the session file. Logging out twice is not an error.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Clear(); err != nil {
		return err
	}
	r.logger.Info("session cleared", "path", r.store.Path())
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus checks the stored token with a profile read.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	l, err := r.loader()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("✗ Not logged in\n")
	} else if err != nil {
		return err
	}

	res, err := r.loadProfile(ctx, l)
	switch {
	case errors.Is(err, shared.ErrTokenExpired):
		return r.writePlain("✗ Session expired. Please login again.\n")
	case err != nil:
		return err
	}

	r.writePlain("✓ Logged in as %s\n", res.Profile.Name())
	if exp := l.Session().Expiry; !exp.IsZero() {
		r.writePlain("Token expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

// doOAuth serves the app URL on a local listener, opens the authorize URL
// and waits for the single callback.
func (r *Runner) doOAuth(ctx context.Context, timeout time.Duration) (*models.Token, error) {
	addr, err := r.config.Spotify.CallbackAddr()
	if err != nil {
		return nil, err
	}

	state := shared.GenerateID()
	authURL := r.service.AuthURL(state)
	handler := server.NewOAuthHandler(r.service, state)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           server.NewCallbackEngine(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("waiting for OAuth callback at %v", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for Spotify login...\n")
	if err := r.openURL(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
