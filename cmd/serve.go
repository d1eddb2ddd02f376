package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/soundslate/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the web app until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	cfg := *r.config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Server.Port = port
	}

	srv, err := server.New(server.Opts{
		Service: r.service,
		Config:  &cfg,
		Logger:  r.logger,
		Now:     r.now,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("→ SoundSlate on http://%s\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}
