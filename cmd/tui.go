package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive stats view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}
	filters, err := filtersFromFlags(cmd, "")
	if err != nil {
		return err
	}
	sess, err := r.store.Load()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, f, err := shared.NewFileLogger(shared.ExpandHome(r.config.Log.File))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Opts{
		Source:    r.service,
		Session:   sess,
		Store:     r.store,
		Filters:   filters,
		ExportDir: cmd.String("output"),
		Logger:    shared.WithLogger(fileLogger, "component", "tui"),
		Now:       r.now,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if model.LoggedOut() {
		r.writePlain("Logged out. Run 'soundslate auth login' to sign in again.\n")
	}
	return nil
}
