package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/soundslate/internal/formatter"
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
	"github.com/desertthunder/soundslate/internal/stats"
	"github.com/desertthunder/soundslate/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const textWidth = 80

// Me prints the profile of the stored session.
func (r *Runner) Me(ctx context.Context, cmd *cli.Command) error {
	l, err := r.loader()
	if err != nil {
		return err
	}

	res, err := r.loadProfile(ctx, l)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(res.Profile, true)
	}

	p := res.Profile
	r.writePlain("%s\n", p.Name())
	r.writePlain("  ID: %s\n", p.ID)
	if p.Email != "" {
		r.writePlain("  Email: %s\n", p.Email)
	}
	if len(p.Images) > 0 {
		r.writePlain("  Avatar: %s\n", p.Images[0].URL)
	}
	return nil
}

func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	return r.top(ctx, cmd, models.TracksTab)
}

func (r *Runner) TopArtists(ctx context.Context, cmd *cli.Command) error {
	return r.top(ctx, cmd, models.ArtistsTab)
}

func (r *Runner) top(ctx context.Context, cmd *cli.Command, tab models.Tab) error {
	filters, err := filtersFromFlags(cmd, tab)
	if err != nil {
		return err
	}

	l, err := r.loader()
	if err != nil {
		return err
	}

	r.logger.Debug("fetching top list", "key", filters.Key())
	res, err := r.loadList(ctx, l, filters.Key())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if tab == models.ArtistsTab {
			return r.writeJSON(res.Artists, cmd.Bool("pretty"))
		}
		return r.writeJSON(res.Tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s - %s", tab.Label(), filters.TimeRange.Label()))
	items := res.Items()
	if len(items) == 0 {
		return r.writePlain("No items\n")
	}
	return r.writePlain("%s\n", formatter.LayoutFor(filters.Layout).Text(items, textWidth))
}

// Export fetches the profile and the list together and writes the list in
// the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	filters, err := filtersFromFlags(cmd, "")
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	l, err := r.loader()
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		return r.exportAll(ctx, cmd, l, format, filters)
	}

	var profile, list stats.Result
	// Neither load cancels the other so a rejected token always reaches
	// loadProfile and ends the session.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		profile, err = r.loadProfile(ctx, l)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = r.loadList(ctx, l, filters.Key())
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := formatter.List{
		Tab:       filters.Tab,
		TimeRange: filters.TimeRange,
		Owner:     profile.Profile.Name(),
		Items:     list.Items(),
		Generated: r.now(),
	}

	path, err := formatter.WriteExport(out, format, formatter.LayoutFor(filters.Layout), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported", "path", path, "items", len(out.Items))
	return r.writePlain("✓ Exported %d %s to %s\n", len(out.Items), filters.Tab, path)
}

// exportAll writes every tab and time range, printing progress as lists complete.
func (r *Runner) exportAll(ctx context.Context, cmd *cli.Command, l *stats.Loader, format formatter.Format, filters stats.Filters) error {
	profile, err := r.loadProfile(ctx, l)
	if err != nil {
		return err
	}

	sess, err := r.store.Load()
	if err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			if u.Phase != tasks.FetchList {
				r.writePlain("%s\n", u.Message)
			}
		}
	}()

	result, err := tasks.BulkExport(ctx, prog, r.service, sess, tasks.BulkExportOpts{
		Format:     format,
		Layout:     filters.Layout,
		Limit:      filters.Limit,
		Owner:      profile.Profile.Name(),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		Logger:     r.logger,
		Now:        r.now,
	})
	close(prog)
	<-done

	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			return fmt.Errorf("%w: run `soundslate auth login`", shared.ErrTokenExpired)
		}
		return err
	}

	r.logger.Info("bulk export finished", "dir", result.OutputDirectory, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	r.writePlainHeader("Export Summary")
	r.writePlain("Lists:     %d\n", result.TotalLists)
	r.writePlain("Succeeded: %d\n", result.SuccessfulExports)
	r.writePlain("Failed:    %d\n", result.FailedExports)
	return r.writePlain("Manifest:  %s\n", result.ManifestPath)
}

// Share prints the share targets for a tab and optionally opens one.
func (r *Runner) Share(ctx context.Context, cmd *cli.Command) error {
	tab, err := models.ParseTab(cmd.String("tab"))
	if err != nil {
		return fmt.Errorf("%w: --tab: %v", shared.ErrInvalidFlag, err)
	}

	targets := formatter.ShareTargets(r.config.Spotify.RedirectURI(), tab)
	open := strings.ToLower(strings.TrimSpace(cmd.String("open")))

	for _, t := range targets {
		if t.URL != "" {
			r.writePlain("%s: %s\n", t.Label, t.URL)
		} else {
			r.writePlain("%s\n", t.Instruction)
		}
	}

	if open == "" {
		return nil
	}
	for _, t := range targets {
		if t.Platform == open && t.URL != "" {
			return r.openURL(t.URL)
		}
	}
	return fmt.Errorf("%w: --open %q has no link", shared.ErrInvalidFlag, open)
}

// filtersFromFlags reads the filter flags strictly. tab overrides --tab when set.
func filtersFromFlags(cmd *cli.Command, tab models.Tab) (stats.Filters, error) {
	f := stats.DefaultFilters()
	var err error

	if tab != "" {
		f.Tab = tab
	} else if v := cmd.String("tab"); v != "" {
		if f.Tab, err = models.ParseTab(v); err != nil {
			return f, fmt.Errorf("%w: --tab: %v", shared.ErrInvalidFlag, err)
		}
	}
	if v := cmd.String("time-range"); v != "" {
		if f.TimeRange, err = models.ParseTimeRange(v); err != nil {
			return f, fmt.Errorf("%w: --time-range: %v", shared.ErrInvalidFlag, err)
		}
	}
	if n := cmd.Int("limit"); n != 0 {
		if !models.ValidLimit(n) {
			return f, fmt.Errorf("%w: --limit must be one of 5, 10, 15, 20", shared.ErrInvalidFlag)
		}
		f.Limit = n
	}
	if v := cmd.String("view"); v != "" {
		if f.Layout, err = models.ParseLayout(v); err != nil {
			return f, fmt.Errorf("%w: --view: %v", shared.ErrInvalidFlag, err)
		}
	}
	return f, nil
}
