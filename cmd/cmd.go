// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/soundslate/internal/models"
	"github.com/urfave/cli/v3"
)

func filterFlags(withTab bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "time-range",
			Aliases: []string{"r"},
			Usage:   "short_term (4 weeks), medium_term (6 months) or long_term (all time)",
			Value:   string(models.MediumTerm),
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Number of items: 5, 10, 15 or 20",
			Value:   models.DefaultLimit,
		},
		&cli.StringFlag{
			Name:  "view",
			Usage: "Layout: card or simple",
			Value: string(models.CardLayout),
		},
	}
	if withTab {
		flags = append([]cli.Flag{&cli.StringFlag{
			Name:    "tab",
			Aliases: []string{"t"},
			Usage:   "tracks or artists",
			Value:   string(models.TracksTab),
		}}, flags...)
	}
	return flags
}

// setupCommand handles first-run configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles the stored session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in through the browser and store the access token",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: defaultLoginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Remove the stored access token",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check whether the stored token is still accepted",
				Action: r.AuthStatus,
			},
		},
	}
}

func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "Show the logged in Spotify profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Me,
	}
}

// topCommand prints top tracks or artists.
func topCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return append(filterFlags(false),
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
		)
	}
	return &cli.Command{
		Name:  "top",
		Usage: "Show your top tracks or artists",
		Commands: []*cli.Command{
			{
				Name:   "tracks",
				Usage:  "Top tracks",
				Flags:  flags(),
				Action: r.TopTracks,
			},
			{
				Name:   "artists",
				Usage:  "Top artists",
				Flags:  flags(),
				Action: r.TopArtists,
			},
		},
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a top list as png, csv, md, txt or json",
		Flags: append(filterFlags(true),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "png, csv, md, txt or json",
				Value:   "png",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every tab and time range with a manifest",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent exports with --all",
				Value: 3,
			},
		),
		Action: r.Export,
	}
}

func shareCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "share",
		Usage: "Print share links for your top list",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "tab",
				Aliases: []string{"t"},
				Usage:   "tracks or artists",
				Value:   string(models.TracksTab),
			},
			&cli.StringFlag{
				Name:  "open",
				Usage: "Open the link for a platform (twitter, whatsapp) in the browser",
			},
		},
		Action: r.Share,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the SoundSlate web app",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config and PORT)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse your stats in the terminal",
		Flags: append(filterFlags(true),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for PNG exports",
			},
		),
		Action: r.TUI,
	}
}
