// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// analyzeCommand builds album records from Apple Music export CSVs.
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Aggregate Apple Music play activity into album records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "activity",
				Aliases:  []string{"a"},
				Usage:    "Path to Apple Music Play Activity CSV",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "containers",
				Usage:   "Path to Container Details CSV for artist and genre metadata",
				Aliases: []string{"m"},
			},
			&cli.StringFlag{
				Name:  "artists",
				Usage: "Path to a JSON album-to-artist mapping file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report output path (defaults to output.path from config)",
			},
			&cli.FloatFlag{
				Name:  "completion-threshold",
				Usage: "Drop albums below this completion percentage",
				Value: r.config.Analysis.CompletionThreshold,
			},
			&cli.FloatFlag{
				Name:  "listen-threshold",
				Usage: "Played fraction of a track that counts as a listen",
				Value: r.config.Analysis.ListenThreshold,
			},
			&cli.BoolFlag{
				Name:  "watch-only",
				Usage: "Only count plays from an Apple Watch",
				Value: true,
			},
		},
		Action: r.Analyze,
	}
}

// stravaCommand handles Strava operations
func stravaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "strava",
		Usage: "Strava activity operations",
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "Authenticate with Strava using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.StravaAuth,
			},
			{
				Name:  "sync",
				Usage: "Fetch runs and attach them to album records",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Report file to sync (defaults to output.path from config)",
					},
					&cli.IntFlag{
						Name:  "max-requests",
						Usage: "Hard cap on API requests for this run (0 for unlimited)",
						Value: r.config.Strava.MaxRequests,
					},
					&cli.IntFlag{
						Name:  "tolerance",
						Usage: "Match window half-width in minutes",
						Value: r.config.Analysis.ToleranceMinutes,
					},
					&cli.IntFlag{
						Name:  "buffer-days",
						Usage: "Widen the fetch range on both sides of the listen date range",
						Value: r.config.Strava.BufferDays,
					},
					&cli.BoolFlag{
						Name:  "test",
						Usage: "Fetch and match without writing the report",
					},
				},
				Action: r.StravaSync,
			},
		},
	}
}

// artistsCommand handles iTunes artist lookups for incomplete records.
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Artist metadata operations",
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Look up missing artists via the iTunes Search API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Report file to update (defaults to output.path from config)",
					},
					&cli.BoolFlag{
						Name:  "test",
						Usage: "Look up without writing the report",
					},
				},
				Action: r.ArtistsFetch,
			},
		},
	}
}

// starCommand handles starring albums in the report.
func starCommand(r *Runner) *cli.Command {
	fileFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Report file (defaults to output.path from config)",
		}
	}

	return &cli.Command{
		Name:  "star",
		Usage: "Star albums worth revisiting",
		Commands: []*cli.Command{
			{
				Name:  "toggle",
				Usage: "Toggle the star on an album by exact name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "album"},
				},
				Flags:  []cli.Flag{fileFlag()},
				Action: r.StarToggle,
			},
			{
				Name:   "list",
				Usage:  "List starred albums",
				Flags:  []cli.Flag{fileFlag()},
				Action: r.StarList,
			},
			{
				Name:    "search",
				Aliases: []string{"ui"},
				Usage:   "Interactive album picker for toggling stars",
				Flags:   []cli.Flag{fileFlag()},
				Action:  r.StarSearch,
			},
		},
	}
}

// exportCommand renders the report in alternate formats.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the report as CSV, markdown, or plain text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Report file to export (defaults to output.path from config)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: csv, markdown, or text",
				Value: "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.Export,
	}
}

// serveCommand runs the local report viewer.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the report viewer over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Viewer asset directory (defaults to server.dir from config)",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Report file to serve as /data.json",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: r.config.Server.Port,
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Create a config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
