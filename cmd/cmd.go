// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func configFlag(r *Runner) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   r.configPath,
	}
}

// enrichCommand runs the Spotify to Tunebat enrichment pipeline
func enrichCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "enrich",
		Aliases:   []string{"run"},
		Usage:     "Look up BPM, key, duration and energy for every track behind a Spotify link",
		UsageText: "setlist enrich --link https://open.spotify.com/playlist/<id> [--format csv] [--output report.csv]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "link",
				Aliases:  []string{"l"},
				Usage:    "Spotify playlist or track link",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file path (default from [report] in config)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: fmt.Sprintf("Report format (%s)", strings.Join(shared.ReportFormats, ", ")),
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of tracks looked up concurrently",
			},
			&cli.DurationFlag{
				Name:  "batch-delay",
				Usage: "Pause between batches",
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Minimum similarity for a candidate to be accepted",
			},
			&cli.StringFlag{
				Name:  "algorithm",
				Usage: fmt.Sprintf("Similarity algorithm (%s)", strings.Join(shared.Algorithms, ", ")),
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Keep the result in the local history database",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the run summary as JSON",
			},
		},
		Action: r.Enrich,
	}
}

// linkCommand inspects Spotify links
func linkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Spotify link utilities",
		Commands: []*cli.Command{
			{
				Name:  "parse",
				Usage: "Show the kind and ID a Spotify link refers to",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "link"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LinkParse,
			},
		},
	}
}

// tunebatCommand queries the Tunebat search API directly
func tunebatCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tunebat",
		Aliases: []string{"tb"},
		Usage:   "Tunebat search operations",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search Tunebat and score each hit",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Title to score candidates against (defaults to the query)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.TunebatSearch,
			},
		},
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "List the tracks behind a playlist or track link",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "link",
						Aliases:  []string{"l"},
						Usage:    "Spotify playlist or track link",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyTracks,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file, optionally with Spotify credentials",
				Flags: []cli.Flag{
					configFlag(r),
					&cli.StringFlag{
						Name:  "client-id",
						Usage: "Spotify client ID",
					},
					&cli.StringFlag{
						Name:  "client-secret",
						Usage: "Spotify client secret",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(r),
					&cli.StringFlag{
						Name:  "path",
						Usage: "Database file path (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration before reporting status",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand manages saved enrichment reports
func historyCommand(r *Runner) *cli.Command {
	idFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "id",
			Usage:    "Report sequence number or ID",
			Required: true,
		}
	}

	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Browse reports saved with enrich --save",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved reports, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of reports to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Only show reports for this link type (playlist or track)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a saved report",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Write a saved report to a file",
				Flags: []cli.Flag{
					idFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: fmt.Sprintf("Report format (%s)", strings.Join(shared.ReportFormats, ", ")),
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, or - for stdout",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:  "refresh",
				Usage: "Enrich a saved report's link again and replace its rows",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryRefresh,
			},
			{
				Name:  "delete",
				Usage: "Remove a saved report",
				Flags: []cli.Flag{
					idFlag(),
				},
				Action: r.HistoryDelete,
			},
		},
	}
}
