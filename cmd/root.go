package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "commitpage",
		Usage:     "Render recent git history as a single offline HTML page",
		ArgsUsage: "<repo_url|path>",
		Version:   "1.0.0",
		Flags:     appFlags(),
		Action:    generateAction,
	}
}

func appFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file path, - for stdout (default: <repo>-log.<ext> in the temp dir)",
		},
		&cli.IntFlag{
			Name:  "max-commits",
			Usage: "Maximum number of commits to render (0 for no limit)",
			Value: 200,
		},
		&cli.BoolFlag{
			Name:  "include-merges",
			Usage: "Include merge commits (diffed against their first parent)",
		},
		&cli.IntFlag{
			Name:  "clone-depth",
			Usage: "Shallow clone depth for remote repositories (0 for full history)",
		},
		&cli.IntFlag{
			Name:    "context",
			Aliases: []string{"U"},
			Usage:   "Diff context lines",
			Value:   3,
		},
		&cli.StringFlag{
			Name:  "max-diff-bytes",
			Usage: "Truncate each commit's diff after this size, e.g. 65536 or 512KiB (0 to disable)",
			Value: "512KiB",
		},
		&cli.BoolFlag{
			Name:  "no-open",
			Usage: "Don't open the document after generation",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (html, json, cxml, markdown)",
			Value:   "html",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Repository backend (auto, git, go-git)",
			Value: "auto",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent diff workers (0 for the number of CPUs)",
		},
		&cli.StringFlag{
			Name:  "rename-detect",
			Usage: "Rename detection mode (off, exact, similarity)",
			Value: "similarity",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns of paths to keep in diffs (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns of paths to drop from diffs (can be specified multiple times)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only print errors",
		},
	}
}

// Run executes the CLI application. An interrupt cancels the run so that a
// temporary clone is still removed before exiting.
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := App().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
