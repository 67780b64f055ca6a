package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitpage/config"
	"github.com/masmgr/commitpage/internal/document"
	"github.com/masmgr/commitpage/internal/git"
	"github.com/masmgr/commitpage/internal/history"
	"github.com/masmgr/commitpage/internal/output"
	"github.com/masmgr/commitpage/internal/pipeline"
)

// RunOptions holds everything a generation run needs, resolved from the
// configuration file and the command line.
type RunOptions struct {
	Source     string
	OutputPath string
	Format     output.OutputFormat
	Backend    git.Backend
	CloneDepth int
	Open       bool
	Quiet      bool
	Pipeline   pipeline.Options
}

// Summary describes the options in the document header.
func (o *RunOptions) Summary() document.Summary {
	return document.Summary{
		MaxCommits:    o.Pipeline.Window.MaxCommits,
		IncludeMerges: o.Pipeline.Window.IncludeMerges,
		ContextLines:  o.Pipeline.Diff.ContextLines,
		MaxDiffBytes:  o.Pipeline.MaxDiffBytes,
		RenameDetect:  o.Pipeline.Diff.RenameDetect.String(),
	}
}

// NewRunOptions creates run options from CLI flags.
func NewRunOptions(c *cli.Context) (*RunOptions, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one repository URL or path, got %d arguments", c.NArg())
	}
	source := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	backend, err := git.ParseBackend(cfg.Runtime.Backend)
	if err != nil {
		return nil, err
	}
	renames, err := parseRenameDetectFlag(cfg.Diff.RenameDetect)
	if err != nil {
		return nil, err
	}
	if _, err := git.NewPathFilter(cfg.Filters.Include, cfg.Filters.Exclude); err != nil {
		return nil, err
	}
	maxDiffBytes, err := cfg.MaxDiffBytes()
	if err != nil {
		return nil, err
	}

	outPath := cfg.Output.Path
	if outPath == "" {
		outPath = deriveOutputPath(source, format)
	}

	return &RunOptions{
		Source:     source,
		OutputPath: outPath,
		Format:     format,
		Backend:    backend.Resolve(),
		CloneDepth: cfg.History.CloneDepth,
		Open:       cfg.Output.Open && outPath != output.StdoutPath,
		Quiet:      c.Bool("quiet"),
		Pipeline: pipeline.Options{
			Window: history.WindowOptions{
				MaxCommits:    cfg.History.MaxCommits,
				IncludeMerges: cfg.History.IncludeMerges,
			},
			Diff: git.DiffOptions{
				ContextLines: cfg.Diff.ContextLines,
				RenameDetect: renames,
				Include:      cfg.Filters.Include,
				Exclude:      cfg.Filters.Exclude,
			},
			MaxDiffBytes: maxDiffBytes,
			Workers:      cfg.Runtime.Workers,
		},
	}, nil
}

// loadConfig loads the configuration file and applies explicitly set flags
// on top of it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("max-commits") {
		cfg.History.MaxCommits = c.Int("max-commits")
	}
	if c.IsSet("include-merges") {
		cfg.History.IncludeMerges = c.Bool("include-merges")
	}
	if c.IsSet("clone-depth") {
		cfg.History.CloneDepth = c.Int("clone-depth")
	}
	if c.IsSet("context") {
		cfg.Diff.ContextLines = c.Int("context")
	}
	if c.IsSet("max-diff-bytes") {
		cfg.Diff.MaxDiffBytes = c.String("max-diff-bytes")
	}
	if c.IsSet("rename-detect") {
		cfg.Diff.RenameDetect = c.String("rename-detect")
	}
	if c.IsSet("out") {
		cfg.Output.Path = c.String("out")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("no-open") {
		cfg.Output.Open = !c.Bool("no-open")
	}
	if c.IsSet("backend") {
		cfg.Runtime.Backend = c.String("backend")
	}
	if c.IsSet("workers") {
		cfg.Runtime.Workers = c.Int("workers")
	}

	// Apply filter overrides from CLI
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseRenameDetectFlag parses a rename detection mode.
func parseRenameDetectFlag(s string) (git.RenameDetectMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "similarity", "on", "true", "aggressive":
		return git.RenameDetectSimilarity, nil
	case "exact", "simple":
		return git.RenameDetectExact, nil
	case "off", "false", "none":
		return git.RenameDetectOff, nil
	default:
		return 0, fmt.Errorf("invalid rename-detect mode: %q (expected off, exact, similarity)", s)
	}
}

// deriveOutputPath names the output after the repository, in the system
// temp dir.
func deriveOutputPath(source string, format output.OutputFormat) string {
	return filepath.Join(os.TempDir(), repoName(source)+"-log"+format.Extension())
}

// repoName returns the last path element of a URL, scp-style address or
// local path, without a ".git" suffix.
func repoName(source string) string {
	s := strings.TrimRight(strings.ReplaceAll(source, `\`, "/"), "/")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ".git")
	if s == "" || s == "." || s == ".." {
		if abs, err := filepath.Abs(source); err == nil && filepath.Base(abs) != string(filepath.Separator) {
			return strings.TrimSuffix(filepath.Base(abs), ".git")
		}
		return "repo"
	}
	return s
}
