package cmd

import (
	"context"
	"errors"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/commitpage/internal/document"
	"github.com/masmgr/commitpage/internal/git"
	"github.com/masmgr/commitpage/internal/output"
	"github.com/masmgr/commitpage/internal/pipeline"
)

func generateAction(c *cli.Context) error {
	if c.NArg() == 0 {
		_ = cli.ShowAppHelp(c)
		return errors.New("missing repository URL or path")
	}

	opts, err := NewRunOptions(c)
	if err != nil {
		return err
	}
	log := newProgressLogger(c.App.ErrWriter, opts.Quiet)

	doc, err := Generate(c.Context, opts, log)
	if err != nil {
		return err
	}

	if !opts.Quiet {
		if err := output.WriteSummary(c.App.ErrWriter, doc); err != nil {
			return err
		}
	}

	if opts.Open {
		log.Step("Opening %s", opts.OutputPath)
		if err := openDocument(c.App.ErrWriter, opts.OutputPath); err != nil {
			log.Warn("could not open the document: %v", err)
		}
	}
	return nil
}

// Generate acquires the repository, renders its recent history and writes
// the document to opts.OutputPath. A temporary clone is removed before
// Generate returns.
func Generate(ctx context.Context, opts *RunOptions, log *progressLogger) (doc *document.Document, err error) {
	log.Step("Acquiring %s", opts.Source)
	ws, err := git.Acquire(ctx, git.AcquireOptions{
		Source:  opts.Source,
		Depth:   opts.CloneDepth,
		Backend: opts.Backend,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if ws.Temporary {
			log.Step("Cleaning up %s", ws.Dir)
		}
		if cerr := ws.Close(); cerr != nil {
			log.Warn("failed to remove %s: %v", ws.Dir, cerr)
		}
	}()

	handles := opts.Pipeline.Workers
	if handles <= 0 {
		handles = runtime.NumCPU()
	}
	repo, err := git.Open(ctx, ws, opts.Backend, handles)
	if err != nil {
		return nil, err
	}

	popts := opts.Pipeline
	popts.OnProgress = log.Progress
	if next := opts.Pipeline.OnProgress; next != nil {
		popts.OnProgress = func(done, total int) {
			log.Progress(done, total)
			next(done, total)
		}
	}
	log.Step("Reading history (%s, %s backend) and rendering diffs with -U%d, per-commit cap %s",
		windowLabel(popts), opts.Backend, popts.Diff.ContextLines, capLabel(popts.MaxDiffBytes))

	result, err := pipeline.Run(ctx, repo, popts)
	if err != nil {
		return nil, err
	}
	log.Step("Rendered %d commits (HEAD: %s)", len(result.Window), git.ShortHash(result.Head))

	if limit := popts.Window.MaxCommits; limit > 0 && len(result.Window) < limit && result.Window.Shallow() {
		log.Warn("history is shallow: only %d of %d requested commits are available (clone depth %d)",
			len(result.Window), limit, opts.CloneDepth)
	}
	for _, d := range result.Failed() {
		log.Warn("%v", d.Error)
	}

	doc, err = document.Assemble(result.Window, result.Diffs, document.Meta{
		Source:  opts.Source,
		Head:    result.Head,
		Options: opts.Summary(),
	})
	if err != nil {
		return nil, err
	}

	if opts.OutputPath != output.StdoutPath {
		log.Step("Writing %s", opts.OutputPath)
	}
	if err := output.WriteDocument(doc, opts.Format, opts.OutputPath); err != nil {
		return nil, err
	}
	return doc, nil
}

func windowLabel(opts pipeline.Options) string {
	label := "all commits"
	if opts.Window.MaxCommits > 0 {
		label = "max " + humanize.Comma(int64(opts.Window.MaxCommits)) + " commits"
	}
	if opts.Window.IncludeMerges {
		label += " including merges"
	}
	return label
}

func capLabel(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return humanize.IBytes(uint64(n))
}
