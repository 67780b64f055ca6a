package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/masmgr/commitpage/internal/git"
	"github.com/masmgr/commitpage/internal/history"
)

// Options configures a pipeline run. It is passed by value and never
// modified by the pipeline.
type Options struct {
	Window       history.WindowOptions
	Diff         git.DiffOptions
	MaxDiffBytes int // 0 or less disables bounding
	Workers      int // 0 or less means runtime.NumCPU()

	// OnProgress, when set, is called after each diff completes. Calls are
	// serialized.
	OnProgress func(done, total int)
}

// Result is the output of a run: the window and one diff per commit, in
// window order.
type Result struct {
	Head     string
	Window   history.Window
	Diffs    []DiffResult
	Failures int
}

// Failed returns the placeholder results, in window order.
func (r *Result) Failed() []DiffResult {
	var failed []DiffResult
	for _, d := range r.Diffs {
		if d.Failed {
			failed = append(failed, d)
		}
	}
	return failed
}

// Run enumerates the window and computes every commit's bounded diff on a
// worker pool. Results are stored by window position, so the order does not
// depend on which worker finishes first. Enumeration failures abort the run;
// diff failures become placeholders.
func Run(ctx context.Context, repo git.Repository, opts Options) (*Result, error) {
	window, err := history.Enumerate(ctx, repo, opts.Window)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head(ctx)
	if err != nil {
		return nil, err
	}

	pairs := history.Pairs(window)
	diffs := generateAll(ctx, repo, pairs, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Head: head, Window: window, Diffs: diffs}
	for _, d := range diffs {
		if d.Failed {
			result.Failures++
		}
	}
	return result, nil
}

func generateAll(ctx context.Context, repo git.Repository, pairs []history.DiffPair, opts Options) []DiffResult {
	results := make([]DiffResult, len(pairs))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	jobs := make(chan int)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Each slot has exactly one writer.
				results[i] = Generate(ctx, repo, pairs[i], opts.Diff, opts.MaxDiffBytes)

				if opts.OnProgress != nil {
					mu.Lock()
					done++
					opts.OnProgress(done, len(pairs))
					mu.Unlock()
				}
			}
		}()
	}

dispatch:
	for i := range pairs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
