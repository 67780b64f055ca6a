// Package pipeline computes and bounds the diff of every commit in a window.
package pipeline

import (
	"context"
	"fmt"

	"github.com/masmgr/commitpage/internal/diffbound"
	"github.com/masmgr/commitpage/internal/git"
	"github.com/masmgr/commitpage/internal/history"
)

// DiffComputationError reports that one commit's diff could not be computed.
// It does not abort a run; the commit is kept with a placeholder result.
type DiffComputationError struct {
	SHA       string
	Reference string
	Err       error
}

func (e *DiffComputationError) Error() string {
	ref := git.ShortHash(e.Reference)
	if ref == "" {
		ref = "empty tree"
	}
	return fmt.Sprintf("diff %s against %s: %v", git.ShortHash(e.SHA), ref, e.Err)
}

func (e *DiffComputationError) Unwrap() error {
	return e.Err
}

// DiffResult is the bounded diff of one commit against its reference.
type DiffResult struct {
	Reference  string
	Text       string
	Files      []git.FileChange
	Size       int // bytes of the full diff before bounding
	Truncated  bool
	Binary     bool // at least one file was not diffed as text
	Hunks      int
	Insertions int
	Deletions  int

	// Failed marks a placeholder for a diff that could not be computed.
	Failed bool
	Error  error
}

// PlaceholderPrefix starts the text of a failed result.
const PlaceholderPrefix = "[diff unavailable: "

// Generate diffs the pair's commit against its reference and bounds the text
// to maxBytes. Stats are taken from the full diff. A failure yields a
// placeholder result carrying a *DiffComputationError.
func Generate(ctx context.Context, repo git.Repository, pair history.DiffPair, opts git.DiffOptions, maxBytes int) DiffResult {
	patch, err := repo.Diff(ctx, pair.Commit.SHA, pair.Reference, opts)
	if err != nil {
		return placeholder(pair, err)
	}

	result := DiffResult{
		Reference: pair.Reference,
		Files:     patch.Files,
		Size:      len(patch.Text),
	}
	for _, f := range patch.Files {
		result.Hunks += f.Hunks
		result.Insertions += f.LinesAdded
		result.Deletions += f.LinesDeleted
		if f.Binary {
			result.Binary = true
		}
	}

	bounded := diffbound.Bound(patch.Text, maxBytes)
	result.Text = bounded.Text
	result.Truncated = bounded.Truncated
	return result
}

func placeholder(pair history.DiffPair, err error) DiffResult {
	dErr := &DiffComputationError{SHA: pair.Commit.SHA, Reference: pair.Reference, Err: err}
	return DiffResult{
		Reference: pair.Reference,
		Text:      PlaceholderPrefix + dErr.Error() + "]\n",
		Failed:    true,
		Error:     dErr,
	}
}
