// Package history selects the commit window and resolves the parent each
// commit is diffed against.
package history

import (
	"context"
	"errors"

	"github.com/masmgr/commitpage/internal/git"
)

// CommitRecord is a commit together with its position in the window.
type CommitRecord struct {
	git.CommitInfo
	Position int
}

// Window is the ordered, newest-first set of commits selected for a run.
type Window []CommitRecord

// Shallow reports whether the window reached a shallow-clone boundary.
func (w Window) Shallow() bool {
	for _, r := range w {
		if r.Grafted {
			return true
		}
	}
	return false
}

// WindowOptions configures commit enumeration.
type WindowOptions struct {
	MaxCommits    int // 0 or less means no limit
	IncludeMerges bool
}

// Enumerate walks history from HEAD and collects up to MaxCommits commits,
// newest first. Merge commits are skipped unless IncludeMerges is set and do
// not take a slot in the window.
func Enumerate(ctx context.Context, repo git.Repository, opts WindowOptions) (Window, error) {
	var window Window
	if opts.MaxCommits > 0 {
		window = make(Window, 0, opts.MaxCommits)
	}

	err := repo.Walk(ctx, func(c git.CommitInfo) error {
		if c.IsMerge() && !opts.IncludeMerges {
			return nil
		}
		window = append(window, CommitRecord{CommitInfo: c, Position: len(window)})
		if opts.MaxCommits > 0 && len(window) >= opts.MaxCommits {
			return git.ErrStopWalk
		}
		return nil
	})
	if err != nil {
		var re *git.RepositoryError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &git.RepositoryError{Op: "walk", Err: err}
	}

	if len(window) == 0 {
		return nil, &git.RepositoryError{Op: "walk", Err: git.ErrNoCommits}
	}
	return window, nil
}
