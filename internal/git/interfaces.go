package git

import (
	"context"
	"errors"
)

// ErrStopWalk is returned by a walk callback to end traversal early.
var ErrStopWalk = errors.New("stop walk")

// Repository defines the interface for reading Git repository history.
// This abstraction isolates callers from how history is read (go-git or the
// git executable) and allows substituting a fixed commit graph in tests.
type Repository interface {
	// Head returns the hash of the commit the current reference points to.
	Head(ctx context.Context) (string, error)

	// Walk visits commits reachable from HEAD, newest first. Returning
	// ErrStopWalk from fn ends the walk without error.
	Walk(ctx context.Context, fn func(CommitInfo) error) error

	// Diff returns the unified diff of commit against reference. An empty
	// reference diffs against the empty tree.
	Diff(ctx context.Context, commit, reference string, opts DiffOptions) (*Patch, error)
}

// Compile-time interface conformance checks.
var (
	_ Repository = (*GoGitRepository)(nil)
	_ Repository = (*CLIRepository)(nil)
	_ Repository = (*MockRepository)(nil)
)
