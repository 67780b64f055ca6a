package git

import (
	"errors"
	"fmt"
)

// ErrNoCommits is reported when history is empty or HEAD is unborn.
var ErrNoCommits = errors.New("repository has no commits")

// RepositoryError reports a failure to acquire or traverse a repository.
// It is fatal for a run.
type RepositoryError struct {
	Op     string // "clone", "open", "walk", ...
	Source string
	Err    error
}

func (e *RepositoryError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("repository %s %s: %v", e.Op, e.Source, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func repoErr(op, source string, err error) error {
	var re *RepositoryError
	if errors.As(err, &re) {
		return err
	}
	return &RepositoryError{Op: op, Source: source, Err: err}
}
