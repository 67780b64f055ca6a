package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// GoGitRepository reads history with go-git, without a git executable.
type GoGitRepository struct {
	path string
	repo *git.Repository

	// go-git storage is not safe for concurrent use, so every concurrent
	// Diff call borrows its own handle.
	handles chan *git.Repository
}

// OpenGoGit opens the repository at path with the given number of
// independent handles for concurrent diffs.
func OpenGoGit(path string, handles int) (*GoGitRepository, error) {
	if handles < 1 {
		handles = 1
	}

	open := func() (*git.Repository, error) {
		return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	}

	repo, err := open()
	if err != nil {
		return nil, repoErr("open", path, err)
	}

	r := &GoGitRepository{
		path:    path,
		repo:    repo,
		handles: make(chan *git.Repository, handles),
	}
	for i := 0; i < handles; i++ {
		h, err := open()
		if err != nil {
			return nil, repoErr("open", path, err)
		}
		r.handles <- h
	}
	return r, nil
}

// Head returns the hash HEAD points to.
func (r *GoGitRepository) Head(_ context.Context) (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", repoErr("head", r.path, ErrNoCommits)
		}
		return "", repoErr("head", r.path, err)
	}
	return ref.Hash().String(), nil
}

// Walk visits commits reachable from HEAD ordered by committer time, newest
// first. Commits on a shallow boundary are reported as grafted with no
// parents, matching what git log shows for a shallow clone.
func (r *GoGitRepository) Walk(ctx context.Context, fn func(CommitInfo) error) error {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return repoErr("walk", r.path, ErrNoCommits)
		}
		return repoErr("walk", r.path, err)
	}

	head, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return repoErr("walk", r.path, err)
	}

	grafted, missing, err := r.shallowBoundary()
	if err != nil {
		return repoErr("walk", r.path, err)
	}

	cIter := object.NewCommitIterCTime(head, missing, nil)
	defer cIter.Close()

	err = cIter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(commitInfoFromObject(c, grafted[c.Hash])); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return storer.ErrStop
			}
			return err
		}
		return nil
	})
	if err != nil {
		return repoErr("walk", r.path, err)
	}
	return nil
}

// shallowBoundary returns the shallow commits and those of their parents
// that are absent from the object store.
func (r *GoGitRepository) shallowBoundary() (map[plumbing.Hash]bool, map[plumbing.Hash]bool, error) {
	shallow, err := r.repo.Storer.Shallow()
	if err != nil {
		return nil, nil, err
	}

	grafted := make(map[plumbing.Hash]bool, len(shallow))
	missing := make(map[plumbing.Hash]bool)
	for _, h := range shallow {
		grafted[h] = true
		c, err := r.repo.CommitObject(h)
		if err != nil {
			continue
		}
		for _, p := range c.ParentHashes {
			if _, err := r.repo.CommitObject(p); err != nil {
				missing[p] = true
			}
		}
	}
	return grafted, missing, nil
}

func commitInfoFromObject(c *object.Commit, grafted bool) CommitInfo {
	var parents []string
	if !grafted {
		parents = make([]string, 0, len(c.ParentHashes))
		for _, p := range c.ParentHashes {
			parents = append(parents, p.String())
		}
	}

	return CommitInfo{
		SHA:     c.Hash.String(),
		Parents: parents,
		Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
		When:    c.Author.When,
		Message: strings.TrimRight(c.Message, "\n"),
		Grafted: grafted,
	}
}

// Diff computes the unified diff of commit against reference.
func (r *GoGitRepository) Diff(ctx context.Context, commit, reference string, opts DiffOptions) (*Patch, error) {
	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	var repo *git.Repository
	select {
	case repo = <-r.handles:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { r.handles <- repo }()

	to, err := treeOf(repo, commit)
	if err != nil {
		return nil, err
	}

	var from *object.Tree
	if reference != "" {
		from, err = treeOf(repo, reference)
		if err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, diffTreeOptions(opts.RenameDetect))
	if err != nil {
		return nil, fmt.Errorf("diff tree %s..%s: %w", ShortHash(reference), ShortHash(commit), err)
	}

	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("patch %s..%s: %w", ShortHash(reference), ShortHash(commit), err)
	}

	var buf bytes.Buffer
	if err := diff.NewUnifiedEncoder(&buf, opts.contextLines()).Encode(filterPatch(patch, filter)); err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	text := normalizeHunkHeaders(buf.String())
	files, err := ParseUnifiedDiff(text)
	if err != nil {
		return nil, fmt.Errorf("parse patch %s..%s: %w", ShortHash(reference), ShortHash(commit), err)
	}
	return &Patch{Text: text, Files: files}, nil
}

func treeOf(repo *git.Repository, sha string) (*object.Tree, error) {
	c, err := repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", ShortHash(sha), err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", ShortHash(sha), err)
	}
	return tree, nil
}

func diffTreeOptions(mode RenameDetectMode) *object.DiffTreeOptions {
	switch mode {
	case RenameDetectOff:
		return &object.DiffTreeOptions{}
	case RenameDetectExact:
		return &object.DiffTreeOptions{DetectRenames: true, OnlyExactRenames: true}
	default:
		// git's -M default threshold.
		return &object.DiffTreeOptions{DetectRenames: true, RenameScore: 50}
	}
}

// filteredPatch is a diff.Patch restricted to the file patches that pass a
// PathFilter.
type filteredPatch struct {
	files []diff.FilePatch
}

func (p filteredPatch) FilePatches() []diff.FilePatch { return p.files }
func (p filteredPatch) Message() string               { return "" }

func filterPatch(patch *object.Patch, filter *PathFilter) diff.Patch {
	var files []diff.FilePatch
	for _, fp := range patch.FilePatches() {
		from, to := fp.Files()
		var path, oldPath string
		if to != nil {
			path = to.Path()
		}
		if from != nil {
			oldPath = from.Path()
		}
		if path == "" {
			path, oldPath = oldPath, ""
		}
		if filter.MatchChange(path, oldPath) {
			files = append(files, fp)
		}
	}
	return filteredPatch{files: files}
}
