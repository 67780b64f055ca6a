package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Backend selects how the repository is read.
type Backend string

const (
	BackendAuto  Backend = "auto"
	BackendCLI   Backend = "git"
	BackendGoGit Backend = "go-git"
)

// ParseBackend parses a --backend flag value.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return BackendAuto, nil
	case "git", "cli", "exec":
		return BackendCLI, nil
	case "go-git", "gogit", "pure":
		return BackendGoGit, nil
	default:
		return "", fmt.Errorf("invalid backend: %q (expected auto, git, go-git)", s)
	}
}

// Resolve picks a concrete backend: auto prefers the git executable when
// it is on PATH.
func (b Backend) Resolve() Backend {
	if b != BackendAuto && b != "" {
		return b
	}
	if _, err := exec.LookPath("git"); err == nil {
		return BackendCLI
	}
	return BackendGoGit
}

// AcquireOptions configures how a repository is made available locally.
type AcquireOptions struct {
	Source  string // URL or local path
	Depth   int    // Shallow clone depth, 0 for full history
	Backend Backend
}

// Workspace is a local checkout a run reads from. Temporary workspaces are
// removed by Close.
type Workspace struct {
	Dir       string
	Source    string
	Temporary bool

	root string
}

// Close removes the temporary clone, if any. It is safe to call more than once.
func (w *Workspace) Close() error {
	if w == nil || !w.Temporary || w.root == "" {
		return nil
	}
	root := w.root
	w.root = ""
	return os.RemoveAll(root)
}

// Acquire opens a local repository in place or clones a remote one into a
// temporary directory.
func Acquire(ctx context.Context, opts AcquireOptions) (*Workspace, error) {
	if opts.Source == "" {
		return nil, repoErr("acquire", "", fmt.Errorf("no repository given"))
	}

	if info, err := os.Stat(opts.Source); err == nil && info.IsDir() {
		dir, err := filepath.Abs(opts.Source)
		if err != nil {
			return nil, repoErr("acquire", opts.Source, err)
		}
		return &Workspace{Dir: dir, Source: opts.Source}, nil
	}

	root, err := os.MkdirTemp("", "commitpage-*")
	if err != nil {
		return nil, repoErr("clone", opts.Source, err)
	}
	ws := &Workspace{
		Dir:       filepath.Join(root, "repo"),
		Source:    opts.Source,
		Temporary: true,
		root:      root,
	}

	switch opts.Backend.Resolve() {
	case BackendCLI:
		err = cloneCLI(ctx, opts.Source, ws.Dir, opts.Depth)
	default:
		_, err = git.PlainCloneContext(ctx, ws.Dir, false, &git.CloneOptions{
			URL:   opts.Source,
			Depth: opts.Depth,
			Tags:  git.NoTags,
		})
	}
	if err != nil {
		_ = ws.Close()
		return nil, repoErr("clone", opts.Source, err)
	}
	return ws, nil
}

func cloneCLI(ctx context.Context, url, dir string, depth int) error {
	args := []string{"clone", "--quiet", "--no-tags"}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}
	args = append(args, "--", url, dir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Open returns a Repository for the workspace using the given backend.
// handles bounds concurrent diff calls for the go-git backend.
func Open(ctx context.Context, ws *Workspace, backend Backend, handles int) (Repository, error) {
	switch backend.Resolve() {
	case BackendCLI:
		return OpenCLI(ctx, ws.Dir)
	default:
		return OpenGoGit(ws.Dir, handles)
	}
}
