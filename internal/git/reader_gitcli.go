package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Each commit header starts with 0x1e (record separator) followed by
// NUL-separated fields; the raw body (%B) is last so it may contain anything
// but NUL.
const cliLogFormat = "%x1e%H%x00%P%x00%aI%x00%an%x00%ae%x00%B"

// maxLogRecord bounds a single commit record (mostly its message).
const maxLogRecord = 64 << 20

// CLIRepository reads history by running the git executable.
type CLIRepository struct {
	dir     string
	gitPath string
}

// OpenCLI verifies that dir is inside a git repository and returns a reader
// that shells out to git.
func OpenCLI(ctx context.Context, dir string) (*CLIRepository, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, repoErr("open", dir, err)
	}
	r := &CLIRepository{dir: dir, gitPath: gitPath}
	if _, err := r.output(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, repoErr("open", dir, err)
	}
	return r, nil
}

func (r *CLIRepository) command(ctx context.Context, args ...string) *exec.Cmd {
	full := append([]string{"-C", r.dir, "-c", "core.quotePath=false"}, args...)
	cmd := exec.CommandContext(ctx, r.gitPath, full...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_PAGER=cat", "LC_ALL=C")
	return cmd
}

func (r *CLIRepository) output(ctx context.Context, args ...string) ([]byte, error) {
	cmd := r.command(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Head returns the hash HEAD points to.
func (r *CLIRepository) Head(ctx context.Context) (string, error) {
	out, err := r.output(ctx, "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err != nil {
		return "", repoErr("head", r.dir, ErrNoCommits)
	}
	return strings.TrimSpace(string(out)), nil
}

// Walk streams `git log` from HEAD, newest first.
func (r *CLIRepository) Walk(ctx context.Context, fn func(CommitInfo) error) error {
	if _, err := r.Head(ctx); err != nil {
		return err
	}

	shallow, err := r.shallowCommits(ctx)
	if err != nil {
		return repoErr("walk", r.dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := r.command(ctx, "log", "--no-color", "--pretty=format:"+cliLogFormat, "HEAD")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return repoErr("walk", r.dir, err)
	}
	if err := cmd.Start(); err != nil {
		return repoErr("walk", r.dir, err)
	}

	stopped := false
	walkErr := scanLogRecords(stdout, func(rec []byte) error {
		info, err := parseLogRecord(rec)
		if err != nil {
			return err
		}
		if shallow[info.SHA] {
			info.Grafted = true
			info.Parents = nil
		}
		return fn(info)
	})
	if errors.Is(walkErr, ErrStopWalk) {
		stopped = true
		walkErr = nil
		cancel()
	}
	// Drain so git is not blocked writing when we stop early.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if walkErr != nil {
		return repoErr("walk", r.dir, walkErr)
	}
	if waitErr != nil && !stopped {
		return repoErr("walk", r.dir, fmt.Errorf("git log failed: %w: %s", waitErr, strings.TrimSpace(stderr.String())))
	}
	return nil
}

func scanLogRecords(r io.Reader, fn func([]byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogRecord)
	scanner.Split(splitRecords)
	for scanner.Scan() {
		rec := scanner.Bytes()
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// splitRecords is a bufio.SplitFunc splitting on 0x1e.
func splitRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0x1e); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func parseLogRecord(rec []byte) (CommitInfo, error) {
	fields := bytes.SplitN(rec, []byte{0x00}, 6)
	if len(fields) < 6 {
		return CommitInfo{}, fmt.Errorf("unexpected git log record format")
	}

	when, err := time.Parse(time.RFC3339, string(fields[2]))
	if err != nil {
		return CommitInfo{}, fmt.Errorf("parse author date: %w", err)
	}

	return CommitInfo{
		SHA:     string(fields[0]),
		Parents: strings.Fields(string(fields[1])),
		Author:  AuthorInfo{Name: string(fields[3]), Email: string(fields[4])},
		When:    when,
		Message: strings.TrimRight(string(fields[5]), "\n"),
	}, nil
}

// shallowCommits reads the shallow file, if any.
func (r *CLIRepository) shallowCommits(ctx context.Context) (map[string]bool, error) {
	out, err := r.output(ctx, "rev-parse", "--git-path", "shallow")
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(string(out))
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	shallow := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			shallow[line] = true
		}
	}
	return shallow, nil
}

// Diff runs `git diff` between reference (or the empty tree) and commit.
func (r *CLIRepository) Diff(ctx context.Context, commit, reference string, opts DiffOptions) (*Patch, error) {
	filter, err := NewPathFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	if reference == "" {
		reference = EmptyTreeSHA
	}

	args := []string{
		"diff",
		"--no-color",
		"--no-ext-diff",
		"--no-textconv",
		"--src-prefix=a/",
		"--dst-prefix=b/",
		"-U" + strconv.Itoa(opts.contextLines()),
	}
	args = append(args, renameDetectArgs(opts.RenameDetect)...)
	args = append(args, reference, commit)

	out, err := r.output(ctx, args...)
	if err != nil {
		return nil, err
	}

	text, err := FilterSections(string(out), filter)
	if err != nil {
		return nil, fmt.Errorf("filter patch %s..%s: %w", ShortHash(reference), ShortHash(commit), err)
	}
	files, err := ParseUnifiedDiff(text)
	if err != nil {
		return nil, fmt.Errorf("parse patch %s..%s: %w", ShortHash(reference), ShortHash(commit), err)
	}
	return &Patch{Text: text, Files: files}, nil
}

func renameDetectArgs(mode RenameDetectMode) []string {
	switch mode {
	case RenameDetectOff:
		return []string{"--no-renames"}
	case RenameDetectExact:
		return []string{"-M100%"}
	default:
		return []string{"-M", "-C"}
	}
}
