package git

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DiffCall records one Diff request made against a MockRepository.
type DiffCall struct {
	Commit    string
	Reference string
}

// MockRepository is a test double for Repository.
// It serves a fixed commit graph without needing a real Git repository.
type MockRepository struct {
	// Commits in walk order, newest first.
	Commits   []CommitInfo
	WalkError error

	mu         sync.Mutex
	patches    map[DiffCall]string
	diffErrors map[string]error
	calls      []DiffCall
}

// NewMockRepository creates a MockRepository with the given history.
func NewMockRepository(commits []CommitInfo, err error) *MockRepository {
	return &MockRepository{
		Commits:    commits,
		WalkError:  err,
		patches:    make(map[DiffCall]string),
		diffErrors: make(map[string]error),
	}
}

// SetPatch registers the diff text returned for commit against reference.
func (m *MockRepository) SetPatch(commit, reference, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patches[DiffCall{Commit: commit, Reference: reference}] = text
}

// FailDiff makes every Diff of commit fail with err.
func (m *MockRepository) FailDiff(commit string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diffErrors[commit] = err
}

// Calls returns the Diff requests made so far.
func (m *MockRepository) Calls() []DiffCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DiffCall(nil), m.calls...)
}

// Head returns the newest commit.
func (m *MockRepository) Head(_ context.Context) (string, error) {
	if m.WalkError != nil {
		return "", m.WalkError
	}
	if len(m.Commits) == 0 {
		return "", repoErr("head", "mock", ErrNoCommits)
	}
	return m.Commits[0].SHA, nil
}

// Walk replays the predefined commits or error.
func (m *MockRepository) Walk(ctx context.Context, fn func(CommitInfo) error) error {
	if m.WalkError != nil {
		return m.WalkError
	}
	for _, c := range m.Commits {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Diff returns the registered patch, or a one-file synthetic patch naming
// the commit and reference when none was registered.
func (m *MockRepository) Diff(_ context.Context, commit, reference string, _ DiffOptions) (*Patch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := DiffCall{Commit: commit, Reference: reference}
	m.calls = append(m.calls, call)

	if err, ok := m.diffErrors[commit]; ok {
		return nil, err
	}

	text, ok := m.patches[call]
	if !ok {
		text = syntheticPatch(commit, reference)
	}
	files, err := ParseUnifiedDiff(text)
	if err != nil {
		return nil, err
	}
	return &Patch{Text: text, Files: files}, nil
}

func syntheticPatch(commit, reference string) string {
	if reference == "" {
		return fmt.Sprintf("diff --git a/%[1]s.txt b/%[1]s.txt\nnew file mode 100644\n--- /dev/null\n+++ b/%[1]s.txt\n@@ -0,0 +1 @@\n+%[1]s\n",
			ShortHash(commit))
	}
	return fmt.Sprintf("diff --git a/change.txt b/change.txt\n--- a/change.txt\n+++ b/change.txt\n@@ -1 +1 @@\n-%s\n+%s\n",
		ShortHash(reference), ShortHash(commit))
}
