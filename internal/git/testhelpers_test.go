package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo builds small histories in a temporary repository with go-git.
type testRepo struct {
	t     testing.TB
	dir   string
	repo  *gogit.Repository
	wt    *gogit.Worktree
	clock time.Time
}

func newTestRepo(t testing.TB) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &testRepo{
		t:     t,
		dir:   dir,
		repo:  repo,
		wt:    wt,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) write(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(rel); err != nil {
		r.t.Fatalf("Add: %v", err)
	}
}

func (r *testRepo) remove(rel string) {
	r.t.Helper()
	if _, err := r.wt.Remove(rel); err != nil {
		r.t.Fatalf("Remove: %v", err)
	}
}

func (r *testRepo) commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	r.clock = r.clock.Add(time.Minute)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: r.clock}
	hash, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   parents,
	})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	return hash
}

func (r *testRepo) branchFrom(name string, from plumbing.Hash) {
	r.t.Helper()
	if err := r.wt.Checkout(&gogit.CheckoutOptions{
		Hash:   from,
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}); err != nil {
		r.t.Fatalf("Checkout(%s): %v", name, err)
	}
}

func (r *testRepo) checkout(name string) {
	r.t.Helper()
	if err := r.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	}); err != nil {
		r.t.Fatalf("Checkout(%s): %v", name, err)
	}
}

func (r *testRepo) headBranch() string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("Head: %v", err)
	}
	return head.Name().Short()
}

// mergeHistory builds root -> main1 -> merge(main1, side1) where side1
// branches off root. It returns the commits newest first.
func mergeHistory(t testing.TB) (*testRepo, []plumbing.Hash) {
	r := newTestRepo(t)

	r.write("a.txt", "a1\n")
	root := r.commit("root")
	base := r.headBranch()

	r.write("a.txt", "a2\n")
	main1 := r.commit("main change")

	r.branchFrom("side", root)
	r.write("b.txt", "side\n")
	side1 := r.commit("side change")

	r.checkout(base)
	r.write("b.txt", "side\n")
	merge := r.commit("Merge branch 'side'", main1, side1)

	return r, []plumbing.Hash{merge, side1, main1, root}
}

func requireGit(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping git executable test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}
