package git

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func walkAll(t *testing.T, repo Repository) []CommitInfo {
	t.Helper()
	var commits []CommitInfo
	if err := repo.Walk(context.Background(), func(c CommitInfo) error {
		commits = append(commits, c)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return commits
}

func TestGoGitRepository_Walk_NewestFirstWithParents(t *testing.T) {
	r, want := mergeHistory(t)

	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}

	commits := walkAll(t, repo)
	if len(commits) != len(want) {
		t.Fatalf("walked %d commits, want %d", len(commits), len(want))
	}
	for i, c := range commits {
		if c.SHA != want[i].String() {
			t.Errorf("commit[%d] = %s, want %s", i, c.SHA, want[i])
		}
	}

	merge := commits[0]
	if !merge.IsMerge() {
		t.Fatalf("expected merge commit, got parents %v", merge.Parents)
	}
	if merge.Parents[0] != want[2].String() || merge.Parents[1] != want[1].String() {
		t.Errorf("merge parents = %v, want [%s %s]", merge.Parents, want[2], want[1])
	}
	if merge.Subject() != "Merge branch 'side'" {
		t.Errorf("Subject = %q", merge.Subject())
	}
	if root := commits[len(commits)-1]; !root.IsRoot() {
		t.Errorf("expected root commit last, got parents %v", root.Parents)
	}
}

func TestGoGitRepository_Walk_Stop(t *testing.T) {
	r, _ := mergeHistory(t)
	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}

	seen := 0
	err = repo.Walk(context.Background(), func(CommitInfo) error {
		seen++
		if seen == 2 {
			return ErrStopWalk
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if seen != 2 {
		t.Errorf("seen = %d, want 2", seen)
	}
}

func TestGoGitRepository_EmptyRepository(t *testing.T) {
	r := newTestRepo(t)
	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}

	err = repo.Walk(context.Background(), func(CommitInfo) error { return nil })
	var re *RepositoryError
	if !errors.As(err, &re) {
		t.Fatalf("expected RepositoryError, got %v", err)
	}
	if !errors.Is(err, ErrNoCommits) {
		t.Errorf("expected ErrNoCommits, got %v", err)
	}
}

func TestOpenGoGit_NotARepository(t *testing.T) {
	_, err := OpenGoGit(t.TempDir(), 1)
	var re *RepositoryError
	if !errors.As(err, &re) {
		t.Fatalf("expected RepositoryError, got %v", err)
	}
}

func TestGoGitRepository_Diff(t *testing.T) {
	r, hashes := mergeHistory(t)
	merge, side1, main1, root := hashes[0], hashes[1], hashes[2], hashes[3]

	repo, err := OpenGoGit(r.dir, 2)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}
	ctx := context.Background()

	t.Run("root against empty tree shows additions only", func(t *testing.T) {
		patch, err := repo.Diff(ctx, root.String(), "", DiffOptions{ContextLines: 3})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		if len(patch.Files) != 1 || patch.Files[0].Kind != ChangeKindAdded || patch.Files[0].Path != "a.txt" {
			t.Fatalf("files = %+v", patch.Files)
		}
		if patch.Files[0].LinesDeleted != 0 || patch.Files[0].LinesAdded != 1 {
			t.Errorf("stats = +%d -%d", patch.Files[0].LinesAdded, patch.Files[0].LinesDeleted)
		}
	})

	t.Run("modification", func(t *testing.T) {
		patch, err := repo.Diff(ctx, main1.String(), root.String(), DiffOptions{ContextLines: 3})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		if !strings.Contains(patch.Text, "-a1\n+a2\n") {
			t.Errorf("unexpected diff text:\n%s", patch.Text)
		}
		if len(patch.Files) != 1 || patch.Files[0].Hunks != 1 {
			t.Errorf("files = %+v", patch.Files)
		}
	})

	t.Run("merge against first parent", func(t *testing.T) {
		patch, err := repo.Diff(ctx, merge.String(), main1.String(), DiffOptions{ContextLines: 3})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		if len(patch.Files) != 1 || patch.Files[0].Path != "b.txt" || patch.Files[0].Kind != ChangeKindAdded {
			t.Errorf("files = %+v", patch.Files)
		}
	})

	t.Run("merge against second parent differs", func(t *testing.T) {
		patch, err := repo.Diff(ctx, merge.String(), side1.String(), DiffOptions{ContextLines: 3})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		if len(patch.Files) != 1 || patch.Files[0].Path != "a.txt" {
			t.Errorf("files = %+v", patch.Files)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := repo.Diff(ctx, merge.String(), root.String(), DiffOptions{ContextLines: 3})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		b, err := repo.Diff(ctx, merge.String(), root.String(), DiffOptions{ContextLines: 3})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		if a.Text != b.Text {
			t.Error("diff text differs between runs")
		}
	})
}

func TestGoGitRepository_Diff_ContextLines(t *testing.T) {
	r := newTestRepo(t)
	r.write("f.txt", "1\n2\n3\n4\n5\n6\n7\n8\n9\n")
	first := r.commit("first")
	r.write("f.txt", "1\n2\n3\n4\nFIVE\n6\n7\n8\n9\n")
	second := r.commit("second")

	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}

	tests := []struct {
		context int
		hunk    string
	}{
		{context: 0, hunk: "@@ -5 +5 @@\n-5\n+FIVE\n"},
		{context: 1, hunk: "@@ -4,3 +4,3 @@\n 4\n-5\n+FIVE\n 6\n"},
		{context: 3, hunk: "@@ -2,7 +2,7 @@\n 2\n 3\n 4\n-5\n+FIVE\n 6\n 7\n 8\n"},
	}

	for _, tt := range tests {
		patch, err := repo.Diff(context.Background(), second.String(), first.String(), DiffOptions{ContextLines: tt.context})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		_, body, ok := strings.Cut(patch.Text, "+++ b/f.txt\n")
		if !ok {
			t.Fatalf("context=%d: no file header in\n%s", tt.context, patch.Text)
		}
		if body != tt.hunk {
			t.Errorf("context=%d: hunk = %q, want %q", tt.context, body, tt.hunk)
		}
		if len(patch.Files) != 1 || patch.Files[0].Hunks != 1 {
			t.Errorf("context=%d: files = %+v", tt.context, patch.Files)
		}
	}
}

func TestGoGitRepository_Diff_ZeroContextHunkStarts(t *testing.T) {
	r := newTestRepo(t)
	r.write("f.txt", "a\nb\nc\nd\ne\nf\ng\nh\n")
	first := r.commit("first")
	// Insert after b, delete e, replace g.
	r.write("f.txt", "a\nb\nnew1\nnew2\nc\nd\nf\nG\nh\n")
	second := r.commit("second")

	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}

	patch, err := repo.Diff(context.Background(), second.String(), first.String(), DiffOptions{ContextLines: 0})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	want := "@@ -2,0 +3,2 @@\n+new1\n+new2\n" +
		"@@ -5 +6,0 @@\n-e\n" +
		"@@ -7 +8 @@\n-g\n+G\n"
	_, body, _ := strings.Cut(patch.Text, "+++ b/f.txt\n")
	if body != want {
		t.Errorf("hunks =\n%s\nwant\n%s", body, want)
	}
}

func TestGoGitRepository_Diff_RenameAndBinary(t *testing.T) {
	r := newTestRepo(t)
	body := strings.Repeat("shared line of content\n", 20)
	r.write("old/name.txt", body)
	r.write("image.bin", "\x00\x01\x02\x03")
	first := r.commit("first")

	r.remove("old/name.txt")
	r.write("new/name.txt", body)
	r.write("image.bin", "\x00\x01\x02\x04")
	second := r.commit("rename and binary change")

	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}

	patch, err := repo.Diff(context.Background(), second.String(), first.String(), DiffOptions{
		ContextLines: 3,
		RenameDetect: RenameDetectSimilarity,
	})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	byPath := make(map[string]FileChange)
	for _, f := range patch.Files {
		byPath[f.Path] = f
	}

	renamed, ok := byPath["new/name.txt"]
	if !ok {
		t.Fatalf("rename missing: %+v", patch.Files)
	}
	if renamed.Kind != ChangeKindRenamed || renamed.OldPath != "old/name.txt" {
		t.Errorf("rename = %+v", renamed)
	}
	if renamed.Hunks != 0 {
		t.Errorf("identical rename should have no hunks, got %d", renamed.Hunks)
	}

	bin, ok := byPath["image.bin"]
	if !ok {
		t.Fatalf("binary file missing: %+v", patch.Files)
	}
	if !bin.Binary || bin.Hunks != 0 || bin.Kind != ChangeKindModified {
		t.Errorf("binary = %+v", bin)
	}

	t.Run("rename detection off", func(t *testing.T) {
		patch, err := repo.Diff(context.Background(), second.String(), first.String(), DiffOptions{
			ContextLines: 3,
			RenameDetect: RenameDetectOff,
		})
		if err != nil {
			t.Fatalf("Diff: %v", err)
		}
		for _, f := range patch.Files {
			if f.Kind == ChangeKindRenamed {
				t.Errorf("unexpected rename with detection off: %+v", f)
			}
		}
	})
}

func TestGoGitRepository_Diff_PathFilters(t *testing.T) {
	r := newTestRepo(t)
	r.write("src/main.go", "package main\n")
	r.write("vendor/lib/lib.go", "package lib\n")
	root := r.commit("root")

	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}

	patch, err := repo.Diff(context.Background(), root.String(), "", DiffOptions{Exclude: []string{"vendor/**"}})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(patch.Files) != 1 || patch.Files[0].Path != "src/main.go" {
		t.Errorf("files = %+v", patch.Files)
	}
	if strings.Contains(patch.Text, "vendor/") {
		t.Errorf("excluded path leaked into diff:\n%s", patch.Text)
	}

	if _, err := repo.Diff(context.Background(), root.String(), "", DiffOptions{Include: []string{"["}}); err == nil {
		t.Error("expected error for invalid include glob")
	}
}

func TestGoGitRepository_Diff_UnknownCommit(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "a\n")
	root := r.commit("root")

	repo, err := OpenGoGit(r.dir, 1)
	if err != nil {
		t.Fatalf("OpenGoGit: %v", err)
	}
	_, err = repo.Diff(context.Background(), root.String(), strings.Repeat("f", 40), DiffOptions{})
	if err == nil {
		t.Fatal("expected error diffing against a missing commit")
	}
}
