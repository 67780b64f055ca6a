package output

import (
	"testing"
	"time"

	"github.com/masmgr/commitpage/internal/document"
	"github.com/masmgr/commitpage/internal/git"
	"github.com/masmgr/commitpage/internal/history"
	"github.com/masmgr/commitpage/internal/pipeline"
)

const hostileText = `</script><script>alert("x")</script> & <b>"quoted"</b> '--> ]]> {{.Title}}`

func testDocument(t *testing.T, message, diffText string) *document.Document {
	t.Helper()
	when := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	files, err := git.ParseUnifiedDiff(diffText)
	if err != nil {
		t.Fatalf("ParseUnifiedDiff: %v", err)
	}
	window := history.Window{
		{CommitInfo: git.CommitInfo{
			SHA:     "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			Parents: []string{"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "cccccccccccccccccccccccccccccccccccccccc"},
			Author:  git.AuthorInfo{Name: "Eve <eve@evil>", Email: "eve@example.com"},
			When:    when.Add(time.Hour),
			Message: message,
		}, Position: 0},
		{CommitInfo: git.CommitInfo{
			SHA:     "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			Author:  git.AuthorInfo{Name: "Ada", Email: "ada@example.com"},
			When:    when,
			Message: "Initial commit",
		}, Position: 1},
	}
	diffs := []pipeline.DiffResult{
		{
			Reference:  "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			Text:       diffText,
			Files:      files,
			Size:       len(diffText),
			Insertions: 1,
			Deletions:  1,
		},
		{
			Text:      "diff --git a/a.txt b/a.txt\nnew file mode 100644\n--- /dev/null\n+++ b/a.txt\n@@ -0,0 +1 @@\n+a\n... [diff truncated: showing 10 B of 20 B (20 bytes)]\n",
			Files:     []git.FileChange{{Path: "a.txt", Kind: git.ChangeKindAdded, Hunks: 1, LinesAdded: 1}},
			Size:      20,
			Truncated: true,
		},
	}

	doc, err := document.Assemble(window, diffs, document.Meta{
		Source: "https://example.com/<repo>.git",
		Head:   window[0].SHA,
		Options: document.Summary{
			MaxCommits:   200,
			ContextLines: 3,
			MaxDiffBytes: 512 * 1024,
			RenameDetect: "similarity",
		},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return doc
}

func hostileDiff() string {
	return "diff --git a/x.html b/x.html\n--- a/x.html\n+++ b/x.html\n@@ -1 +1 @@\n-" + hostileText + "\n+<textarea></textarea></pre>\n"
}
