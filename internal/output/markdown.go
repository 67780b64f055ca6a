package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/masmgr/commitpage/internal/document"
	"github.com/masmgr/commitpage/internal/git"
)

// MarkdownWriter writes the document as Markdown: an index table followed by
// one section per commit with its diff in a fenced block.
type MarkdownWriter struct{}

// Write outputs the document as Markdown.
func (w *MarkdownWriter) Write(out io.Writer, doc *document.Document) error {
	ew := &errWriter{w: out}

	ew.printf("# %s\n\n", escapeMarkdown(doc.Title))
	ew.printf("**Repository:** %s\n\n", escapeMarkdown(doc.Source))
	ew.printf("**HEAD:** `%s`\n\n", doc.Head)
	ew.printf("**Commits:** %d\n\n", len(doc.Entries))

	// Index
	ew.printf("| # | SHA | Date | Author | +/- | Subject |\n")
	ew.printf("|---|-----|------|--------|-----|---------|\n")
	for i := range doc.Entries {
		e := &doc.Entries[i]
		ew.printf("| %d | [`%s`](#%s) | %s | %s | +%d/-%d | %s |\n",
			i+1, e.Commit.ShortSHA(), e.Anchor(), e.Date(),
			escapeMarkdown(e.Commit.Author.Name), e.Diff.Insertions, e.Diff.Deletions,
			escapeMarkdown(e.Subject()))
	}

	// Content
	for i := range doc.Entries {
		e := &doc.Entries[i]
		ew.printf("\n<a id=\"%s\"></a>\n\n", e.Anchor())
		ew.printf("## `%s` %s\n\n", e.Commit.ShortSHA(), escapeMarkdown(e.Subject()))
		ew.printf("**Author:** %s · **Date:** %s · **Parent:** %s\n\n",
			escapeMarkdown(e.Commit.Author.Name), e.Date(), e.Parent())
		for _, f := range e.Diff.Files {
			ew.printf("- %s\n", markdownFileLine(f))
		}
		if len(e.Diff.Files) > 0 {
			ew.printf("\n")
		}

		fence := codeFence(e.Diff.Text)
		ew.printf("%sdiff\n%s", fence, e.Diff.Text)
		if !strings.HasSuffix(e.Diff.Text, "\n") {
			ew.printf("\n")
		}
		ew.printf("%s\n", fence)
	}

	return ew.err
}

// markdownFileLine renders one entry of a commit's file list.
func markdownFileLine(f git.FileChange) string {
	line := f.Kind.Letter() + " "
	if f.OldPath != "" {
		line += codeSpan(f.OldPath) + " → "
	}
	line += codeSpan(f.Path)
	if f.ModeChanged() {
		line += fmt.Sprintf(" (mode %s → %s)", f.OldMode, f.Mode)
	}
	if f.Binary {
		line += " *binary*"
	}
	return line
}

// codeFence returns a backtick fence longer than any backtick run in text.
func codeFence(text string) string {
	return strings.Repeat("`", max(3, longestBacktickRun(text)+1))
}

// codeSpan renders s as inline code whose content is exactly s.
func codeSpan(s string) string {
	fence := strings.Repeat("`", longestBacktickRun(s)+1)
	if strings.Trim(s, " ") != "" &&
		(strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") || (strings.HasPrefix(s, " ") && strings.HasSuffix(s, " "))) {
		// One space on each side is stripped by Markdown renderers.
		s = " " + s + " "
	}
	return fence + s + fence
}

func longestBacktickRun(text string) int {
	longest, run := 0, 0
	for i := 0; i < len(text); i++ {
		if text[i] == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

// markdownPunct are the characters that can start or end inline markup,
// links, raw HTML, entities or table cells.
const markdownPunct = "\\`*_[]()<>#!|~&"

// escapeMarkdown backslash-escapes text for use inside a table cell or
// heading. Line breaks become spaces.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case strings.ContainsRune(markdownPunct, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
