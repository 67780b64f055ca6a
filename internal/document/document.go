// Package document assembles commits and their diffs into a single
// navigable document.
package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/commitpage/internal/git"
	"github.com/masmgr/commitpage/internal/history"
	"github.com/masmgr/commitpage/internal/pipeline"
)

// Summary records the options a document was generated with.
type Summary struct {
	MaxCommits    int    `json:"maxCommits"`
	IncludeMerges bool   `json:"includeMerges"`
	ContextLines  int    `json:"contextLines"`
	MaxDiffBytes  int    `json:"maxDiffBytes"`
	RenameDetect  string `json:"renameDetect"`
}

// Meta carries document-level information not derived from the commits.
type Meta struct {
	Source  string // repository URL or path as given by the user
	Head    string
	Options Summary
}

// Entry pairs one commit with its diff.
type Entry struct {
	Commit history.CommitRecord
	Diff   pipeline.DiffResult
	CXML   string
}

// Anchor is the element id of the entry's content section.
func (e Entry) Anchor() string {
	return "commit-" + e.Commit.SHA
}

// Subject returns the first message line, or a placeholder when it is empty.
func (e Entry) Subject() string {
	if s := e.Commit.Subject(); s != "" {
		return s
	}
	return "(no subject)"
}

// Date formats the author date.
func (e Entry) Date() string {
	return e.Commit.When.Format(time.RFC3339)
}

// Body returns the commit message without its subject line.
func (e Entry) Body() string {
	msg := strings.TrimLeft(e.Commit.Message, "\n")
	_, body, _ := strings.Cut(msg, "\n")
	return strings.Trim(body, "\n")
}

// SearchText is the lower-cased text the index filter matches against.
func (e Entry) SearchText() string {
	return strings.ToLower(e.Commit.Subject() + " " + e.Commit.Author.Name + " " + e.Commit.Author.Email + " " + e.Commit.SHA)
}

// Parent labels the reference the diff was taken against.
func (e Entry) Parent() string {
	if e.Diff.Reference == "" {
		if e.Commit.Grafted {
			return "∅ (shallow boundary)"
		}
		return "∅ (root)"
	}
	return git.ShortHash(e.Diff.Reference)
}

// Lines classifies the diff text for display.
func (e Entry) Lines() []Line {
	return ClassifyLines(e.Diff.Text)
}

// Nav is the data a viewer uses to go from a selected index entry to its
// content without recomputation.
type Nav struct {
	// Order lists commit hashes in window order.
	Order []string `json:"order"`
	// Default is the commit selected on load.
	Default string `json:"default"`
	// Anchors maps a commit hash to its content section id.
	Anchors map[string]string `json:"anchors"`
	// CXML holds the base64 encoded text view of each commit, and of the
	// whole window under the empty key.
	CXML map[string]string `json:"cxml"`
}

// Encode returns the navigation payload as base64 encoded JSON. The encoding
// only uses characters that are inert in HTML text and attribute values.
func (n Nav) Encode() (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("encode navigation data: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeNav reverses Nav.Encode.
func DecodeNav(s string) (Nav, error) {
	var n Nav
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return n, fmt.Errorf("decode navigation data: %w", err)
	}
	if err := json.Unmarshal(data, &n); err != nil {
		return n, fmt.Errorf("decode navigation data: %w", err)
	}
	return n, nil
}

// Document is the assembled artifact. It is not modified after Assemble.
type Document struct {
	Title   string
	Source  string
	Head    string
	Options Summary
	Entries []Entry
	CXML    string // text view of the whole window
	Nav     Nav
}

// Failures counts entries whose diff could not be computed.
func (d *Document) Failures() int {
	n := 0
	for i := range d.Entries {
		if d.Entries[i].Diff.Failed {
			n++
		}
	}
	return n
}

// Assemble pairs each commit in the window with its diff. diffs must be in
// window order. Text fields are made valid UTF-8; markup escaping is left to
// the writer for the output format.
func Assemble(window history.Window, diffs []pipeline.DiffResult, meta Meta) (*Document, error) {
	if len(window) != len(diffs) {
		return nil, fmt.Errorf("assemble: %d commits but %d diffs", len(window), len(diffs))
	}

	doc := &Document{
		Title:   "Commit history – " + clean(meta.Source),
		Source:  clean(meta.Source),
		Head:    meta.Head,
		Options: meta.Options,
		Entries: make([]Entry, len(window)),
		Nav: Nav{
			Order:   make([]string, len(window)),
			Anchors: make(map[string]string, len(window)),
			CXML:    make(map[string]string, len(window)+1),
		},
	}

	for i, rec := range window {
		if rec.Position != i {
			return nil, fmt.Errorf("assemble: commit %s at position %d, want %d", rec.ShortSHA(), rec.Position, i)
		}
		if _, dup := doc.Nav.Anchors[rec.SHA]; dup {
			return nil, fmt.Errorf("assemble: duplicate commit %s", rec.ShortSHA())
		}

		e := Entry{Commit: cleanRecord(rec), Diff: cleanDiff(diffs[i])}
		e.CXML = commitCXML(doc.Source, []Entry{e})
		doc.Entries[i] = e

		doc.Nav.Order[i] = rec.SHA
		doc.Nav.Anchors[rec.SHA] = e.Anchor()
		doc.Nav.CXML[rec.SHA] = base64.StdEncoding.EncodeToString([]byte(e.CXML))
	}

	doc.CXML = commitCXML(doc.Source, doc.Entries)
	doc.Nav.CXML[""] = base64.StdEncoding.EncodeToString([]byte(doc.CXML))
	if len(doc.Nav.Order) > 0 {
		doc.Nav.Default = doc.Nav.Order[0]
	}
	return doc, nil
}

func clean(s string) string {
	return strings.ToValidUTF8(s, "�")
}

func cleanRecord(rec history.CommitRecord) history.CommitRecord {
	rec.Message = clean(rec.Message)
	rec.Author.Name = clean(rec.Author.Name)
	rec.Author.Email = clean(rec.Author.Email)
	rec.Parents = append([]string(nil), rec.Parents...)
	return rec
}

func cleanDiff(d pipeline.DiffResult) pipeline.DiffResult {
	d.Text = clean(d.Text)
	if d.Files != nil {
		files := make([]git.FileChange, len(d.Files))
		for i, f := range d.Files {
			f.Path = clean(f.Path)
			f.OldPath = clean(f.OldPath)
			files[i] = f
		}
		d.Files = files
	}
	return d
}
