package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/masmgr/commitpage/internal/document"
)

// JSONWriter writes the document as JSON.
type JSONWriter struct{}

// JSONDocument is the JSON output structure for a document.
type JSONDocument struct {
	Source       string           `json:"source"`
	Head         string           `json:"head"`
	Options      document.Summary `json:"options"`
	TotalCommits int              `json:"totalCommits"`
	Failures     int              `json:"failures"`
	Default      string           `json:"default"`
	Commits      []JSONCommit     `json:"commits"`
}

// JSONCommit is the JSON output structure for a single commit.
type JSONCommit struct {
	Position int        `json:"position"`
	SHA      string     `json:"sha"`
	Parents  []string   `json:"parents"`
	Author   JSONAuthor `json:"author"`
	When     string     `json:"when"`
	Subject  string     `json:"subject"`
	Message  string     `json:"message"`
	Merge    bool       `json:"merge,omitempty"`
	Grafted  bool       `json:"grafted,omitempty"`
	Diff     JSONDiff   `json:"diff"`
	Files    []JSONFile `json:"files"`
}

// JSONAuthor holds commit author information in JSON format.
type JSONAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// JSONDiff holds a commit's bounded diff in JSON format.
type JSONDiff struct {
	Reference  string `json:"reference,omitempty"`
	Text       string `json:"text"`
	Size       int    `json:"size"`
	Truncated  bool   `json:"truncated"`
	Binary     bool   `json:"binary"`
	Hunks      int    `json:"hunks"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
	Error      string `json:"error,omitempty"`
}

// JSONFile holds a changed file in JSON format.
type JSONFile struct {
	Path       string `json:"path"`
	OldPath    string `json:"oldPath,omitempty"`
	Status     string `json:"status"`
	Binary     bool   `json:"binary,omitempty"`
	Hunks      int    `json:"hunks"`
	Added      int    `json:"added"`
	Deleted    int    `json:"deleted"`
	Similarity int    `json:"similarity,omitempty"`
	OldMode    string `json:"oldMode,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// Write outputs the document as indented JSON.
func (w *JSONWriter) Write(out io.Writer, doc *document.Document) error {
	commits := make([]JSONCommit, len(doc.Entries))
	for i := range doc.Entries {
		e := &doc.Entries[i]
		c := e.Commit

		files := make([]JSONFile, len(e.Diff.Files))
		for j, f := range e.Diff.Files {
			files[j] = JSONFile{
				Path:       f.Path,
				OldPath:    f.OldPath,
				Status:     f.Kind.String(),
				Binary:     f.Binary,
				Hunks:      f.Hunks,
				Added:      f.LinesAdded,
				Deleted:    f.LinesDeleted,
				Similarity: f.Similarity,
			}
			if f.ModeChanged() {
				files[j].OldMode = f.OldMode.String()
				files[j].Mode = f.Mode.String()
			}
		}

		diff := JSONDiff{
			Reference:  e.Diff.Reference,
			Text:       e.Diff.Text,
			Size:       e.Diff.Size,
			Truncated:  e.Diff.Truncated,
			Binary:     e.Diff.Binary,
			Hunks:      e.Diff.Hunks,
			Insertions: e.Diff.Insertions,
			Deletions:  e.Diff.Deletions,
		}
		if e.Diff.Error != nil {
			diff.Error = e.Diff.Error.Error()
		}

		parents := c.Parents
		if parents == nil {
			parents = []string{}
		}
		commits[i] = JSONCommit{
			Position: c.Position,
			SHA:      c.SHA,
			Parents:  parents,
			Author:   JSONAuthor{Name: c.Author.Name, Email: c.Author.Email},
			When:     e.Date(),
			Subject:  c.Subject(),
			Message:  c.Message,
			Merge:    c.IsMerge(),
			Grafted:  c.Grafted,
			Diff:     diff,
			Files:    files,
		}
	}

	return writeJSON(out, JSONDocument{
		Source:       doc.Source,
		Head:         doc.Head,
		Options:      doc.Options,
		TotalCommits: len(doc.Entries),
		Failures:     doc.Failures(),
		Default:      doc.Nav.Default,
		Commits:      commits,
	})
}

func writeJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
