package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/masmgr/commitpage/internal/document"
)

// Compile-time interface conformance checks.
var (
	_ DocumentWriter = (*HTMLWriter)(nil)
	_ DocumentWriter = (*JSONWriter)(nil)
	_ DocumentWriter = (*CXMLWriter)(nil)
	_ DocumentWriter = (*MarkdownWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatHTML     OutputFormat = "html"
	FormatJSON     OutputFormat = "json"
	FormatCXML     OutputFormat = "cxml"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseFormat parses a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "cxml", "llm", "txt":
		return FormatCXML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected html, json, cxml, markdown)", s)
	}
}

// Extension returns the file extension used for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatCXML:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	default:
		return ".html"
	}
}

// DocumentWriter serializes an assembled document.
type DocumentWriter interface {
	Write(w io.Writer, doc *document.Document) error
}

// NewDocumentWriter creates a document writer for the specified format.
func NewDocumentWriter(format OutputFormat) DocumentWriter {
	switch format {
	case FormatJSON:
		return &JSONWriter{}
	case FormatCXML:
		return &CXMLWriter{}
	case FormatMarkdown:
		return &MarkdownWriter{}
	default:
		return &HTMLWriter{}
	}
}

// StdoutPath selects standard output instead of a file.
const StdoutPath = "-"

// WriteDocument writes doc in the given format to outputPath, replacing any
// existing file atomically.
func WriteDocument(doc *document.Document, format OutputFormat, outputPath string) error {
	writer := NewDocumentWriter(format)
	if outputPath == StdoutPath {
		if err := writer.Write(os.Stdout, doc); err != nil {
			return &IOError{Op: "write", Path: "stdout", Err: err}
		}
		return nil
	}
	return WriteFileAtomic(outputPath, func(w io.Writer) error {
		return writer.Write(w, doc)
	})
}
