package output

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/masmgr/commitpage/internal/document"
)

//go:embed templates/document.html.tmpl
var documentTemplate string

var htmlTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"ibytes": func(n int) string { return humanize.IBytes(uint64(n)) },
}).Parse(documentTemplate))

// HTMLWriter writes the document as a single self-contained HTML page. All
// commit content passes through contextual escaping; the navigation data is
// embedded as base64 encoded JSON in an attribute.
type HTMLWriter struct{}

type htmlPage struct {
	*document.Document
	NavData string
}

// Write outputs the document as HTML.
func (w *HTMLWriter) Write(out io.Writer, doc *document.Document) error {
	nav, err := doc.Nav.Encode()
	if err != nil {
		return err
	}
	if err := htmlTemplate.Execute(out, htmlPage{Document: doc, NavData: nav}); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}
