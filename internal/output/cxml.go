package output

import (
	"io"

	"github.com/masmgr/commitpage/internal/document"
)

// CXMLWriter writes only the plain-text CXML view of the document, ready to
// paste into an LLM prompt.
type CXMLWriter struct{}

// Write outputs the CXML text block.
func (w *CXMLWriter) Write(out io.Writer, doc *document.Document) error {
	_, err := io.WriteString(out, doc.CXML)
	return err
}
