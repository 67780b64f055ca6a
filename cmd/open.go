package cmd

import (
	"io"

	"github.com/pkg/browser"
)

// openViewer opens a local file in the platform's default viewer.
var openViewer = browser.OpenFile

// openDocument shows path in the default viewer. Anything the opener prints
// goes to w so it cannot mix with a document written to stdout.
func openDocument(w io.Writer, path string) error {
	browser.Stdout = w
	browser.Stderr = w
	return openViewer(path)
}
