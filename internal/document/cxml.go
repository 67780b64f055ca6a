package document

import (
	"fmt"
	"strings"

	"github.com/masmgr/commitpage/internal/git"
)

// commitCXML renders entries as a CXML text block: one <document> per
// commit with its metadata and raw patch. Entries are numbered from 1.
func commitCXML(source string, entries []Entry) string {
	var b strings.Builder
	b.WriteString("<documents>\n")
	for i := range entries {
		e := &entries[i]
		c := e.Commit
		ref := e.Diff.Reference
		if ref == "" {
			ref = git.EmptyTreeSHA
		}

		fmt.Fprintf(&b, "<document index=\"%d\">\n", i+1)
		fmt.Fprintf(&b, "<source>%s — %s</source>\n", c.SHA, e.Subject())
		b.WriteString("<document_content>\n")
		fmt.Fprintf(&b, "Repository: %s\n", source)
		fmt.Fprintf(&b, "Commit: %s\n", c.SHA)
		fmt.Fprintf(&b, "Parent: %s\n", ref)
		fmt.Fprintf(&b, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
		fmt.Fprintf(&b, "Date: %s\n", e.Date())
		fmt.Fprintf(&b, "Stats: files=%d insertions=+%d deletions=-%d\n",
			len(e.Diff.Files), e.Diff.Insertions, e.Diff.Deletions)
		b.WriteString("\n--- PATCH START ---\n")
		if patch := strings.TrimRight(e.Diff.Text, "\n"); patch != "" {
			b.WriteString(patch)
			b.WriteByte('\n')
		}
		b.WriteString("--- PATCH END ---\n")
		b.WriteString("</document_content>\n")
		b.WriteString("</document>\n")
	}
	b.WriteString("</documents>\n")
	return b.String()
}
