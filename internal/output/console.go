package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/masmgr/commitpage/internal/document"
)

// WriteSummary prints a short report of the assembled document: totals and a
// table of every commit whose diff was truncated or could not be computed.
func WriteSummary(out io.Writer, doc *document.Document) error {
	var truncated, binary, insertions, deletions, size int
	for i := range doc.Entries {
		d := &doc.Entries[i].Diff
		if d.Truncated {
			truncated++
		}
		if d.Binary {
			binary++
		}
		insertions += d.Insertions
		deletions += d.Deletions
		size += d.Size
	}

	fmt.Fprintf(out, "%s %d commits, %s, %s, %s of diff\n",
		color.GreenString("Summary:"),
		len(doc.Entries),
		color.GreenString("+%s", humanize.Comma(int64(insertions))),
		color.RedString("-%s", humanize.Comma(int64(deletions))),
		humanize.IBytes(uint64(size)))

	failures := doc.Failures()
	if truncated == 0 && failures == 0 && binary == 0 {
		return nil
	}
	fmt.Fprintf(out, "%d truncated, %d with binary files, %d failed\n", truncated, binary, failures)
	if truncated == 0 && failures == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSHA\tStatus\tSize\tSubject")
	for i := range doc.Entries {
		e := &doc.Entries[i]
		var status string
		switch {
		case e.Diff.Failed:
			status = color.RedString("failed")
		case e.Diff.Truncated:
			status = color.YellowString("truncated")
		default:
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			e.Commit.ShortSHA(),
			status,
			humanize.IBytes(uint64(e.Diff.Size)),
			truncateMessage(e.Subject(), 60),
		)
	}
	return tw.Flush()
}

func truncateMessage(msg string, maxLen int) string {
	r := []rune(msg)
	if len(r) <= maxLen {
		return msg
	}
	return string(r[:maxLen-3]) + "..."
}
