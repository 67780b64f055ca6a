// Package diffbound caps the size of a single commit's diff text.
package diffbound

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MarkerPrefix starts the line appended to a truncated diff.
const MarkerPrefix = "... [diff truncated: "

// Result is a bounded diff.
type Result struct {
	Text         string
	Truncated    bool
	OriginalSize int
	KeptSize     int // bytes of the original kept before the marker
}

// Bound returns text unchanged when it fits in maxBytes. Otherwise it keeps
// the longest prefix that ends at a line break and fits in maxBytes, then
// appends a marker line stating the original size. A non-positive maxBytes
// disables the cap.
func Bound(text string, maxBytes int) Result {
	size := len(text)
	if maxBytes <= 0 || size <= maxBytes {
		return Result{Text: text, OriginalSize: size, KeptSize: size}
	}

	kept := strings.LastIndexByte(text[:maxBytes], '\n') + 1

	var b strings.Builder
	b.Grow(kept + 96)
	b.WriteString(text[:kept])
	b.WriteString(Marker(kept, size))
	return Result{
		Text:         b.String(),
		Truncated:    true,
		OriginalSize: size,
		KeptSize:     kept,
	}
}

// Marker renders the truncation line for a diff of original bytes cut to kept.
func Marker(kept, original int) string {
	return fmt.Sprintf("%sshowing %s of %s (%d bytes)]\n",
		MarkerPrefix,
		humanize.IBytes(uint64(kept)),
		humanize.IBytes(uint64(original)),
		original)
}
