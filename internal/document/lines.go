package document

import (
	"strings"

	"github.com/masmgr/commitpage/internal/diffbound"
	"github.com/masmgr/commitpage/internal/pipeline"
)

// LineKind classifies a line of diff text.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
	LineHunk
	LineFileHeader
	LineMeta
	LineNotice // truncation marker or placeholder
)

// Class returns the CSS class used for the kind.
func (k LineKind) Class() string {
	switch k {
	case LineAdded:
		return "add"
	case LineRemoved:
		return "del"
	case LineHunk:
		return "hunk"
	case LineFileHeader:
		return "file"
	case LineMeta:
		return "meta"
	case LineNotice:
		return "notice"
	default:
		return "ctx"
	}
}

// Line is one classified line of diff text, without its line break.
type Line struct {
	Kind LineKind
	Text string
}

// Class returns the CSS class of the line.
func (l Line) Class() string {
	return l.Kind.Class()
}

// ClassifyLines splits diff text into lines and classifies each one. Lines
// starting with "+++ " or "--- " are file headers only outside hunks.
func ClassifyLines(text string) []Line {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	raw := strings.Split(text, "\n")
	lines := make([]Line, len(raw))
	inHunk := false
	for i, s := range raw {
		kind := LineContext
		switch {
		case strings.HasPrefix(s, diffbound.MarkerPrefix), strings.HasPrefix(s, pipeline.PlaceholderPrefix):
			kind = LineNotice
		case strings.HasPrefix(s, "diff --git "):
			kind = LineFileHeader
			inHunk = false
		case strings.HasPrefix(s, "@@"):
			kind = LineHunk
			inHunk = true
		case !inHunk && (strings.HasPrefix(s, "--- ") || strings.HasPrefix(s, "+++ ")):
			kind = LineFileHeader
		case !inHunk:
			kind = LineMeta
		case strings.HasPrefix(s, "+"):
			kind = LineAdded
		case strings.HasPrefix(s, "-"):
			kind = LineRemoved
		case strings.HasPrefix(s, `\`):
			kind = LineMeta
		}
		lines[i] = Line{Kind: kind, Text: s}
	}
	return lines
}
