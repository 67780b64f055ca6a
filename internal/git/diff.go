package git

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

const diffHeaderPrefix = "diff --git "

// ParseUnifiedDiff extracts per-file statistics from git-style unified diff
// text. Stats are taken from the text itself so both backends report the same
// numbers for the same output.
func ParseUnifiedDiff(text string) ([]FileChange, error) {
	if text == "" {
		return nil, nil
	}
	parsed, _, err := gitdiff.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	files := make([]FileChange, 0, len(parsed))
	for _, f := range parsed {
		files = append(files, fileChangeOf(f))
	}
	return files, nil
}

func fileChangeOf(f *gitdiff.File) FileChange {
	fc := FileChange{
		Path:    f.NewName,
		Kind:    ChangeKindModified,
		Binary:  f.IsBinary,
		Hunks:   len(f.TextFragments),
		OldMode: fileModeOf(f.OldMode),
		Mode:    fileModeOf(f.NewMode),
	}

	switch {
	case f.IsNew:
		fc.Kind = ChangeKindAdded
	case f.IsDelete:
		fc.Kind = ChangeKindDeleted
		fc.Path = f.OldName
	case f.IsCopy:
		fc.Kind = ChangeKindCopied
		fc.OldPath = f.OldName
		fc.Similarity = f.Score
	case f.IsRename:
		fc.Kind = ChangeKindRenamed
		fc.OldPath = f.OldName
		fc.Similarity = f.Score
	}
	if fc.Path == "" {
		fc.Path = f.OldName
	}

	for _, frag := range f.TextFragments {
		fc.LinesAdded += int(frag.LinesAdded)
		fc.LinesDeleted += int(frag.LinesDeleted)
	}
	return fc
}

// SplitFileSections splits diff text into per-file sections, each starting
// with a "diff --git" line. Text before the first header is returned as its
// own leading section. Concatenating the sections yields the input.
func SplitFileSections(text string) []string {
	var sections []string
	start, pos := 0, 0
	for pos < len(text) {
		lineEnd := len(text)
		if idx := strings.IndexByte(text[pos:], '\n'); idx != -1 {
			lineEnd = pos + idx + 1
		}
		if pos > start && strings.HasPrefix(text[pos:], diffHeaderPrefix) {
			sections = append(sections, text[start:pos])
			start = pos
		}
		pos = lineEnd
	}
	if start < len(text) {
		sections = append(sections, text[start:])
	}
	return sections
}

// FilterSections drops file sections whose paths do not pass the filter.
func FilterSections(text string, filter *PathFilter) (string, error) {
	if filter == nil || text == "" {
		return text, nil
	}
	var b strings.Builder
	for _, section := range SplitFileSections(text) {
		if !strings.HasPrefix(section, diffHeaderPrefix) {
			b.WriteString(section)
			continue
		}
		files, err := ParseUnifiedDiff(section)
		if err != nil {
			return "", err
		}
		if len(files) == 0 || filter.MatchChange(files[0].Path, files[0].OldPath) {
			b.WriteString(section)
		}
	}
	return b.String(), nil
}
