package git

import (
	"strings"
	"time"
)

// EmptyTreeSHA is the hash of the empty tree. Root commits are diffed against it.
const EmptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// CommitInfo represents a commit as read from history.
type CommitInfo struct {
	SHA     string
	Parents []string
	Author  AuthorInfo
	When    time.Time
	Message string
	// Grafted is set for shallow-boundary commits whose parents are not
	// available locally. Their Parents list is empty.
	Grafted bool
}

// IsMerge reports whether the commit has more than one parent.
func (c CommitInfo) IsMerge() bool {
	return len(c.Parents) > 1
}

// IsRoot reports whether the commit has no parents.
func (c CommitInfo) IsRoot() bool {
	return len(c.Parents) == 0
}

// Subject returns the first line of the commit message.
func (c CommitInfo) Subject() string {
	message := strings.TrimLeft(c.Message, "\n")
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		message = message[:idx]
	}
	return strings.TrimSpace(message)
}

// ShortSHA returns the abbreviated hash used in the index.
func (c CommitInfo) ShortSHA() string {
	return ShortHash(c.SHA)
}

// ShortHash abbreviates a hash to 8 characters.
func ShortHash(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// FileChange represents a file change within a commit diff.
type FileChange struct {
	Path         string
	OldPath      string // For renames and copies
	Kind         ChangeKind
	Binary       bool
	Hunks        int
	LinesAdded   int
	LinesDeleted int
	Similarity   int // Rename/copy similarity percentage, 0 when not reported
	OldMode      FileMode
	Mode         FileMode
}

// ModeChanged reports whether a file present on both sides changed mode,
// e.g. gained the executable bit.
func (f FileChange) ModeChanged() bool {
	return f.OldMode != FileModeEmpty && f.Mode != FileModeEmpty && f.OldMode != f.Mode
}

// Churn returns total lines changed (added + deleted).
func (f FileChange) Churn() int {
	return f.LinesAdded + f.LinesDeleted
}

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
	ChangeKindCopied
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	case ChangeKindCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// Letter returns the single-letter status git uses for the change kind.
func (k ChangeKind) Letter() string {
	switch k {
	case ChangeKindAdded:
		return "A"
	case ChangeKindModified:
		return "M"
	case ChangeKindDeleted:
		return "D"
	case ChangeKindRenamed:
		return "R"
	case ChangeKindCopied:
		return "C"
	default:
		return "X"
	}
}

// Patch is the unified diff of one commit against its reference.
type Patch struct {
	Text  string
	Files []FileChange
}

// RenameDetectMode controls how file renames are detected.
type RenameDetectMode int

const (
	RenameDetectOff RenameDetectMode = iota
	RenameDetectExact
	RenameDetectSimilarity
)

// String returns the flag spelling of the mode.
func (m RenameDetectMode) String() string {
	switch m {
	case RenameDetectOff:
		return "off"
	case RenameDetectExact:
		return "exact"
	default:
		return "similarity"
	}
}

// DefaultContextLines is the number of unchanged lines shown around a change.
const DefaultContextLines = 3

// DiffOptions configures diff computation.
type DiffOptions struct {
	ContextLines int
	RenameDetect RenameDetectMode
	Include      []string // Glob patterns to include
	Exclude      []string // Glob patterns to exclude
}

func (o DiffOptions) contextLines() int {
	if o.ContextLines < 0 {
		return DefaultContextLines
	}
	return o.ContextLines
}
