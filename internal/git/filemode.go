package git

import (
	"fmt"
	"os"
)

// FileMode is a git tree entry mode as printed in diff headers.
type FileMode uint32

const (
	FileModeEmpty     FileMode = 0
	FileModeRegular   FileMode = 0100644
	FileModeExec      FileMode = 0100755
	FileModeSymlink   FileMode = 0120000
	FileModeSubmodule FileMode = 0160000
)

// String returns the octal spelling git uses, e.g. "100755".
func (m FileMode) String() string {
	return fmt.Sprintf("%06o", uint32(m))
}

// fileModeOf converts a mode parsed from a diff header. Diff headers carry
// the raw octal tree mode, so the bits map across unchanged.
func fileModeOf(m os.FileMode) FileMode {
	return FileMode(uint32(m))
}
