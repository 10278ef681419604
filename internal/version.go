package internal

import "fmt"

// Set with -ldflags "-X github.com/zhengshuai-xiao/chunkshare/internal.revision=..."
var (
	version      = "0.3.0"
	revision     = "$Format:%h$"
	revisionDate = "$Format:%as$"
)

// Version returns the release string shown by --version.
func Version() string {
	return fmt.Sprintf("%s+%s.%s", version, revisionDate, revision)
}
