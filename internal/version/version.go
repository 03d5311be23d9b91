// Package version provides build information for the gochip8 emulator.
package version

import (
	"fmt"
	"runtime"

	"github.com/retroenv/retrogolib/buildinfo"
)

// These are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Get returns the version string, filled in from the module build info
// when no ldflags were set.
func Get() string {
	return buildinfo.Version(Version, Commit, Date)
}

// Detailed returns the version string including the Go toolchain and
// target platform.
func Detailed() string {
	return fmt.Sprintf("gochip8 %s (%s %s/%s)",
		Get(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
