// Package version provides version information for the binary.
package version

import (
	"fmt"
	"runtime"
)

// Version, Commit and BuildTime are set at build time with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Info is the machine-readable build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildTime: BuildTime, GoVersion: runtime.Version()}
}

// String returns the formatted version information.
func String() string {
	return fmt.Sprintf("prdgen version %s (commit %s, built %s)", Version, Commit, BuildTime)
}
