// Package meta carries build identification. The variables are meant to be
// stamped at link time:
//
//	go build -ldflags "-X jsmon/internal/meta.Version=v1.2.0 -X jsmon/internal/meta.Commit=abc1234"
package meta

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
)

// String formats the build identity for -version output and startup logs.
func String() string {
	return fmt.Sprintf("jsmon %s (commit %s)", Version, Commit)
}
