// Package version exposes build metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/streamkit/streamkit/version.Version=1.2.0"
//
// Unstamped builds fall back to module build info where available.
package version
