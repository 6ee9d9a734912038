// Package cmd holds build metadata for the snapback binary, injected with
// -ldflags "-X github.com/thoreinstein/snapback/cmd.Version=...".
package cmd

var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
