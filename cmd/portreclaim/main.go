// Package main is the entry point for the portreclaim CLI.
//
// The binary checks whether TCP ports are available locally, on a given
// address, or across a CIDR block, and can free a busy local port by
// terminating its holder. All functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags
// by GoReleaser during the release process.
package main

import (
	"github.com/shinji-kodama/portreclaim/internal/cli"
)

// version, commit, and date are set by GoReleaser at build time
// via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Execute handles error formatting and exit codes.
	cli.Execute(cli.NewRootCommand())
}
