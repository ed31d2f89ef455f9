// Package model defines the domain types for the portreclaim CLI.
//
// Every entity in this package is transient: a ScanRequest is built from
// the command line, each probe or reclaim produces a result value, and
// nothing survives the process. There is no state file on disk.
package model
