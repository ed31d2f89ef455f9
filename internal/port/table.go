package port

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// DefaultLsofPath is the socket-table query binary looked up on PATH.
const DefaultLsofPath = "lsof"

// DefaultSignal is the signal name used to terminate port holders.
const DefaultSignal = "KILL"

// ProcessTable is the OS capability behind socket-table probing and
// reclaiming: who holds a local TCP port, and how to terminate them.
type ProcessTable interface {
	// PortOwners returns the pids listening on the local TCP port, in
	// ascending order. An empty slice means the port has no holder.
	PortOwners(ctx context.Context, port int) ([]int, error)

	// Terminate delivers the configured terminate signal to pid.
	Terminate(ctx context.Context, pid int) error
}

// commandRunner runs a command and returns its stdout. It matches
// exec.Cmd.Output so tests can substitute canned lsof output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// LsofTable implements ProcessTable by running lsof and sending signals
// through the platform signal API.
type LsofTable struct {
	path   string
	signal string
	run    commandRunner
	kill   func(pid int, signal string) error
}

// NewLsofTable creates a ProcessTable backed by the lsof binary at path
// (DefaultLsofPath when empty) that terminates holders with the named
// signal (DefaultSignal when empty).
func NewLsofTable(path, signal string) *LsofTable {
	if path == "" {
		path = DefaultLsofPath
	}
	if signal == "" {
		signal = DefaultSignal
	}
	return &LsofTable{
		path:   path,
		signal: strings.TrimPrefix(strings.ToUpper(signal), "SIG"),
		run:    execOutput,
		kill:   terminateProcess,
	}
}

// Signal returns the normalized signal name, e.g. "KILL".
func (t *LsofTable) Signal() string {
	return t.signal
}

// PortOwners runs `lsof -nP -t -iTCP:<port> -sTCP:LISTEN`.
//
// lsof exits with status 1 when nothing matches, which is the normal
// "port is free" answer rather than a failure.
func (t *LsofTable) PortOwners(ctx context.Context, port int) ([]int, error) {
	output, err := t.run(ctx, t.path, lsofArgs(port)...)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrQueryFailed, t.path, err)
		}
	}
	return parsePIDs(output)
}

// Terminate sends the configured signal to pid.
func (t *LsofTable) Terminate(_ context.Context, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: invalid pid %d", model.ErrKillFailed, pid)
	}
	if err := t.kill(pid, t.signal); err != nil {
		return fmt.Errorf("%w: pid %d: %v", model.ErrKillFailed, pid, err)
	}
	return nil
}

func lsofArgs(port int) []string {
	return []string{"-nP", "-t", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN"}
}

// parsePIDs parses `lsof -t` output: one pid per line. The result is
// deduplicated and sorted.
func parsePIDs(output []byte) ([]int, error) {
	seen := make(map[int]bool)
	pids := []int{}

	for _, line := range bytes.Split(output, []byte("\n")) {
		field := strings.TrimSpace(string(line))
		if field == "" {
			continue
		}
		pid, err := strconv.Atoi(field)
		if err != nil || pid <= 0 {
			return nil, fmt.Errorf("%w: unexpected lsof output line %q", model.ErrQueryFailed, field)
		}
		if seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}

	sort.Ints(pids)
	return pids, nil
}
