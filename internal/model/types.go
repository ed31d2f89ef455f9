package model

import (
	"fmt"
	"strings"
)

// MaxPort is the highest valid TCP port number (2^16 - 1).
const MaxPort = 65535

// Mode selects what the Driver does for each (address, port) pair.
type Mode string

const (
	// ModeCheck reports availability of local ports using the OS socket table.
	ModeCheck Mode = "check"

	// ModeCheckAndFree reports availability of local ports and terminates
	// the owning process of every busy one.
	ModeCheckAndFree Mode = "free"

	// ModeRemoteCheck bind-probes an explicit address or every address
	// of a CIDR block.
	ModeRemoteCheck Mode = "remote"
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks whether the Mode value is one of the predefined modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeCheck, ModeCheckAndFree, ModeRemoteCheck:
		return true
	default:
		return false
	}
}

// PortRange is an inclusive range of TCP ports.
//
// When only one value is given on the command line, End equals Start.
type PortRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SinglePort returns a PortRange that covers exactly one port.
func SinglePort(port int) PortRange {
	return PortRange{Start: port, End: port}
}

// Validate checks that Start is positive, End is not below Start, and both
// fit in the 16-bit port space.
func (r PortRange) Validate() error {
	if r.Start <= 0 {
		return fmt.Errorf("port range: start port %d must be positive", r.Start)
	}
	if r.End < r.Start {
		return fmt.Errorf("port range: end port %d is below start port %d", r.End, r.Start)
	}
	if r.End > MaxPort {
		return fmt.Errorf("port range: end port %d exceeds %d", r.End, MaxPort)
	}
	return nil
}

// Len returns the number of ports in the range.
func (r PortRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Ports returns every port in the range in ascending order.
func (r PortRange) Ports() []int {
	ports := make([]int, 0, r.Len())
	for p := r.Start; p <= r.End; p++ {
		ports = append(ports, p)
	}
	return ports
}

// String formats the range as "start" or "start-end".
func (r PortRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ScanRequest is the validated form of a single invocation. Both the
// historical single-dash argument shapes and the cobra subcommands are
// reduced to this one schema before anything is probed.
type ScanRequest struct {
	// Mode selects probe-only, probe-and-reclaim, or address bind probing.
	Mode Mode `json:"mode"`

	// Address is the target host for ModeRemoteCheck. Empty means "no
	// explicit address" (local socket-table probing).
	Address string `json:"address,omitempty"`

	// CIDR is a network prefix whose every address is probed. Mutually
	// exclusive with Address.
	CIDR string `json:"cidr,omitempty"`

	// Range is the inclusive port range to probe.
	Range PortRange `json:"range"`

	// Bind forces the bind variant of the prober for local checks.
	Bind bool `json:"bind,omitempty"`
}

// Validate enforces the invariants of a ScanRequest. Every failure is
// returned as a *UsageError.
func (r *ScanRequest) Validate() error {
	if !r.Mode.IsValid() {
		return NewUsageError(fmt.Sprintf("invalid mode %q", r.Mode))
	}
	if err := r.Range.Validate(); err != nil {
		return &UsageError{Message: "Invalid or missing port range.", Err: err}
	}
	if strings.TrimSpace(r.Address) != "" && strings.TrimSpace(r.CIDR) != "" {
		return NewUsageError("an address and a CIDR block cannot be combined")
	}
	if r.Mode == ModeCheckAndFree && (r.Address != "" || r.CIDR != "") {
		return NewUsageError("ports can only be freed on the local host")
	}
	if r.Mode == ModeRemoteCheck && r.Address == "" && r.CIDR == "" {
		return NewUsageError("an address or a CIDR block is required")
	}
	return nil
}

// ProbeStatus is the outcome of a single probe.
type ProbeStatus string

const (
	// ProbeFree means nothing holds the port.
	ProbeFree ProbeStatus = "free"

	// ProbeBusy means the port is held, or the probe could not tell.
	ProbeBusy ProbeStatus = "busy"
)

// String returns the string representation of ProbeStatus.
func (s ProbeStatus) String() string {
	return string(s)
}

// ProbeResult is the outcome of checking one (address, port) pair.
type ProbeResult struct {
	// Address is the probed host. Empty for socket-table probes, which
	// are not tied to an address.
	Address string `json:"address,omitempty"`

	Port int `json:"port"`

	Status ProbeStatus `json:"status"`

	// Reason explains a Busy status, e.g. the bind error or the holder pids.
	Reason string `json:"reason,omitempty"`

	// PIDs lists the holders found by a socket-table probe.
	PIDs []int `json:"pids,omitempty"`
}

// IsFree reports whether the probe found the port unoccupied.
func (r ProbeResult) IsFree() bool {
	return r.Status == ProbeFree
}

// ReclaimStatus is the outcome of a reclaim attempt.
type ReclaimStatus string

const (
	// ReclaimFreed means a terminate signal was delivered to every holder.
	ReclaimFreed ReclaimStatus = "freed"

	// ReclaimNotFound means no holder was found, so nothing was signalled.
	ReclaimNotFound ReclaimStatus = "not-found"

	// ReclaimFailed means at least one holder could not be signalled.
	ReclaimFailed ReclaimStatus = "failed"
)

// String returns the string representation of ReclaimStatus.
func (s ReclaimStatus) String() string {
	return string(s)
}

// ReclaimResult is the outcome of reclaiming one local port.
type ReclaimResult struct {
	Port int `json:"port"`

	Status ReclaimStatus `json:"status"`

	// PIDs lists the processes that held the port when it was looked up.
	PIDs []int `json:"pids,omitempty"`

	// Killed lists the pids that were successfully signalled.
	Killed []int `json:"killed,omitempty"`

	// Containers lists the Docker containers that published the port and
	// were killed instead of their proxy process.
	Containers []ContainerInfo `json:"containers,omitempty"`

	// Err is ErrNoProcessFound, ErrKillFailed or ErrQueryFailed (wrapped)
	// for anything but ReclaimFreed.
	Err error `json:"-"`
}

// ContainerInfo holds runtime information about a Docker container that
// publishes a host port. This data is fetched from the Docker API, not
// persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable name without the leading "/".
	ContainerName string `json:"containerName"`

	Image string `json:"image,omitempty"`

	// Status is the Docker container state (e.g., "running").
	Status string `json:"status"`

	// PublishedPorts lists the host ports the container publishes.
	PublishedPorts []int `json:"publishedPorts,omitempty"`
}

// ShortID returns the 12-character form of the container ID used by the
// docker CLI.
func (c ContainerInfo) ShortID() string {
	if len(c.ContainerID) > 12 {
		return c.ContainerID[:12]
	}
	return c.ContainerID
}

// ExitCode defines the process exit codes. Codes other than ExitSuccess
// and ExitGeneralError / ExitInvalidCIDR are only produced in strict mode;
// by default usage problems and busy ports still exit 0.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUsage indicates the arguments could not be turned into a request.
	ExitUsage ExitCode = 2

	// ExitInvalidCIDR indicates the -cidr value was not a network prefix.
	ExitInvalidCIDR ExitCode = 3

	// ExitPortsBusy indicates at least one port was busy or could not be freed.
	ExitPortsBusy ExitCode = 4

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
