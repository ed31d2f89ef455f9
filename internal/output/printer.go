// Package output prints one human-readable line per probe or reclaim step.
//
// The line texts are part of the tool's contract and are kept stable;
// colour is only added when the destination is a terminal.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// ─── colors ───────────────────────────────────────────────────────────────────

var (
	colorFree  = color.New(color.FgGreen, color.Bold)
	colorBusy  = color.New(color.FgRed)
	colorWarn  = color.New(color.FgYellow)
)

// SetColor forces colour on or off. fatih/color already disables itself
// when stdout is not a TTY; this is for --color=always / never.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// Printer writes result lines to w.
type Printer struct {
	w io.Writer
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// ─── probe ────────────────────────────────────────────────────────────────────

// Probe prints the outcome of a probe.
//
//	Port 8080 is available.
//	Port 8080 is not available: <reason>
//	Port 8080 on 10.0.0.1 is available.
func (p *Printer) Probe(r model.ProbeResult) {
	subject := portSubject(r.Address, r.Port)
	if r.IsFree() {
		fmt.Fprintf(p.w, "%s is %s.\n", subject, colorFree.Sprint("available"))
		return
	}
	fmt.Fprintf(p.w, "%s is %s: %s\n", subject, colorBusy.Sprint("not available"), r.Reason)
}

// ─── reclaim ──────────────────────────────────────────────────────────────────

// Busy announces that a reclaim attempt is starting.
func (p *Printer) Busy(port int) {
	fmt.Fprintf(p.w, "Port %d is %s. Attempting to make it available...\n", port, colorBusy.Sprint("busy"))
}

// Reclaim prints the per-holder lines followed by the final verdict.
//
//	Found process with PID: 4321 on port 8080
//	Killed process with PID: 4321
//	Successfully freed port 8080.
func (p *Printer) Reclaim(r model.ReclaimResult) {
	for _, c := range r.Containers {
		fmt.Fprintf(p.w, "Found container %s (%s, %s) publishing port %d\n", c.ContainerName, c.ShortID(), c.Image, r.Port)
	}
	for _, pid := range r.PIDs {
		fmt.Fprintf(p.w, "Found process with PID: %d on port %d\n", pid, r.Port)
	}
	for _, pid := range r.Killed {
		fmt.Fprintf(p.w, "Killed process with PID: %d\n", pid)
	}

	switch r.Status {
	case model.ReclaimFreed:
		for _, c := range r.Containers {
			fmt.Fprintf(p.w, "Killed container %s\n", c.ShortID())
		}
		fmt.Fprintf(p.w, "%s port %d.\n", colorFree.Sprint("Successfully freed"), r.Port)
	default:
		reason := "unknown error"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		fmt.Fprintf(p.w, "%s port %d: %s\n", colorWarn.Sprint("Failed to free"), r.Port, reason)
	}
}

// ─── misc ─────────────────────────────────────────────────────────────────────

// Line prints a plain message, used for usage text and range errors.
func (p *Printer) Line(msg string) {
	fmt.Fprintln(p.w, msg)
}

func portSubject(address string, port int) string {
	if address == "" {
		return fmt.Sprintf("Port %d", port)
	}
	return fmt.Sprintf("Port %d on %s", port, address)
}
