package cli

import (
	"context"
	"log/slog"

	"github.com/shinji-kodama/portreclaim/internal/logging"
	"github.com/shinji-kodama/portreclaim/internal/model"
	"github.com/shinji-kodama/portreclaim/internal/netrange"
	"github.com/shinji-kodama/portreclaim/internal/output"
	"github.com/shinji-kodama/portreclaim/internal/port"
)

// reclaimer is the part of port.Reclaimer the driver depends on.
type reclaimer interface {
	Reclaim(ctx context.Context, port int) model.ReclaimResult
}

// Driver runs a ScanRequest: it walks every (address, port) pair, probes
// it, prints the outcome, and in free mode reclaims busy ports.
type Driver struct {
	// Local probes ports on this host when no target address is given.
	Local port.Prober

	// Bind probes ports on an explicit address or CIDR member.
	Bind port.Prober

	// Reclaimer frees busy local ports in free mode.
	Reclaimer reclaimer

	Out *output.Printer
	Log *slog.Logger
}

// Summary tallies the outcomes of one run.
type Summary struct {
	Probed int
	Free   int
	Busy   int
	Freed  int
	Failed int
}

// Run executes req. Every pair is visited regardless of earlier
// outcomes. Addresses are the outer loop and ports ascend within each.
//
// A CIDR block is parsed before any probe; an invalid block returns a
// *netrange.ParseError and nothing is probed.
func (d *Driver) Run(ctx context.Context, req *model.ScanRequest) (Summary, error) {
	var sum Summary
	log := logging.OrNop(d.Log)

	if err := req.Validate(); err != nil {
		return sum, err
	}

	switch {
	case req.CIDR != "":
		block, err := netrange.ParseCIDR(req.CIDR)
		if err != nil {
			return sum, err
		}
		log.Debug("scanning block", "cidr", block.String(), "addresses", block.Size().String(), "ports", req.Range.String())
		for addr := range block.Addrs() {
			d.probeRange(ctx, d.Bind, addr.String(), req.Range, &sum)
		}

	case req.Address != "":
		log.Debug("scanning address", "address", req.Address, "ports", req.Range.String())
		d.probeRange(ctx, d.Bind, req.Address, req.Range, &sum)

	case req.Mode == model.ModeCheckAndFree:
		for _, p := range req.Range.Ports() {
			d.checkAndFree(ctx, p, &sum)
		}

	default:
		d.probeRange(ctx, d.Local, "", req.Range, &sum)
	}

	return sum, nil
}

func (d *Driver) probeRange(ctx context.Context, prober port.Prober, address string, r model.PortRange, sum *Summary) {
	for _, p := range r.Ports() {
		res := prober.Probe(ctx, address, p)
		sum.record(res)
		d.Out.Probe(res)
	}
}

// checkAndFree probes a local port and reclaims it when busy. The
// reclaimer is never consulted for a free port.
func (d *Driver) checkAndFree(ctx context.Context, p int, sum *Summary) {
	res := d.Local.Probe(ctx, "", p)
	sum.record(res)
	if res.IsFree() {
		d.Out.Probe(res)
		return
	}

	d.Out.Busy(p)
	rec := d.Reclaimer.Reclaim(ctx, p)
	if rec.Status == model.ReclaimFreed {
		sum.Freed++
	} else {
		sum.Failed++
	}
	d.Out.Reclaim(rec)
}

func (s *Summary) record(r model.ProbeResult) {
	s.Probed++
	if r.IsFree() {
		s.Free++
	} else {
		s.Busy++
	}
}

// Unresolved returns the number of ports the run leaves busy.
func (s Summary) Unresolved() int {
	return s.Busy - s.Freed
}
