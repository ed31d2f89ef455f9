package port

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// TableProber reports a local port as busy when the socket table lists any
// holder for it. A failed query is also reported as busy, with the query
// error as the reason, so one broken lookup never aborts a scan.
type TableProber struct {
	table ProcessTable
}

// NewTableProber creates a TableProber on top of table.
func NewTableProber(table ProcessTable) *TableProber {
	return &TableProber{table: table}
}

// Probe ignores address: the socket table only describes the local host.
func (p *TableProber) Probe(ctx context.Context, _ string, port int) model.ProbeResult {
	result := model.ProbeResult{Port: port}

	pids, err := p.table.PortOwners(ctx, port)
	if err != nil {
		result.Status = model.ProbeBusy
		result.Reason = err.Error()
		return result
	}
	if len(pids) > 0 {
		result.Status = model.ProbeBusy
		result.PIDs = pids
		result.Reason = fmt.Sprintf("Port %d is in use by PID %s", port, joinPIDs(pids))
		return result
	}

	result.Status = model.ProbeFree
	return result
}

func joinPIDs(pids []int) string {
	parts := make([]string, len(pids))
	for i, pid := range pids {
		parts[i] = strconv.Itoa(pid)
	}
	return strings.Join(parts, ", ")
}
