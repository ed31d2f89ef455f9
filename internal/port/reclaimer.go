package port

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shinji-kodama/portreclaim/internal/logging"
	"github.com/shinji-kodama/portreclaim/internal/model"
)

// ContainerKiller finds and kills Docker containers that publish a host
// port. Published ports are held by docker-proxy, so killing the pid
// lsof reports would break the daemon's port forwarding instead of
// stopping the workload.
type ContainerKiller interface {
	PublishedContainers(ctx context.Context, port int) ([]model.ContainerInfo, error)
	KillContainer(ctx context.Context, containerID string) error
}

// Reclaimer terminates whatever holds a local port.
//
// Reclaiming is destructive: the holder is an arbitrary process outside
// this program's ownership. Signal delivery is treated as success; the
// port is not re-probed afterwards.
type Reclaimer struct {
	table      ProcessTable
	containers ContainerKiller
	log        *slog.Logger
}

// NewReclaimer creates a Reclaimer that looks holders up in table.
func NewReclaimer(table ProcessTable, log *slog.Logger) *Reclaimer {
	return &Reclaimer{table: table, log: logging.OrNop(log)}
}

// WithContainers enables container-aware reclaiming. Containers that
// publish the port are killed first; the process table is consulted only
// when none is found.
func (r *Reclaimer) WithContainers(c ContainerKiller) *Reclaimer {
	r.containers = c
	return r
}

// Reclaim resolves the holders of port and terminates them.
//
// The returned status is ReclaimNotFound when nothing holds the port (no
// signal is sent), ReclaimFailed when the lookup fails or any holder could
// not be signalled, and ReclaimFreed otherwise. All holders are attempted
// even when an earlier one fails.
func (r *Reclaimer) Reclaim(ctx context.Context, port int) model.ReclaimResult {
	if r.containers != nil {
		if res, handled := r.reclaimContainers(ctx, port); handled {
			return res
		}
	}

	result := model.ReclaimResult{Port: port}

	pids, err := r.table.PortOwners(ctx, port)
	if err != nil {
		result.Status = model.ReclaimFailed
		result.Err = err
		return result
	}
	if len(pids) == 0 {
		result.Status = model.ReclaimNotFound
		result.Err = model.ErrNoProcessFound
		return result
	}
	result.PIDs = pids

	var errs []error
	for _, pid := range pids {
		r.log.Debug("terminating port holder", "port", port, "pid", pid)
		if err := r.table.Terminate(ctx, pid); err != nil {
			r.log.Debug("terminate failed", "port", port, "pid", pid, "error", err)
			errs = append(errs, err)
			continue
		}
		result.Killed = append(result.Killed, pid)
	}

	if len(errs) > 0 {
		result.Status = model.ReclaimFailed
		result.Err = errors.Join(errs...)
		if !errors.Is(result.Err, model.ErrKillFailed) {
			result.Err = fmt.Errorf("%w: %w", model.ErrKillFailed, result.Err)
		}
		return result
	}

	result.Status = model.ReclaimFreed
	return result
}

// reclaimContainers kills the containers publishing port. handled is false
// when the daemon could not be queried or no container publishes the port,
// in which case the caller falls back to the process table.
func (r *Reclaimer) reclaimContainers(ctx context.Context, port int) (model.ReclaimResult, bool) {
	result := model.ReclaimResult{Port: port}

	containers, err := r.containers.PublishedContainers(ctx, port)
	if err != nil {
		r.log.Warn("docker lookup failed, falling back to process table", "port", port, "error", err)
		return result, false
	}
	if len(containers) == 0 {
		return result, false
	}
	result.Containers = containers

	var errs []error
	for _, c := range containers {
		r.log.Debug("killing container",
			"port", port,
			"container", c.ShortID(),
			"name", c.ContainerName,
			"image", c.Image,
			"state", c.Status,
			"published", c.PublishedPorts,
		)
		if err := r.containers.KillContainer(ctx, c.ContainerID); err != nil {
			errs = append(errs, fmt.Errorf("container %s: %w", c.ShortID(), err))
		}
	}

	if len(errs) > 0 {
		result.Status = model.ReclaimFailed
		result.Err = fmt.Errorf("%w: %w", model.ErrKillFailed, errors.Join(errs...))
		return result, true
	}

	result.Status = model.ReclaimFreed
	return result, true
}
