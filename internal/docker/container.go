package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// killSignal is sent to containers that publish a reclaimed port. It
// matches the forceful default of the process-table path.
const killSignal = "SIGKILL"

// containerAPI is the subset of the Docker SDK client used here.
// *client.Client satisfies it; tests substitute a fake.
type containerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerKill(ctx context.Context, containerID, signal string) error
}

// Containers finds and kills containers by published host port. It
// implements port.ContainerKiller.
type Containers struct {
	api    containerAPI
	signal string
}

// NewContainers creates a Containers backed by c.
func NewContainers(c *Client) *Containers {
	return &Containers{api: c.Inner(), signal: killSignal}
}

// PublishedContainers returns the running containers that publish port on
// the host over TCP, sorted by name.
//
// The daemon's "publish" filter does the bulk of the work; published ports
// are re-checked locally so that a container publishing the same port for
// UDP only is not returned.
func (c *Containers) PublishedContainers(ctx context.Context, port int) ([]model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("publish", fmt.Sprintf("%d/tcp", port)),
		filters.Arg("status", "running"),
	)

	summaries, err := c.api.ContainerList(ctx, container.ListOptions{Filters: filterArgs})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning, "failed to list Docker containers", err)
	}

	result := make([]model.ContainerInfo, 0, len(summaries))
	for _, s := range summaries {
		info := summaryToInfo(s)
		if publishes(s, port) {
			result = append(result, info)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ContainerName < result[j].ContainerName
	})
	return result, nil
}

// KillContainer sends SIGKILL to the container.
func (c *Containers) KillContainer(ctx context.Context, containerID string) error {
	if err := c.api.ContainerKill(ctx, containerID, c.signal); err != nil {
		return fmt.Errorf("failed to kill container %s: %w", containerID, err)
	}
	return nil
}

// publishes reports whether s maps host port to any container port over TCP.
func publishes(s container.Summary, port int) bool {
	for _, p := range s.Ports {
		if int(p.PublicPort) == port && (p.Type == "" || p.Type == "tcp") {
			return true
		}
	}
	return false
}

// summaryToInfo maps a Docker API summary onto the domain model. Docker
// returns names with a leading "/", which is stripped.
func summaryToInfo(s container.Summary) model.ContainerInfo {
	name := ""
	if len(s.Names) > 0 {
		name = strings.TrimPrefix(s.Names[0], "/")
	}

	seen := make(map[int]bool)
	var published []int
	for _, p := range s.Ports {
		hp := int(p.PublicPort)
		if hp == 0 || seen[hp] {
			continue
		}
		seen[hp] = true
		published = append(published, hp)
	}
	sort.Ints(published)

	return model.ContainerInfo{
		ContainerID:    s.ID,
		ContainerName:  name,
		Image:          s.Image,
		Status:         string(s.State),
		PublishedPorts: published,
	}
}
