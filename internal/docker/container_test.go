package docker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// fakeAPI records the calls made through containerAPI.
type fakeAPI struct {
	summaries   []container.Summary
	listErr     error
	killErr     error
	listOptions container.ListOptions
	killed      map[string]string
}

func (f *fakeAPI) ContainerList(_ context.Context, options container.ListOptions) ([]container.Summary, error) {
	f.listOptions = options
	return f.summaries, f.listErr
}

func (f *fakeAPI) ContainerKill(_ context.Context, id, signal string) error {
	if f.killErr != nil {
		return f.killErr
	}
	if f.killed == nil {
		f.killed = make(map[string]string)
	}
	f.killed[id] = signal
	return nil
}

// summaryFromJSON builds a container.Summary the way the Engine API
// returns it, which keeps the test independent of SDK struct names.
func summaryFromJSON(t *testing.T, raw string) container.Summary {
	t.Helper()

	var s container.Summary
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

// TestPublishedContainers verifies filtering, the local TCP re-check, and
// the mapping to model.ContainerInfo.
func TestPublishedContainers(t *testing.T) {
	api := &fakeAPI{summaries: []container.Summary{
		summaryFromJSON(t, `{"Id":"bbbbbbbbbbbbbbbb","Names":["/web"],"Image":"nginx","State":"running",
			"Ports":[{"PrivatePort":80,"PublicPort":8080,"Type":"tcp"},{"PrivatePort":80,"PublicPort":8080,"Type":"tcp","IP":"::"}]}`),
		summaryFromJSON(t, `{"Id":"aaaaaaaaaaaaaaaa","Names":["/api"],"Image":"app","State":"running",
			"Ports":[{"PrivatePort":3000,"PublicPort":8080,"Type":"tcp"},{"PrivatePort":9229,"PublicPort":9229,"Type":"tcp"}]}`),
		summaryFromJSON(t, `{"Id":"cccccccccccccccc","Names":["/dns"],"Image":"coredns","State":"running",
			"Ports":[{"PrivatePort":53,"PublicPort":8080,"Type":"udp"}]}`),
	}}
	c := &Containers{api: api, signal: killSignal}

	got, err := c.PublishedContainers(context.Background(), 8080)
	require.NoError(t, err)

	require.Len(t, got, 2, "the UDP-only container must be excluded")
	assert.Equal(t, "api", got[0].ContainerName, "results are sorted by name")
	assert.Equal(t, []int{8080, 9229}, got[0].PublishedPorts)
	assert.Equal(t, "web", got[1].ContainerName)
	assert.Equal(t, []int{8080}, got[1].PublishedPorts, "duplicate IPv4/IPv6 bindings collapse")
	assert.Equal(t, "nginx", got[1].Image)
	assert.Equal(t, "running", got[1].Status)

	assert.Equal(t, []string{"8080/tcp"}, api.listOptions.Filters.Get("publish"))
	assert.Equal(t, []string{"running"}, api.listOptions.Filters.Get("status"))
}

// TestPublishedContainers_ListError verifies that daemon errors carry the
// Docker exit code.
func TestPublishedContainers_ListError(t *testing.T) {
	c := &Containers{api: &fakeAPI{listErr: errors.New("connection refused")}, signal: killSignal}

	_, err := c.PublishedContainers(context.Background(), 8080)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitDockerNotRunning, cliErr.Code)
}

// TestKillContainer verifies that SIGKILL is sent and errors are wrapped.
func TestKillContainer(t *testing.T) {
	ctx := context.Background()

	api := &fakeAPI{}
	c := &Containers{api: api, signal: killSignal}
	require.NoError(t, c.KillContainer(ctx, "abc"))
	assert.Equal(t, "SIGKILL", api.killed["abc"])

	failing := &Containers{api: &fakeAPI{killErr: errors.New("no such container")}, signal: killSignal}
	err := failing.KillContainer(ctx, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc")
	assert.Contains(t, err.Error(), "no such container")
}

// TestDetectUnixSocket verifies socket probing order and the error text.
func TestDetectUnixSocket(t *testing.T) {
	dir := t.TempDir()

	host, err := detectUnixSocket([]string{dir + "/missing.sock", dir})
	require.NoError(t, err)
	assert.Equal(t, "unix://"+dir, host)

	_, err = detectUnixSocket([]string{dir + "/missing.sock"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Docker socket not found")
}
