package port

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// reservePort asks the OS for a free loopback port and releases it, so the
// test can bind and unbind it deliberately.
func reservePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to reserve a test port")
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	require.NoError(t, listener.Close())

	return tcpAddr.Port
}

// TestScanner_Probe_Lifecycle verifies that a port probes Free before a
// listener is bound, Busy while it is held, and Free again once released.
func TestScanner_Probe_Lifecycle(t *testing.T) {
	ctx := context.Background()
	scanner := NewScanner()
	port := reservePort(t)

	before := scanner.Probe(ctx, "127.0.0.1", port)
	assert.Equal(t, model.ProbeFree, before.Status, "port %d should be free before binding", port)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)

	during := scanner.Probe(ctx, "127.0.0.1", port)
	assert.Equal(t, model.ProbeBusy, during.Status, "port %d should be busy while held", port)
	assert.NotEmpty(t, during.Reason, "busy bind probes carry the bind error")
	assert.Equal(t, "127.0.0.1", during.Address)
	assert.Equal(t, port, during.Port)

	require.NoError(t, listener.Close())

	after := scanner.Probe(ctx, "127.0.0.1", port)
	assert.Equal(t, model.ProbeFree, after.Status, "port %d should be free after release", port)
}

// TestScanner_Probe_ReleasesListener verifies that a Free probe does not
// keep the port occupied.
func TestScanner_Probe_ReleasesListener(t *testing.T) {
	ctx := context.Background()
	scanner := NewScanner()
	port := reservePort(t)

	require.True(t, scanner.Probe(ctx, "127.0.0.1", port).IsFree())

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err, "probe must release the port it bound")
	defer func() { _ = listener.Close() }()
}

// TestScanner_Probe_ForeignAddress verifies that an address this host does
// not own is reported Busy rather than returning an error.
func TestScanner_Probe_ForeignAddress(t *testing.T) {
	scanner := NewScanner()

	// 192.0.2.0/24 is TEST-NET-1 and never assigned to a local interface.
	result := scanner.Probe(context.Background(), "192.0.2.10", 8080)
	assert.Equal(t, model.ProbeBusy, result.Status)
	assert.NotEmpty(t, result.Reason)
}

// TestScanner_Probe_InvalidAddress verifies that an unparsable host does
// not panic and is reported Busy.
func TestScanner_Probe_InvalidAddress(t *testing.T) {
	scanner := NewScanner()

	result := scanner.Probe(context.Background(), "not a host", 8080)
	assert.Equal(t, model.ProbeBusy, result.Status)
}
