package port

import (
	"context"
	"net"
	"strconv"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// Prober checks whether a single (address, port) pair is free.
//
// Implementations never return an error: anything that prevents a clear
// "free" answer is reported as ProbeBusy with a reason.
type Prober interface {
	Probe(ctx context.Context, address string, port int) model.ProbeResult
}

// Scanner checks port availability by binding a TCP listener.
//
// It uses the operating system's network stack (net.Listen) to determine
// if a port is free. A successful bind means nothing else holds the port;
// the listener is closed before Probe returns, so the port is occupied
// only for the duration of the call.
type Scanner struct {
	lc net.ListenConfig
}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Probe attempts to listen on address:port.
//
// An empty address binds all interfaces (":port"). Binding an address that
// does not belong to this host fails, and is reported as Busy with the
// bind error as the reason.
func (s *Scanner) Probe(ctx context.Context, address string, port int) model.ProbeResult {
	result := model.ProbeResult{Address: address, Port: port}

	listener, err := s.lc.Listen(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		result.Status = model.ProbeBusy
		result.Reason = bindReason(err)
		return result
	}
	_ = listener.Close()

	result.Status = model.ProbeFree
	return result
}

// bindReason strips the "listen tcp 1.2.3.4:80:" prefix from a bind error
// so result lines stay short.
func bindReason(err error) string {
	if opErr, ok := err.(*net.OpError); ok && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return err.Error()
}
