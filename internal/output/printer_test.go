package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer) {
	t.Helper()

	SetColor(false)
	var buf bytes.Buffer
	return New(&buf), &buf
}

func TestPrinter_Probe(t *testing.T) {
	tests := []struct {
		name   string
		result model.ProbeResult
		want   string
	}{
		{
			name:   "local free",
			result: model.ProbeResult{Port: 3000, Status: model.ProbeFree},
			want:   "Port 3000 is available.\n",
		},
		{
			name:   "local busy",
			result: model.ProbeResult{Port: 3000, Status: model.ProbeBusy, Reason: "Port 3000 is in use by PID 1"},
			want:   "Port 3000 is not available: Port 3000 is in use by PID 1\n",
		},
		{
			name:   "address free",
			result: model.ProbeResult{Address: "127.0.0.1", Port: 80, Status: model.ProbeFree},
			want:   "Port 80 on 127.0.0.1 is available.\n",
		},
		{
			name:   "address busy",
			result: model.ProbeResult{Address: "10.0.0.1", Port: 80, Status: model.ProbeBusy, Reason: "bind: cannot assign requested address"},
			want:   "Port 80 on 10.0.0.1 is not available: bind: cannot assign requested address\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newTestPrinter(t)
			p.Probe(tt.result)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_Reclaim(t *testing.T) {
	t.Run("freed", func(t *testing.T) {
		p, buf := newTestPrinter(t)
		p.Busy(8080)
		p.Reclaim(model.ReclaimResult{Port: 8080, Status: model.ReclaimFreed, PIDs: []int{42}, Killed: []int{42}})

		assert.Equal(t, "Port 8080 is busy. Attempting to make it available...\n"+
			"Found process with PID: 42 on port 8080\n"+
			"Killed process with PID: 42\n"+
			"Successfully freed port 8080.\n", buf.String())
	})

	t.Run("not found", func(t *testing.T) {
		p, buf := newTestPrinter(t)
		p.Reclaim(model.ReclaimResult{Port: 8080, Status: model.ReclaimNotFound, Err: model.ErrNoProcessFound})

		assert.Equal(t, "Failed to free port 8080: No process found on the port\n", buf.String())
	})

	t.Run("kill failed", func(t *testing.T) {
		p, buf := newTestPrinter(t)
		p.Reclaim(model.ReclaimResult{
			Port:   22,
			Status: model.ReclaimFailed,
			PIDs:   []int{1},
			Err:    errors.Join(model.ErrKillFailed, errors.New("operation not permitted")),
		})

		out := buf.String()
		assert.Contains(t, out, "Found process with PID: 1 on port 22\n")
		assert.NotContains(t, out, "Killed process")
		assert.Contains(t, out, "Failed to free port 22: failed to kill process")
	})

	t.Run("container", func(t *testing.T) {
		p, buf := newTestPrinter(t)
		p.Reclaim(model.ReclaimResult{
			Port:       8080,
			Status:     model.ReclaimFreed,
			Containers: []model.ContainerInfo{{ContainerID: "0123456789abcdef", ContainerName: "web", Image: "nginx:1.27"}},
		})

		assert.Equal(t, "Found container web (0123456789ab, nginx:1.27) publishing port 8080\n"+
			"Killed container 0123456789ab\n"+
			"Successfully freed port 8080.\n", buf.String())
	})
}
