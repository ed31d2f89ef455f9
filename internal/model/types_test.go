package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMode_IsValid checks that only defined modes pass validation.
func TestMode_IsValid(t *testing.T) {
	assert.True(t, ModeCheck.IsValid())
	assert.True(t, ModeCheckAndFree.IsValid())
	assert.True(t, ModeRemoteCheck.IsValid())
	assert.False(t, Mode("scan").IsValid())
	assert.False(t, Mode("").IsValid())
}

// TestPortRange_Validate covers the positive, inverted, and overflow cases.
func TestPortRange_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       PortRange
		wantErr string
	}{
		{name: "single port", r: SinglePort(8080)},
		{name: "inclusive range", r: PortRange{Start: 3000, End: 3010}},
		{name: "full space", r: PortRange{Start: 1, End: MaxPort}},
		{name: "zero start", r: PortRange{Start: 0, End: 10}, wantErr: "must be positive"},
		{name: "negative start", r: PortRange{Start: -5, End: -5}, wantErr: "must be positive"},
		{name: "inverted", r: PortRange{Start: 3010, End: 3000}, wantErr: "below start"},
		{name: "beyond max", r: PortRange{Start: 65000, End: 70000}, wantErr: "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestPortRange_Ports verifies that iteration is inclusive of both endpoints.
func TestPortRange_Ports(t *testing.T) {
	r := PortRange{Start: 8000, End: 8003}
	assert.Equal(t, []int{8000, 8001, 8002, 8003}, r.Ports())
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, "8000-8003", r.String())

	single := SinglePort(22)
	assert.Equal(t, []int{22}, single.Ports())
	assert.Equal(t, "22", single.String())

	assert.Equal(t, 0, PortRange{Start: 5, End: 4}.Len())
}

// TestScanRequest_Validate checks the request invariants, including the
// address/CIDR exclusivity rule.
func TestScanRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ScanRequest
		wantErr string
	}{
		{
			name: "local check",
			req:  ScanRequest{Mode: ModeCheck, Range: SinglePort(3000)},
		},
		{
			name: "remote check with address",
			req:  ScanRequest{Mode: ModeRemoteCheck, Address: "127.0.0.1", Range: PortRange{Start: 1, End: 2}},
		},
		{
			name: "remote check with cidr",
			req:  ScanRequest{Mode: ModeRemoteCheck, CIDR: "10.0.0.0/30", Range: SinglePort(80)},
		},
		{
			name:    "address and cidr",
			req:     ScanRequest{Mode: ModeRemoteCheck, Address: "10.0.0.1", CIDR: "10.0.0.0/30", Range: SinglePort(80)},
			wantErr: "cannot be combined",
		},
		{
			name:    "free with address",
			req:     ScanRequest{Mode: ModeCheckAndFree, Address: "10.0.0.1", Range: SinglePort(80)},
			wantErr: "local host",
		},
		{
			name:    "remote without target",
			req:     ScanRequest{Mode: ModeRemoteCheck, Range: SinglePort(80)},
			wantErr: "address or a CIDR",
		},
		{
			name:    "inverted range",
			req:     ScanRequest{Mode: ModeCheck, Range: PortRange{Start: 10, End: 5}},
			wantErr: "Invalid or missing port range.",
		},
		{
			name:    "unknown mode",
			req:     ScanRequest{Mode: "scan", Range: SinglePort(80)},
			wantErr: "invalid mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsUsageError(err), "validation errors must be usage errors")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestContainerInfo_ShortID verifies the docker-style truncation.
func TestContainerInfo_ShortID(t *testing.T) {
	c := ContainerInfo{ContainerID: "0123456789abcdef0123"}
	assert.Equal(t, "0123456789ab", c.ShortID())

	short := ContainerInfo{ContainerID: "abc"}
	assert.Equal(t, "abc", short.ShortID())
}

// TestUsageError verifies wrapping and detection through fmt.Errorf chains.
func TestUsageError(t *testing.T) {
	inner := errors.New("start port 0 must be positive")
	err := &UsageError{Message: "Invalid or missing port range.", Err: inner}

	assert.Contains(t, err.Error(), "Invalid or missing port range.")
	assert.ErrorIs(t, err, inner)

	wrapped := fmt.Errorf("parse: %w", err)
	assert.True(t, IsUsageError(wrapped))
	assert.False(t, IsUsageError(inner))
}

// TestCLIError tests the CLIError type's Error() and Unwrap() methods.
func TestCLIError(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := NewCLIError(ExitUsage, "bad arguments")
		assert.Equal(t, "bad arguments", err.Error())
		assert.Equal(t, ExitUsage, err.Code)
		assert.Nil(t, err.Unwrap())
	})

	t.Run("with underlying error", func(t *testing.T) {
		underlying := errors.New("invalid prefix")
		err := WrapCLIError(ExitInvalidCIDR, "invalid CIDR", underlying)
		assert.Equal(t, "invalid CIDR: invalid prefix", err.Error())
		assert.Equal(t, ExitInvalidCIDR, err.Code)
		assert.ErrorIs(t, err, underlying)
	})
}
