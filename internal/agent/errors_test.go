package agent

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("context deadline exceeded: timeout"), true},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"econnreset", errors.New("ECONNRESET"), true},
		{"dns", errors.New("lookup sandbox.internal: no such host"), true},
		{"bad gateway", errors.New("sandbox service error (status 502): Bad Gateway"), true},
		{"service unavailable", errors.New("503 service unavailable"), true},
		{"gateway timeout", errors.New("504 gateway timeout"), true},
		{"sandbox gone", errors.New("sandbox not found (status 404)"), true},
		{"wrapped", fmt.Errorf("run command: %w", errors.New("broken pipe")), true},
		{"command failure", errors.New("command exited with code 1"), false},
		{"syntax error", errors.New("unexpected token"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestIsConnectivityError_CaseInsensitive(t *testing.T) {
	assert.True(t, IsConnectivityError(errors.New("Connection Refused")))
	assert.True(t, IsConnectivityError(errors.New("Request Timed Out")))
}
