// Package sandbox manages the remote, time-limited execution environments
// that run commands and host files for generated applications. The remote
// service is a black box reached through its HTTP control plane; this
// package owns only the opaque identifier and an expiry estimate.
package sandbox

import (
	"context"
	"fmt"
)

// CommandResult holds the captured output of one remote command.
type CommandResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// CommandError is returned when a command ran but failed. The captured
// buffers travel with the error so callers can surface them to the model.
type CommandError struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.ExitCode)
}

// Handle is a live connection to one sandbox.
type Handle interface {
	ID() string
	RunCommand(ctx context.Context, command string) (*CommandResult, error)
	WriteFile(ctx context.Context, path, content string) error
	ReadFile(ctx context.Context, path string) (string, error)
	// PublicHost maps an internal port to the public hostname. Computed
	// locally, no network call.
	PublicHost(port int) string
}

// Provider creates sandboxes and re-establishes connections to known ones.
type Provider interface {
	Create(ctx context.Context, template string) (Handle, error)
	Connect(ctx context.Context, id string) (Handle, error)
}
