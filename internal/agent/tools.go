package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/appforge-io/appforge-backend/internal/llm"
	"github.com/appforge-io/appforge-backend/internal/sandbox"
)

// Toolset binds the fixed tool handlers to one run's sandbox and state.
// Every handler converts its failures to a string result; errors never cross
// the tool boundary, the model is expected to read them and adapt.
type Toolset struct {
	handle sandbox.Handle
	state  *RunState
}

func NewToolset(handle sandbox.Handle, state *RunState) *Toolset {
	return &Toolset{handle: handle, state: state}
}

type filePayload struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Definitions describes the toolset to the model.
func (t *Toolset) Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        "terminal",
			Description: "Run a shell command in the sandbox and return its output.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command": map[string]any{"type": "string", "description": "The command to run."},
				},
				"required": []string{"command"},
			},
		},
		{
			Name:        "create_or_update_files",
			Description: "Write complete file contents into the sandbox. Existing files are overwritten.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"files": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"path":    map[string]any{"type": "string"},
								"content": map[string]any{"type": "string"},
							},
							"required": []string{"path", "content"},
						},
					},
				},
				"required": []string{"files"},
			},
		},
		{
			Name:        "read_files",
			Description: "Read files from the sandbox and return their contents.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paths": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required": []string{"paths"},
			},
		},
	}
}

// Dispatch routes one tool call and returns the result string plus whether
// it represents an error.
func (t *Toolset) Dispatch(ctx context.Context, call llm.ToolCall) (string, bool) {
	switch call.Name {
	case "terminal":
		return t.terminal(ctx, call.Arguments)
	case "create_or_update_files":
		return t.createOrUpdateFiles(ctx, call.Arguments)
	case "read_files":
		return t.readFiles(ctx, call.Arguments)
	default:
		return fmt.Sprintf("Unknown tool: %s", call.Name), true
	}
}

func (t *Toolset) terminal(ctx context.Context, raw json.RawMessage) (string, bool) {
	var args struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(raw, &args); err != nil || strings.TrimSpace(args.Command) == "" {
		return "Invalid arguments: terminal requires a command string.", true
	}

	result, err := t.handle.RunCommand(ctx, args.Command)
	if err != nil {
		if IsConnectivityError(err) {
			return RetryHint, true
		}
		var cmdErr *sandbox.CommandError
		if errors.As(err, &cmdErr) {
			return fmt.Sprintf("Command failed: %v\nstdout: %s\nstderr: %s", err, cmdErr.Stdout, cmdErr.Stderr), true
		}
		return fmt.Sprintf("Command failed: %v", err), true
	}
	return result.Stdout, false
}

func (t *Toolset) createOrUpdateFiles(ctx context.Context, raw json.RawMessage) (string, bool) {
	var args struct {
		Files []filePayload `json:"files"`
	}
	if err := json.Unmarshal(raw, &args); err != nil || len(args.Files) == 0 {
		return "Invalid arguments: create_or_update_files requires a non-empty files array.", true
	}

	// Write everything first; the accumulator only absorbs the batch when
	// the whole write phase succeeded, so a mid-batch failure cannot leave
	// it claiming files the sandbox never received.
	for _, f := range args.Files {
		if err := t.handle.WriteFile(ctx, f.Path, f.Content); err != nil {
			if IsConnectivityError(err) {
				return RetryHint, true
			}
			return fmt.Sprintf("Failed to write %s: %v", f.Path, err), true
		}
	}

	merged := make(map[string]string, len(args.Files))
	for _, f := range args.Files {
		merged[f.Path] = f.Content
	}
	t.state.MergeFiles(merged)

	return fmt.Sprintf("Created or updated %d file(s).", len(args.Files)), false
}

func (t *Toolset) readFiles(ctx context.Context, raw json.RawMessage) (string, bool) {
	var args struct {
		Paths []string `json:"paths"`
	}
	if err := json.Unmarshal(raw, &args); err != nil || len(args.Paths) == 0 {
		return "Invalid arguments: read_files requires a non-empty paths array.", true
	}

	out := make([]filePayload, 0, len(args.Paths))
	for _, path := range args.Paths {
		content, err := t.handle.ReadFile(ctx, path)
		if err != nil {
			if IsConnectivityError(err) {
				return RetryHint, true
			}
			return fmt.Sprintf("Failed to read %s: %v", path, err), true
		}
		out = append(out, filePayload{Path: path, Content: content})
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("Failed to encode file contents: %v", err), true
	}
	return string(encoded), false
}
