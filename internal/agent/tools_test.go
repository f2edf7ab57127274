package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-io/appforge-backend/internal/llm"
	"github.com/appforge-io/appforge-backend/internal/sandbox"
)

// scriptedHandle fakes one sandbox for tool tests.
type scriptedHandle struct {
	id string

	runResult *sandbox.CommandResult
	runErr    error
	runCmds   []string

	files      map[string]string
	writeErr   error
	writeFails map[string]error
	readErr    error
}

func newScriptedHandle() *scriptedHandle {
	return &scriptedHandle{id: "sbx-test", files: map[string]string{}}
}

func (h *scriptedHandle) ID() string { return h.id }

func (h *scriptedHandle) RunCommand(_ context.Context, command string) (*sandbox.CommandResult, error) {
	h.runCmds = append(h.runCmds, command)
	if h.runErr != nil {
		return h.runResult, h.runErr
	}
	if h.runResult != nil {
		return h.runResult, nil
	}
	return &sandbox.CommandResult{Stdout: "ok"}, nil
}

func (h *scriptedHandle) WriteFile(_ context.Context, path, content string) error {
	if err, ok := h.writeFails[path]; ok {
		return err
	}
	if h.writeErr != nil {
		return h.writeErr
	}
	h.files[path] = content
	return nil
}

func (h *scriptedHandle) ReadFile(_ context.Context, path string) (string, error) {
	if h.readErr != nil {
		return "", h.readErr
	}
	return h.files[path], nil
}

func (h *scriptedHandle) PublicHost(port int) string { return "host" }

func call(name, args string) llm.ToolCall {
	return llm.ToolCall{Name: name, Arguments: json.RawMessage(args)}
}

func TestToolset_Definitions(t *testing.T) {
	ts := NewToolset(newScriptedHandle(), NewRunState())
	defs := ts.Definitions()
	require.Len(t, defs, 3)

	names := []string{defs[0].Name, defs[1].Name, defs[2].Name}
	assert.Equal(t, []string{"terminal", "create_or_update_files", "read_files"}, names)
}

func TestToolset_Terminal(t *testing.T) {
	t.Run("success returns stdout", func(t *testing.T) {
		h := newScriptedHandle()
		h.runResult = &sandbox.CommandResult{Stdout: "v20.11.0\n"}
		ts := NewToolset(h, NewRunState())

		out, isErr := ts.Dispatch(context.Background(), call("terminal", `{"command": "node --version"}`))
		assert.False(t, isErr)
		assert.Equal(t, "v20.11.0\n", out)
		assert.Equal(t, []string{"node --version"}, h.runCmds)
	})

	t.Run("connectivity failure yields the retry hint", func(t *testing.T) {
		h := newScriptedHandle()
		h.runErr = errors.New("dial tcp: connection refused")
		ts := NewToolset(h, NewRunState())

		out, isErr := ts.Dispatch(context.Background(), call("terminal", `{"command": "npm install"}`))
		assert.True(t, isErr)
		assert.Equal(t, RetryHint, out)
	})

	t.Run("command failure carries both buffers", func(t *testing.T) {
		h := newScriptedHandle()
		h.runResult = &sandbox.CommandResult{Stdout: "partial", Stderr: "module not found", ExitCode: 1}
		h.runErr = &sandbox.CommandError{Stdout: "partial", Stderr: "module not found", ExitCode: 1}
		ts := NewToolset(h, NewRunState())

		out, isErr := ts.Dispatch(context.Background(), call("terminal", `{"command": "npm run build"}`))
		assert.True(t, isErr)
		assert.Contains(t, out, "stdout: partial")
		assert.Contains(t, out, "stderr: module not found")
	})

	t.Run("missing command is rejected", func(t *testing.T) {
		ts := NewToolset(newScriptedHandle(), NewRunState())
		out, isErr := ts.Dispatch(context.Background(), call("terminal", `{}`))
		assert.True(t, isErr)
		assert.Contains(t, out, "Invalid arguments")
	})
}

func TestToolset_CreateOrUpdateFiles(t *testing.T) {
	t.Run("writes then merges the batch", func(t *testing.T) {
		h := newScriptedHandle()
		state := NewRunState()
		ts := NewToolset(h, state)

		out, isErr := ts.Dispatch(context.Background(), call("create_or_update_files",
			`{"files": [{"path": "a.txt", "content": "1"}, {"path": "b.txt", "content": "2"}]}`))
		assert.False(t, isErr)
		assert.Contains(t, out, "2 file(s)")
		assert.Equal(t, "1", h.files["a.txt"])
		assert.Equal(t, 2, state.FileCount())
	})

	t.Run("mid-batch failure leaves the accumulator untouched", func(t *testing.T) {
		h := newScriptedHandle()
		h.writeFails = map[string]error{"b.txt": errors.New("permission denied")}
		state := NewRunState()
		ts := NewToolset(h, state)

		out, isErr := ts.Dispatch(context.Background(), call("create_or_update_files",
			`{"files": [{"path": "a.txt", "content": "1"}, {"path": "b.txt", "content": "2"}]}`))
		assert.True(t, isErr)
		assert.Contains(t, out, "Failed to write b.txt")
		assert.Zero(t, state.FileCount())
	})

	t.Run("connectivity failure yields the retry hint", func(t *testing.T) {
		h := newScriptedHandle()
		h.writeErr = errors.New("write: broken pipe")
		state := NewRunState()
		ts := NewToolset(h, state)

		out, isErr := ts.Dispatch(context.Background(), call("create_or_update_files",
			`{"files": [{"path": "a.txt", "content": "1"}]}`))
		assert.True(t, isErr)
		assert.Equal(t, RetryHint, out)
		assert.Zero(t, state.FileCount())
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		ts := NewToolset(newScriptedHandle(), NewRunState())
		out, isErr := ts.Dispatch(context.Background(), call("create_or_update_files", `{"files": []}`))
		assert.True(t, isErr)
		assert.Contains(t, out, "Invalid arguments")
	})
}

func TestToolset_ReadFiles(t *testing.T) {
	t.Run("returns path and content pairs", func(t *testing.T) {
		h := newScriptedHandle()
		h.files["app/page.tsx"] = "export default Page"
		ts := NewToolset(h, NewRunState())

		out, isErr := ts.Dispatch(context.Background(), call("read_files", `{"paths": ["app/page.tsx"]}`))
		assert.False(t, isErr)

		var payload []struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &payload))
		require.Len(t, payload, 1)
		assert.Equal(t, "app/page.tsx", payload[0].Path)
		assert.Equal(t, "export default Page", payload[0].Content)
	})

	t.Run("read failure reports the path", func(t *testing.T) {
		h := newScriptedHandle()
		h.readErr = errors.New("is a directory")
		ts := NewToolset(h, NewRunState())

		out, isErr := ts.Dispatch(context.Background(), call("read_files", `{"paths": ["app"]}`))
		assert.True(t, isErr)
		assert.Contains(t, out, "Failed to read app")
	})
}

func TestToolset_UnknownTool(t *testing.T) {
	ts := NewToolset(newScriptedHandle(), NewRunState())
	out, isErr := ts.Dispatch(context.Background(), call("delete_everything", `{}`))
	assert.True(t, isErr)
	assert.Contains(t, out, "Unknown tool")
}
