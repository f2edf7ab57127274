// Package llm is a thin completion client over gollm: system instructions
// plus a running transcript in, assistant text and parsed tool calls out.
package llm

import (
	"context"
	"encoding/json"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one transcript entry sent to the model.
type Message struct {
	Role    Role
	Content string
	// IsError marks a tool-result message that carries an error string.
	IsError bool
}

// ToolDefinition describes a callable tool to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Response is one assistant turn: free text and/or tool calls.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Request carries everything for one completion.
type Request struct {
	Instructions string
	Messages     []Message
	Tools        []ToolDefinition
}

// Client produces assistant turns. Implementations must be safe for
// sequential reuse within a run.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
