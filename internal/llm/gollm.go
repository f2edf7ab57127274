package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmClient implements Client on top of a gollm.LLM instance.
type GollmClient struct {
	llm gollm.LLM
}

// NewGollmClient builds a gollm-backed client for the given provider. An
// empty model or API key defers to gollm's own defaults and environment
// lookup.
func NewGollmClient(provider, model, apiKey string) (*GollmClient, error) {
	opts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetMaxTokens(8192),
		gollm.SetTemperature(0.7),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if model != "" {
		opts = append(opts, gollm.SetModel(model))
	}
	if apiKey != "" {
		opts = append(opts, gollm.SetAPIKey(apiKey))
	}

	l, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm LLM for provider %s: %w", provider, err)
	}
	return &GollmClient{llm: l}, nil
}

func (c *GollmClient) Complete(ctx context.Context, req Request) (*Response, error) {
	prompt := c.translateRequest(req)

	text, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	toolCalls := parseToolCalls(text)
	return &Response{
		Text:      stripToolCallJSON(text, toolCalls),
		ToolCalls: toolCalls,
	}, nil
}

// translateRequest flattens the transcript into a single gollm prompt, with
// role prefixes for non-user entries.
func (c *GollmClient) translateRequest(req Request) *gollm.Prompt {
	parts := make([]string, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleUser:
			parts = append(parts, msg.Content)
		case RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		case RoleTool:
			prefix := "[Tool Result]"
			if msg.IsError {
				prefix = "[Tool Error]"
			}
			parts = append(parts, prefix+": "+msg.Content)
		}
	}

	promptText := strings.Join(parts, "\n")
	if promptText == "" {
		promptText = "Begin."
	}

	promptOpts := []gollm.PromptOption{}
	if req.Instructions != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(strings.TrimSpace(req.Instructions), gollm.CacheTypeEphemeral))
	}

	if len(req.Tools) > 0 {
		tools := make([]gollm.Tool, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		promptOpts = append(promptOpts, gollm.WithTools(tools))
		promptOpts = append(promptOpts, gollm.WithToolChoice("auto"))
	}

	return gollm.NewPrompt(promptText, promptOpts...)
}

// parseToolCalls extracts tool calls that gollm returns embedded in the
// generated text as a JSON array of {"name": ..., "arguments": {...}}.
func parseToolCalls(text string) []ToolCall {
	type rawCall struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	var rawCalls []rawCall

	// The block may trail prose, so decode from the marker and ignore the rest.
	if start := strings.Index(text, `{"tool_calls"`); start != -1 {
		var wrapper struct {
			ToolCalls []rawCall `json:"tool_calls"`
		}
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&wrapper); err != nil {
			return nil
		}
		rawCalls = wrapper.ToolCalls
	} else if start := strings.Index(text, `[{"name"`); start != -1 {
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&rawCalls); err != nil {
			return nil
		}
	} else {
		return nil
	}

	calls := make([]ToolCall, 0, len(rawCalls))
	for _, rc := range rawCalls {
		calls = append(calls, ToolCall{
			ID:        "call_" + uuid.New().String()[:8],
			Name:      rc.Name,
			Arguments: rc.Arguments,
		})
	}
	return calls
}

// stripToolCallJSON removes the parsed tool-call block from the text so the
// remaining prose can be inspected on its own.
func stripToolCallJSON(text string, calls []ToolCall) string {
	if len(calls) == 0 {
		return text
	}
	result := text
	for _, pattern := range []string{`{"tool_calls"`, `[{"name"`} {
		if idx := strings.Index(result, pattern); idx != -1 {
			result = strings.TrimSpace(result[:idx])
		}
	}
	return result
}
