package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the sandbox service's HTTP control plane.
type Client struct {
	BaseURL       string
	APIKey        string
	PreviewDomain string
	HTTP          *http.Client
}

func NewClient(baseURL, apiKey, previewDomain string) *Client {
	return &Client{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		PreviewDomain: previewDomain,
		HTTP:          &http.Client{Timeout: 120 * time.Second},
	}
}

type sandboxInfo struct {
	ID string `json:"id"`
}

// Create provisions a new sandbox from the given template.
func (c *Client) Create(ctx context.Context, template string) (Handle, error) {
	body := map[string]string{"template": template}
	var info sandboxInfo
	if err := c.do(ctx, http.MethodPost, "/v1/sandboxes", body, &info); err != nil {
		return nil, fmt.Errorf("create sandbox: %w", err)
	}
	return &httpHandle{client: c, id: info.ID}, nil
}

// Connect re-establishes a connection to a known sandbox. Any failure
// (gone, expired, unreachable) surfaces as an error; the caller decides
// whether to recreate.
func (c *Client) Connect(ctx context.Context, id string) (Handle, error) {
	var info sandboxInfo
	if err := c.do(ctx, http.MethodPost, "/v1/sandboxes/"+id+"/connect", nil, &info); err != nil {
		return nil, fmt.Errorf("connect sandbox %s: %w", id, err)
	}
	return &httpHandle{client: c, id: info.ID}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("sandbox not found (status 404)")
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sandbox service error (status %d): %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// httpHandle routes Handle operations through the control plane.
type httpHandle struct {
	client *Client
	id     string
}

func (h *httpHandle) ID() string { return h.id }

func (h *httpHandle) RunCommand(ctx context.Context, command string) (*CommandResult, error) {
	body := map[string]string{"command": command}
	var result CommandResult
	if err := h.client.do(ctx, http.MethodPost, "/v1/sandboxes/"+h.id+"/exec", body, &result); err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return &result, &CommandError{Stdout: result.Stdout, Stderr: result.Stderr, ExitCode: result.ExitCode}
	}
	return &result, nil
}

func (h *httpHandle) WriteFile(ctx context.Context, path, content string) error {
	body := map[string]string{"path": path, "content": content}
	return h.client.do(ctx, http.MethodPut, "/v1/sandboxes/"+h.id+"/files", body, nil)
}

func (h *httpHandle) ReadFile(ctx context.Context, path string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	p := "/v1/sandboxes/" + h.id + "/files?path=" + url.QueryEscape(path)
	if err := h.client.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// PublicHost follows the provider's host mapping scheme:
// <port>-<sandbox id>.<preview domain>.
func (h *httpHandle) PublicHost(port int) string {
	return fmt.Sprintf("%d-%s.%s", port, h.id, h.client.PreviewDomain)
}
