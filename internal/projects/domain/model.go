package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

// MessageRole identifies the author of a conversation turn.
type MessageRole string

const (
	RoleUser      MessageRole = "USER"
	RoleAssistant MessageRole = "ASSISTANT"
)

// MessageType distinguishes successful results from error records.
type MessageType string

const (
	TypeResult MessageType = "RESULT"
	TypeError  MessageType = "ERROR"
)

// FileSet is a complete snapshot of generated files, path -> full content.
// Later snapshots replace earlier ones; a FileSet is never a diff.
type FileSet map[string]string

// Project is the unit of ownership for a conversation and its sandbox.
// SandboxID and SandboxExpiresAt are either both set or both null; the
// expiry is authoritative for liveness, the id alone is never trusted.
type Project struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SandboxID        *string    `json:"sandbox_id,omitempty"`
	SandboxExpiresAt *time.Time `json:"sandbox_expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Message is one immutable conversation turn, ordered by CreatedAt.
type Message struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	Role      MessageRole `json:"role"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Fragment  *Fragment   `json:"fragment,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Fragment is the build artifact attached to exactly one ASSISTANT/RESULT
// message: the full file snapshot as of that turn plus the preview URL.
// ERROR messages never carry a fragment.
type Fragment struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	Title      string    `json:"title"`
	SandboxURL string    `json:"sandbox_url"`
	Files      FileSet   `json:"files"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsResult reports whether the message is a successful assistant turn.
func (m *Message) IsResult() bool {
	return m.Role == RoleAssistant && m.Type == TypeResult
}

func NewID(prefix string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}
