// Package buildctx reconstructs a project's working state from its message
// history so a new agent run can continue where the previous one stopped.
package buildctx

import (
	"context"
	"fmt"
	"strings"

	"github.com/appforge-io/appforge-backend/internal/projects/domain"
)

// DefaultWindow bounds how many recent turns are considered.
const DefaultWindow = 20

const previewLen = 80

// MessageStore is the slice of the history store the builder needs.
type MessageStore interface {
	RecentWindow(ctx context.Context, projectID string, limit int) ([]domain.Message, error)
}

// ProjectContext is the derived, non-persisted briefing for one agent run.
type ProjectContext struct {
	ConversationHistory string
	CurrentFiles        domain.FileSet
	ProjectSummary      string
	DevelopmentHistory  string
	HasContext          bool
}

type Builder struct {
	store      MessageStore
	classifier Classifier
	window     int
}

func NewBuilder(store MessageStore, classifier Classifier, window int) *Builder {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Builder{store: store, classifier: classifier, window: window}
}

// Build fetches the recent window and derives the context. A project with
// zero or one turn has no prior state to carry, so it yields an empty
// context with HasContext false. Storage errors propagate unmodified.
func (b *Builder) Build(ctx context.Context, projectID string) (*ProjectContext, error) {
	messages, err := b.store.RecentWindow(ctx, projectID, b.window)
	if err != nil {
		return nil, err
	}

	if len(messages) <= 1 {
		return &ProjectContext{}, nil
	}

	return &ProjectContext{
		ConversationHistory: transcript(messages),
		CurrentFiles:        latestSnapshot(messages),
		ProjectSummary:      b.summarize(messages),
		DevelopmentHistory:  developmentHistory(messages),
		HasContext:          true,
	}, nil
}

func transcript(messages []domain.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n\n")
}

// latestSnapshot picks the fragment of the chronologically last
// ASSISTANT/RESULT turn. Snapshots are complete, so earlier fragments are
// never merged in.
func latestSnapshot(messages []domain.Message) domain.FileSet {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.IsResult() && m.Fragment != nil {
			return m.Fragment.Files
		}
	}
	return nil
}

func (b *Builder) summarize(messages []domain.Message) string {
	var firstRequest string
	userTexts := []string{}
	for _, m := range messages {
		if m.Role != domain.RoleUser {
			continue
		}
		if firstRequest == "" {
			firstRequest = m.Content
		}
		userTexts = append(userTexts, m.Content)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Project type: %s\n", b.classifier.Classify(firstRequest))
	fmt.Fprintf(&sb, "Original request: %s\n", truncate(firstRequest, previewLen))
	fmt.Fprintf(&sb, "Requested features: %s", strings.Join(extractFeatures(userTexts), ", "))
	return sb.String()
}

func developmentHistory(messages []domain.Message) string {
	lines := []string{}
	step := 0
	for _, m := range messages {
		switch {
		case m.Role == domain.RoleUser:
			step++
			lines = append(lines, fmt.Sprintf("Step %d — user requested: %s", step, truncate(m.Content, previewLen)))
		case m.IsResult():
			count := 0
			if m.Fragment != nil {
				count = len(m.Fragment.Files)
			}
			lines = append(lines, fmt.Sprintf("Step %d — assistant delivered %d file(s)", step, count))
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
