package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appforge-io/appforge-backend/internal/buildctx"
	"github.com/appforge-io/appforge-backend/internal/projects/domain"
)

func TestCompose_NoContext(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		assert.Equal(t, BaseInstructions, Compose(BaseInstructions, nil))
	})

	t.Run("empty context", func(t *testing.T) {
		got := Compose(BaseInstructions, &buildctx.ProjectContext{})
		assert.Equal(t, BaseInstructions, got)
	})
}

func TestCompose_WithContext(t *testing.T) {
	pctx := &buildctx.ProjectContext{
		ConversationHistory: "USER: build a blog",
		CurrentFiles:        domain.FileSet{"app/page.tsx": "x", "app/layout.tsx": "y"},
		ProjectSummary:      "Project type: content management system",
		DevelopmentHistory:  "Step 1 — user requested: build a blog",
		HasContext:          true,
	}

	got := Compose(BaseInstructions, pctx)

	assert.True(t, strings.HasPrefix(got, BaseInstructions))
	assert.Contains(t, got, "=== PROJECT CONTEXT ===")
	assert.Contains(t, got, "=== END PROJECT CONTEXT ===")
	assert.Contains(t, got, pctx.ProjectSummary)
	assert.Contains(t, got, pctx.ConversationHistory)
	assert.Contains(t, got, pctx.DevelopmentHistory)

	t.Run("file listing is sorted with a count", func(t *testing.T) {
		assert.Contains(t, got, "2 file(s):")
		assert.Less(t, strings.Index(got, "- app/layout.tsx"), strings.Index(got, "- app/page.tsx"))
	})

	t.Run("directives are numbered and ordered", func(t *testing.T) {
		assert.Contains(t, got, "1. Inspect the existing files with read_files before modifying them.")
		assert.Contains(t, got, "2. Prefer incremental modification")
		assert.Contains(t, got, "3. Preserve all previously delivered functionality")
	})
}

func TestCompose_EmptySnapshot(t *testing.T) {
	pctx := &buildctx.ProjectContext{HasContext: true}
	got := Compose(BaseInstructions, pctx)
	assert.Contains(t, got, NoExistingFiles)
}
