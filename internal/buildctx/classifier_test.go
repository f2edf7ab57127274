package buildctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"netflix clone", "Build me a Netflix clone with video streaming", "streaming/media platform"},
		{"admin dashboard", "I need an admin panel with charts", "analytics dashboard"},
		{"kanban board", "Create a kanban board for my team", "task management app"},
		{"blog", "A simple blog with articles", "content management system"},
		{"shop", "An online store with a cart", "e-commerce store"},
		{"chat", "Real-time chat app", "communication platform"},
		{"portfolio", "A portfolio for my photography", "portfolio site"},
		{"no match", "Something completely different", DefaultCategory},
		{"empty", "", DefaultCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestKeywordClassifier_FirstMatchWins(t *testing.T) {
	c := NewKeywordClassifier()

	// "stream" outranks "dashboard" in table order.
	got := c.Classify("a streaming dashboard")
	assert.Equal(t, "streaming/media platform", got)
}

func TestExtractFeatures(t *testing.T) {
	t.Run("requires an add or create verb", func(t *testing.T) {
		got := extractFeatures([]string{"the page is broken", "I like this component"})
		assert.Equal(t, []string{DefaultFeature}, got)
	})

	t.Run("collects matching labels in rule order", func(t *testing.T) {
		got := extractFeatures([]string{
			"add a settings page",
			"create an api for todos",
			"add some style tweaks",
		})
		assert.Equal(t, []string{"Additional pages", "Data and API integration", "Styling updates"}, got)
	})

	t.Run("deduplicates across turns", func(t *testing.T) {
		got := extractFeatures([]string{"add a page", "add another page"})
		assert.Equal(t, []string{"Additional pages"}, got)
	})

	t.Run("empty input falls back", func(t *testing.T) {
		got := extractFeatures(nil)
		assert.Equal(t, []string{DefaultFeature}, got)
	})
}
