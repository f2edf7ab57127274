package buildctx

import "strings"

// Classifier infers a project category from the user's original request.
// The keyword table below is the default implementation; a learned or
// configurable classifier can be swapped in without touching the builder.
type Classifier interface {
	Classify(text string) string
}

type category struct {
	Label    string
	Keywords []string
}

// KeywordClassifier matches against a fixed keyword table, first match wins.
type KeywordClassifier struct {
	categories []category
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		categories: []category{
			{"streaming/media platform", []string{"stream", "video", "music", "media", "player", "netflix", "spotify"}},
			{"analytics dashboard", []string{"dashboard", "analytics", "chart", "metric", "admin panel"}},
			{"task management app", []string{"todo", "task", "kanban", "project management"}},
			{"content management system", []string{"blog", "cms", "article", "content site"}},
			{"e-commerce store", []string{"shop", "store", "cart", "ecommerce", "e-commerce", "marketplace"}},
			{"communication platform", []string{"chat", "messag", "forum", "social"}},
			{"portfolio site", []string{"portfolio", "resume", "landing page"}},
		},
	}
}

// DefaultCategory is returned when no keyword matches.
const DefaultCategory = "web application"

func (c *KeywordClassifier) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				return cat.Label
			}
		}
	}
	return DefaultCategory
}

// featureRule maps actionable request keywords to a feature label.
type featureRule struct {
	Keywords []string
	Label    string
}

var featureRules = []featureRule{
	{[]string{"page"}, "Additional pages"},
	{[]string{"component"}, "Custom components"},
	{[]string{"feature"}, "New features"},
	{[]string{"auth"}, "Authentication"},
	{[]string{"database", "api"}, "Data and API integration"},
	{[]string{"style"}, "Styling updates"},
}

// DefaultFeature labels a project whose user turns never asked for anything
// beyond the first build.
const DefaultFeature = "Initial build only"

// extractFeatures scans user turns for add/create requests and collects the
// matching feature labels, de-duplicated and in rule order.
func extractFeatures(userTexts []string) []string {
	seen := map[string]bool{}
	for _, text := range userTexts {
		lower := strings.ToLower(text)
		if !strings.Contains(lower, "add") && !strings.Contains(lower, "create") {
			continue
		}
		for _, rule := range featureRules {
			for _, kw := range rule.Keywords {
				if strings.Contains(lower, kw) {
					seen[rule.Label] = true
					break
				}
			}
		}
	}

	out := []string{}
	for _, rule := range featureRules {
		if seen[rule.Label] {
			out = append(out, rule.Label)
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultFeature)
	}
	return out
}
