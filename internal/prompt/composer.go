// Package prompt assembles the system instructions for one agent run.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/appforge-io/appforge-backend/internal/buildctx"
)

// NoExistingFiles is the literal sentence used when the snapshot is empty.
const NoExistingFiles = "No existing files in the project."

// directives tell the model how to behave on an existing project. Order is
// fixed and meaningful.
var directives = []string{
	"Inspect the existing files with read_files before modifying them.",
	"Prefer incremental modification of existing files over regenerating the project from scratch.",
	"Preserve all previously delivered functionality unless the user explicitly asks to remove it.",
}

// Compose merges the base instructions with the optional project context.
// Without context the base instructions are returned unmodified; with
// context a delimited block is appended after them.
func Compose(base string, pctx *buildctx.ProjectContext) string {
	if pctx == nil || !pctx.HasContext {
		return base
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n=== PROJECT CONTEXT ===\n")
	sb.WriteString("You are continuing work on an existing project.\n\n")

	sb.WriteString("## Project summary\n")
	sb.WriteString(pctx.ProjectSummary)
	sb.WriteString("\n\n## Conversation so far\n")
	sb.WriteString(pctx.ConversationHistory)

	sb.WriteString("\n\n## Current files\n")
	sb.WriteString(fileListing(pctx.CurrentFiles))

	sb.WriteString("\n\n## Development history\n")
	sb.WriteString(pctx.DevelopmentHistory)

	sb.WriteString("\n\n## Directives\n")
	for i, d := range directives {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, d)
	}
	sb.WriteString("=== END PROJECT CONTEXT ===")

	return sb.String()
}

func fileListing(files map[string]string) string {
	if len(files) == 0 {
		return NoExistingFiles
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d file(s):\n", len(paths))
	for _, p := range paths {
		sb.WriteString("- ")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
