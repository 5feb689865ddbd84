package advisor

import (
	"fmt"
	"strings"

	"smartsquash/cli/internal/diff"
)

// PromptRequest carries everything the grouping prompt is built from.
type PromptRequest struct {
	Diff         string
	Hunks        []diff.Hunk
	Instructions string // optional user guidance, passed through verbatim
}

// promptHeader states the task and the strict output contract. The id list
// in the inventory is the same id format the engine parses back out, so the
// model never has to invent identifiers.
const promptHeader = `You are reorganizing a messy git branch into a small set of clean, logical commits.

Below is the complete diff between the base and the branch tip, split into hunks. Each hunk has an id of the form "file:start-end".

Partition ALL hunk ids into commits. Rules:
- Every hunk id must appear in exactly one commit.
- Group related changes together (one feature, fix, or refactor per commit).
- Hunks from the same file may go into different commits only when they are independent changes.
- Write each commit message in conventional commit style: a short imperative subject, optionally followed by a blank line and a body.

Respond with only a JSON object of the form:
{"commits": [{"message": "...", "hunk_ids": ["file:1-3", ...], "rationale": "..."}]}
No other text, no markdown fences.`

// BuildPrompt renders the grouping prompt: task header, optional user
// instructions, the hunk inventory, and the raw diff.
func BuildPrompt(req PromptRequest) string {
	var sb strings.Builder
	sb.WriteString(promptHeader)
	if s := strings.TrimSpace(req.Instructions); s != "" {
		sb.WriteString("\n\nAdditional instructions from the user:\n")
		sb.WriteString(s)
	}
	sb.WriteString("\n\nHunk inventory:\n")
	for _, h := range req.Hunks {
		fmt.Fprintf(&sb, "- %s (%s, %+d lines)\n", h.ID, h.Kind, h.LineDelta())
	}
	sb.WriteString("\nFull diff:\n")
	sb.WriteString(req.Diff)
	return sb.String()
}
