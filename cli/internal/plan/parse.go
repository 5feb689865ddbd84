package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse unmarshals the advisor's answer into groups. Models answer
// in a few shapes: a bare JSON array of groups, a {"commits": [...]} wrapper,
// or either of those inside a fenced code block. Anything else is an error;
// there is no lenient re-prompting at this layer.
func ParseResponse(text string) ([]Group, error) {
	body := strings.TrimSpace(stripFence(text))
	if body == "" {
		return nil, fmt.Errorf("parse grouping: empty response")
	}

	var groups []Group
	if err := json.Unmarshal([]byte(body), &groups); err == nil {
		return checkShape(groups)
	}

	var wrapper struct {
		Commits []Group `json:"commits"`
	}
	if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
		return nil, fmt.Errorf("parse grouping: %w", err)
	}
	if wrapper.Commits == nil {
		return nil, fmt.Errorf(`parse grouping: expected a JSON array or a {"commits": [...]} object`)
	}
	return checkShape(wrapper.Commits)
}

func checkShape(groups []Group) ([]Group, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("parse grouping: no commits in response")
	}
	for i, g := range groups {
		if len(g.HunkIDs) == 0 {
			return nil, fmt.Errorf("parse grouping: commit %d (%q) lists no hunk ids", i+1, g.Message)
		}
	}
	return groups, nil
}

// stripFence removes a surrounding markdown code fence (``` or ```json)
// when the whole response is wrapped in one.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
