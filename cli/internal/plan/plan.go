// Package plan models the advisor's grouping output and validates it
// against the parsed hunk set before the engine touches the repository.
// The validation is strict on purpose: every advisor-referenced id must be
// known, no id may appear twice, and every parsed hunk must be covered.
// Silently sweeping leftovers into a misc commit would break the rule that
// every commit has a rationale.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"smartsquash/cli/internal/diff"
)

// Group is one intended commit: a message plus the ids of the hunks it
// gathers. Produced by the advisor, immutable afterwards.
type Group struct {
	Message   string   `json:"message"`
	HunkIDs   []string `json:"hunk_ids"`
	Rationale string   `json:"rationale,omitempty"`
}

// UnknownHunkError is returned when a group references an id absent from
// the parsed set.
type UnknownHunkError struct {
	ID string
}

func (e *UnknownHunkError) Error() string {
	return fmt.Sprintf("grouping references unknown hunk %s", e.ID)
}

// DuplicateHunkError is returned when an id appears in two groups (or twice
// in one).
type DuplicateHunkError struct {
	ID string
}

func (e *DuplicateHunkError) Error() string {
	return fmt.Sprintf("hunk %s assigned to more than one commit", e.ID)
}

// IncompletePartitionError is returned when parsed hunks are missing from
// every group.
type IncompletePartitionError struct {
	IDs []string
}

func (e *IncompletePartitionError) Error() string {
	return fmt.Sprintf("grouping leaves %d hunk(s) unassigned: %s", len(e.IDs), strings.Join(e.IDs, ", "))
}

// Validate checks that groups form an exact partition of hunks. The first
// violated rule wins: unknown id, then duplicate id, then uncovered hunks.
// Groups with empty messages are rejected too; a commit without a message
// is never intended.
func Validate(groups []Group, hunks []diff.Hunk) error {
	known := diff.ByID(hunks)
	assigned := make(map[string]bool, len(known))
	for _, g := range groups {
		if strings.TrimSpace(g.Message) == "" {
			return fmt.Errorf("group with hunks %v has an empty commit message", g.HunkIDs)
		}
		for _, id := range g.HunkIDs {
			if _, ok := known[id]; !ok {
				return &UnknownHunkError{ID: id}
			}
			if assigned[id] {
				return &DuplicateHunkError{ID: id}
			}
			assigned[id] = true
		}
	}
	var missing []string
	for id := range known {
		if !assigned[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &IncompletePartitionError{IDs: missing}
	}
	return nil
}

// Resolve maps a group's ids to their hunks, ordered by file appearance in
// the parsed diff and old_start within a file, so downstream stages see the
// engine's canonical ordering regardless of how the advisor listed ids.
// Callers must Validate first; an unknown id here is a programming error.
func Resolve(g Group, hunks []diff.Hunk) ([]diff.Hunk, error) {
	wanted := make(map[string]bool, len(g.HunkIDs))
	for _, id := range g.HunkIDs {
		wanted[id] = true
	}
	out := make([]diff.Hunk, 0, len(g.HunkIDs))
	for _, h := range hunks {
		if wanted[h.ID] {
			out = append(out, h)
			delete(wanted, h.ID)
		}
	}
	if len(wanted) > 0 {
		for id := range wanted {
			return nil, &UnknownHunkError{ID: id}
		}
	}
	return out, nil
}
