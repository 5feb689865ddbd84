// Package diff decomposes unified git diff output into independently
// addressable hunks. Each hunk carries a stable id, its pre/post line
// ranges, the literal body lines, and the file header block it belongs to,
// so later stages can resynthesize valid patches from any subset.
//
// # Hunk ids
// The id format "<path>:<old_start>-<old_end>" is the contract with the
// grouping advisor: ids are emitted into the prompt and parsed back out of
// the advisor's answer, so both sides must agree byte-for-byte.
//
// # Binary files
// A binary change becomes one synthetic hunk of kind Binary whose body is
// the verbatim "GIT binary patch" block (the diff must be produced with
// --binary). It is re-emitted untouched, never reflowed.
//
// # Empty diff
// Parsing an empty or whitespace-only diff returns a nil slice and no error.
package diff

import (
	"fmt"
	"strconv"
)

// Kind classifies what a hunk does to its file.
type Kind string

const (
	Modify     Kind = "modify"
	AddFile    Kind = "add_file"
	DeleteFile Kind = "delete_file"
	Rename     Kind = "rename"
	Binary     Kind = "binary"
)

// Hunk is one contiguous change region in one file. Immutable after parse.
type Hunk struct {
	ID       string
	FilePath string // relative to repo root, exactly as in the diff header
	Kind     Kind

	OldStart, OldCount int // pre-image line range; zero OldCount for pure additions
	NewStart, NewCount int // post-image line range

	// Body holds the literal hunk lines (prefixed " ", "+", "-", or the
	// "\ No newline at end of file" marker). Empty for zero-body hunks
	// (pure rename, empty file creation/deletion).
	Body []string

	// FileHeader is the literal diff --git / index / --- / +++ block for
	// this hunk's file, re-emitted verbatim when synthesizing patches.
	FileHeader []string
}

// LineDelta is the signed line-count change this hunk applies to its file.
func (h Hunk) LineDelta() int { return h.NewCount - h.OldCount }

// OldEnd is the last pre-image line the hunk covers. Zero-length hunks
// report their start line so ids stay well-formed.
func (h Hunk) OldEnd() int {
	count := h.OldCount
	if count < 1 {
		count = 1
	}
	return h.OldStart + count - 1
}

// HunkID builds the advisor-facing id for a hunk at the given pre-image
// range: "<path>:<old_start>-<old_end>" with old_end clamped for zero-count
// hunks so "f:5-5" and never "f:5-4".
func HunkID(path string, oldStart, oldCount int) string {
	end := oldStart
	if oldCount > 1 {
		end = oldStart + oldCount - 1
	}
	return path + ":" + strconv.Itoa(oldStart) + "-" + strconv.Itoa(end)
}

// ParseError is a hard failure in the diff input. The whole run aborts
// before any mutation; there is no partial recovery.
type ParseError struct {
	Line int // 1-based line number in the diff text
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("diff parse error at line %d: %s", e.Line, e.Msg)
}

// ByID builds a lookup map from hunk id to hunk. Ids are unique per parse,
// enforced by Parse.
func ByID(hunks []Hunk) map[string]Hunk {
	m := make(map[string]Hunk, len(hunks))
	for _, h := range hunks {
		m[h.ID] = h
	}
	return m
}
