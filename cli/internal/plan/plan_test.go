package plan

import (
	"errors"
	"testing"

	"smartsquash/cli/internal/diff"
)

func hunks(ids ...string) []diff.Hunk {
	out := make([]diff.Hunk, len(ids))
	for i, id := range ids {
		out[i] = diff.Hunk{ID: id}
	}
	return out
}

func TestValidate_ok(t *testing.T) {
	t.Parallel()
	groups := []Group{
		{Message: "one", HunkIDs: []string{"f:2-2"}},
		{Message: "two", HunkIDs: []string{"f:7-7"}},
	}
	if err := Validate(groups, hunks("f:2-2", "f:7-7")); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_unknownHunk(t *testing.T) {
	t.Parallel()
	groups := []Group{{Message: "m", HunkIDs: []string{"f:1-4"}}}
	err := Validate(groups, hunks("f:1-3", "f:10-12"))
	var unknown *UnknownHunkError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownHunkError", err)
	}
	if unknown.ID != "f:1-4" {
		t.Errorf("ID = %q, want f:1-4", unknown.ID)
	}
}

func TestValidate_duplicateHunk(t *testing.T) {
	t.Parallel()
	groups := []Group{
		{Message: "a", HunkIDs: []string{"f:1-3"}},
		{Message: "b", HunkIDs: []string{"f:1-3", "f:10-12"}},
	}
	err := Validate(groups, hunks("f:1-3", "f:10-12"))
	var dup *DuplicateHunkError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want *DuplicateHunkError", err)
	}
	if dup.ID != "f:1-3" {
		t.Errorf("ID = %q, want f:1-3", dup.ID)
	}
}

func TestValidate_incompletePartition(t *testing.T) {
	t.Parallel()
	groups := []Group{{Message: "a", HunkIDs: []string{"f:1-3"}}}
	err := Validate(groups, hunks("f:1-3", "f:10-12", "g:5-5"))
	var inc *IncompletePartitionError
	if !errors.As(err, &inc) {
		t.Fatalf("err = %v, want *IncompletePartitionError", err)
	}
	if len(inc.IDs) != 2 {
		t.Errorf("IDs = %v, want two missing ids", inc.IDs)
	}
}

func TestValidate_emptyMessage(t *testing.T) {
	t.Parallel()
	groups := []Group{{Message: "   ", HunkIDs: []string{"f:1-3"}}}
	if err := Validate(groups, hunks("f:1-3")); err == nil {
		t.Fatal("Validate accepted an empty commit message")
	}
}

func TestResolve_ordersByParsePosition(t *testing.T) {
	t.Parallel()
	parsed := hunks("a:1-1", "a:9-9", "b:3-3")
	g := Group{Message: "m", HunkIDs: []string{"b:3-3", "a:1-1"}}
	got, err := Resolve(g, parsed)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a:1-1" || got[1].ID != "b:3-3" {
		t.Errorf("Resolve order = %+v, want parse order a:1-1, b:3-3", got)
	}
}

func TestResolve_unknownID(t *testing.T) {
	t.Parallel()
	g := Group{Message: "m", HunkIDs: []string{"nope:1-1"}}
	if _, err := Resolve(g, hunks("a:1-1")); err == nil {
		t.Fatal("Resolve accepted an unknown id")
	}
}
