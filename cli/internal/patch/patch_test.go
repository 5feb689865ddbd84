package patch

import (
	"strings"
	"testing"

	"smartsquash/cli/internal/diff"
)

func modHunk(path string, oldStart, oldCount, newCount int, body ...string) diff.Hunk {
	return diff.Hunk{
		ID:         diff.HunkID(path, oldStart, oldCount),
		FilePath:   path,
		Kind:       diff.Modify,
		OldStart:   oldStart,
		OldCount:   oldCount,
		NewStart:   oldStart,
		NewCount:   newCount,
		Body:       body,
		FileHeader: []string{"diff --git a/" + path + " b/" + path, "--- a/" + path, "+++ b/" + path},
	}
}

func TestSynthesize_emptyOffsetsKeepsHeaders(t *testing.T) {
	t.Parallel()
	h := modHunk("f", 2, 1, 1, "-b", "+B")
	got, err := Synthesize([]diff.Hunk{h}, Offsets{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	want := `diff --git a/f b/f
--- a/f
+++ b/f
@@ -2,1 +2,1 @@
-b
+B
`
	if got != want {
		t.Errorf("patch = %q, want %q", got, want)
	}
}

func TestSynthesize_intraPatchShift(t *testing.T) {
	t.Parallel()
	// Hunk A inserts 2 lines between lines 2 and 3; hunk B changes line 7.
	// B's header must move by A's delta within the same patch.
	a := modHunk("f", 2, 1, 3, " two", "+x", "+y")
	b := modHunk("f", 7, 1, 1, "-seven", "+SEVEN")
	got, err := Synthesize([]diff.Hunk{a, b}, Offsets{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(got, "@@ -7,1 +9,1 @@") {
		t.Errorf("patch missing shifted header @@ -7,1 +9,1 @@:\n%s", got)
	}
	if strings.Count(got, "diff --git a/f b/f") != 1 {
		t.Errorf("file header should be emitted once per file:\n%s", got)
	}
}

func TestSynthesize_crossCommitOffsets(t *testing.T) {
	t.Parallel()
	// A prior commit added 3 lines to f; the post-image start follows.
	h := modHunk("f", 10, 2, 2, "-p", "-q", "+P", "+Q")
	got, err := Synthesize([]diff.Hunk{h}, Offsets{"f": 3})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(got, "@@ -10,2 +13,2 @@") {
		t.Errorf("patch missing header @@ -10,2 +13,2 @@:\n%s", got)
	}
}

func TestSynthesize_offsetsOnlyShiftSameFile(t *testing.T) {
	t.Parallel()
	h := modHunk("other", 4, 1, 1, "-a", "+b")
	got, err := Synthesize([]diff.Hunk{h}, Offsets{"f": 5})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(got, "@@ -4,1 +4,1 @@") {
		t.Errorf("unrelated file shifted:\n%s", got)
	}
}

func TestSynthesize_pureInsertionAnchorsAfterOldStart(t *testing.T) {
	t.Parallel()
	h := modHunk("f", 3, 0, 2, "+x", "+y")
	got, err := Synthesize([]diff.Hunk{h}, Offsets{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(got, "@@ -3,0 +4,2 @@") {
		t.Errorf("patch = %q, want insertion header @@ -3,0 +4,2 @@", got)
	}
}

func TestSynthesize_zeroBodyHunkEmitsHeaderOnly(t *testing.T) {
	t.Parallel()
	h := diff.Hunk{
		ID:       "new name:0-0",
		FilePath: "new name",
		Kind:     diff.Rename,
		FileHeader: []string{
			"diff --git a/old name b/new name",
			"similarity index 100%",
			"rename from old name",
			"rename to new name",
		},
	}
	got, err := Synthesize([]diff.Hunk{h}, Offsets{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	want := strings.Join(h.FileHeader, "\n") + "\n"
	if got != want {
		t.Errorf("patch = %q, want header block only %q", got, want)
	}
	if strings.Contains(got, "@@") {
		t.Errorf("zero-body hunk must not emit an @@ line:\n%s", got)
	}
}

func TestSynthesize_binaryBlockVerbatim(t *testing.T) {
	t.Parallel()
	h := diff.Hunk{
		ID:         "img.png:0-0",
		FilePath:   "img.png",
		Kind:       diff.Binary,
		FileHeader: []string{"diff --git a/img.png b/img.png", "index 111..222 100644"},
		Body:       []string{"GIT binary patch", "literal 8", "PcmZQzU|?VYVnzSR07L@6", ""},
	}
	got, err := Synthesize([]diff.Hunk{h}, Offsets{"img.png": 42})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	want := "diff --git a/img.png b/img.png\nindex 111..222 100644\nGIT binary patch\nliteral 8\nPcmZQzU|?VYVnzSR07L@6\n\n"
	if got != want {
		t.Errorf("patch = %q, want %q", got, want)
	}
}

func TestSynthesize_binaryWithoutDataFails(t *testing.T) {
	t.Parallel()
	h := diff.Hunk{
		ID:         "bin:0-0",
		FilePath:   "bin",
		Kind:       diff.Binary,
		FileHeader: []string{"diff --git a/bin b/bin", "Binary files a/bin and b/bin differ"},
	}
	if _, err := Synthesize([]diff.Hunk{h}, Offsets{}); err == nil {
		t.Fatal("Synthesize accepted a binary notice without patch data")
	}
}

func TestSynthesize_noHunks(t *testing.T) {
	t.Parallel()
	if _, err := Synthesize(nil, Offsets{}); err == nil {
		t.Fatal("Synthesize accepted an empty hunk list")
	}
}

func TestOffsetsApply(t *testing.T) {
	t.Parallel()
	o := Offsets{}
	o.Apply([]diff.Hunk{
		{FilePath: "a", OldCount: 1, NewCount: 4},
		{FilePath: "a", OldCount: 2, NewCount: 1},
		{FilePath: "b", OldCount: 0, NewCount: 2},
	})
	if o["a"] != 2 || o["b"] != 2 {
		t.Errorf("offsets = %v, want a:2 b:2", o)
	}
}

func TestSynthesize_endsWithNewline(t *testing.T) {
	t.Parallel()
	h := modHunk("f", 1, 1, 1, "-x", "+y")
	got, err := Synthesize([]diff.Hunk{h}, Offsets{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("patch must end with a newline")
	}
}
