package diff

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_empty(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t\n  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got != nil {
				t.Errorf("Parse = %v, want nil", got)
			}
		})
	}
}

func TestParse_singleFileSingleHunk(t *testing.T) {
	t.Parallel()
	in := `diff --git a/foo.go b/foo.go
index abc123..def456 100644
--- a/foo.go
+++ b/foo.go
@@ -1,3 +1,4 @@
 package main
+
 func main() {
 	println("hello")
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(got))
	}
	h := got[0]
	if h.ID != "foo.go:1-3" {
		t.Errorf("ID = %q, want foo.go:1-3", h.ID)
	}
	if h.FilePath != "foo.go" || h.Kind != Modify {
		t.Errorf("FilePath = %q Kind = %q", h.FilePath, h.Kind)
	}
	if h.OldStart != 1 || h.OldCount != 3 || h.NewStart != 1 || h.NewCount != 4 {
		t.Errorf("ranges = -%d,%d +%d,%d", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	}
	if len(h.Body) != 4 {
		t.Fatalf("len(Body) = %d, want 4: %q", len(h.Body), h.Body)
	}
	if h.Body[1] != "+" {
		t.Errorf("Body[1] = %q, want %q", h.Body[1], "+")
	}
	wantHeader := []string{"diff --git a/foo.go b/foo.go", "index abc123..def456 100644", "--- a/foo.go", "+++ b/foo.go"}
	if len(h.FileHeader) != len(wantHeader) {
		t.Fatalf("FileHeader = %q, want %q", h.FileHeader, wantHeader)
	}
	for i := range wantHeader {
		if h.FileHeader[i] != wantHeader[i] {
			t.Errorf("FileHeader[%d] = %q, want %q", i, h.FileHeader[i], wantHeader[i])
		}
	}
}

func TestParse_multipleHunksShareHeader(t *testing.T) {
	t.Parallel()
	in := `diff --git a/x.go b/x.go
--- a/x.go
+++ b/x.go
@@ -1,2 +1,2 @@
-a
+b
 keep
@@ -10,1 +10,2 @@
 c
+d
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(hunks) = %d, want 2", len(got))
	}
	if got[0].ID != "x.go:1-2" || got[1].ID != "x.go:10-10" {
		t.Errorf("ids = %q, %q", got[0].ID, got[1].ID)
	}
	if len(got[1].Body) != 2 {
		t.Errorf("second hunk body = %q", got[1].Body)
	}
	if strings.Join(got[0].FileHeader, "\n") != strings.Join(got[1].FileHeader, "\n") {
		t.Error("hunks of one file should share the header block")
	}
}

func TestParse_defaultCountOmitted(t *testing.T) {
	t.Parallel()
	in := `diff --git a/f b/f
--- a/f
+++ b/f
@@ -5 +5,3 @@
-x
+x1
+x2
+x3
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	h := got[0]
	if h.OldCount != 1 || h.NewCount != 3 {
		t.Errorf("counts = %d,%d, want 1,3", h.OldCount, h.NewCount)
	}
	if h.ID != "f:5-5" {
		t.Errorf("ID = %q, want f:5-5", h.ID)
	}
}

func TestParse_newAndDeletedFiles(t *testing.T) {
	t.Parallel()
	in := `diff --git a/new.go b/new.go
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/new.go
@@ -0,0 +1,2 @@
+package main
+func main() {}
diff --git a/gone.go b/gone.go
deleted file mode 100644
index e69de29..0000000
--- a/gone.go
+++ /dev/null
@@ -1,1 +0,0 @@
-bye
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(hunks) = %d, want 2", len(got))
	}
	if got[0].Kind != AddFile || got[0].FilePath != "new.go" || got[0].ID != "new.go:0-0" {
		t.Errorf("add hunk = %+v", got[0])
	}
	if got[1].Kind != DeleteFile || got[1].FilePath != "gone.go" {
		t.Errorf("delete hunk = %+v", got[1])
	}
}

func TestParse_pureRenameNoBody(t *testing.T) {
	t.Parallel()
	in := `diff --git a/old name.go b/new name.go
similarity index 100%
rename from old name.go
rename to new name.go
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(got))
	}
	h := got[0]
	if h.Kind != Rename || h.FilePath != "new name.go" {
		t.Errorf("hunk = %+v", h)
	}
	if h.ID != "new name.go:0-0" {
		t.Errorf("ID = %q", h.ID)
	}
	if len(h.Body) != 0 {
		t.Errorf("Body = %q, want empty", h.Body)
	}
}

func TestParse_emptyFileCreation(t *testing.T) {
	t.Parallel()
	in := `diff --git a/empty.txt b/empty.txt
new file mode 100644
index 0000000..e69de29
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(got))
	}
	if got[0].Kind != AddFile || got[0].ID != "empty.txt:0-0" || len(got[0].Body) != 0 {
		t.Errorf("hunk = %+v", got[0])
	}
}

func TestParse_binaryPatchBlock(t *testing.T) {
	t.Parallel()
	in := `diff --git a/img.png b/img.png
index 1111111..2222222 100644
GIT binary patch
literal 8
PcmZQzU|?VYVnzSR07L@6

literal 4
LcmZQzU|;|M00jU5

`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(got))
	}
	h := got[0]
	if h.Kind != Binary || h.FilePath != "img.png" || h.ID != "img.png:0-0" {
		t.Errorf("hunk = %+v", h)
	}
	if len(h.Body) == 0 || h.Body[0] != "GIT binary patch" {
		t.Errorf("Body = %q, want GIT binary patch block", h.Body)
	}
}

func TestParse_binaryNoticeWithoutData(t *testing.T) {
	t.Parallel()
	in := `diff --git a/bin.dat b/bin.dat
index 111..222 100644
Binary files a/bin.dat and b/bin.dat differ
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(got))
	}
	if got[0].Kind != Binary || len(got[0].Body) != 0 {
		t.Errorf("hunk = %+v", got[0])
	}
}

func TestParse_noNewlineMarkerStaysInBody(t *testing.T) {
	t.Parallel()
	in := `diff --git a/f b/f
--- a/f
+++ b/f
@@ -1,1 +1,1 @@
-old
+new
\ No newline at end of file
`
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	h := got[0]
	if len(h.Body) != 3 || h.Body[2] != `\ No newline at end of file` {
		t.Errorf("Body = %q", h.Body)
	}
}

func TestParse_quotedPaths(t *testing.T) {
	t.Parallel()
	in := "diff --git \"a/sp\\303\\244ce.go\" \"b/sp\\303\\244ce.go\"\n" +
		"--- \"a/sp\\303\\244ce.go\"\n" +
		"+++ \"b/sp\\303\\244ce.go\"\n" +
		"@@ -1,1 +1,1 @@\n" +
		"-x\n" +
		"+y\n"
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got[0].FilePath != "späce.go" {
		t.Errorf("FilePath = %q, want späce.go", got[0].FilePath)
	}
}

func TestParse_pathWithTab(t *testing.T) {
	t.Parallel()
	in := "diff --git a/file.go b/file.go\n" +
		"--- a/file.go\t2020-01-01 00:00:00\n" +
		"+++ b/file.go\t2020-01-01 00:00:01\n" +
		"@@ -1,1 +1,1 @@\n" +
		" x\n"
	got, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got[0].FilePath != "file.go" {
		t.Errorf("FilePath = %q, want file.go", got[0].FilePath)
	}
}

func TestParse_errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{"leading junk", "not a diff\n"},
		{"header without hunks", "diff --git a/f b/f\nindex 111..222 100644\n--- a/f\n+++ b/f\n"},
		{"unknown body prefix", "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -1,2 +1,2 @@\n x\n*boom\n"},
		{"truncated hunk", "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -1,3 +1,3 @@\n x\n"},
		{"non-monotonic hunks", "diff --git a/f b/f\n--- a/f\n+++ b/f\n@@ -10,1 +10,1 @@\n-x\n+y\n@@ -2,1 +2,1 @@\n-a\n+b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse err = %v, want *ParseError", err)
			}
			if perr.Line <= 0 {
				t.Errorf("ParseError.Line = %d, want positive", perr.Line)
			}
		})
	}
}

func TestParse_duplicateHunkID(t *testing.T) {
	t.Parallel()
	// Same file appearing twice with the same range collides on id.
	in := `diff --git a/f b/f
--- a/f
+++ b/f
@@ -1,1 +1,1 @@
-x
+y
diff --git a/f b/f
--- a/f
+++ b/f
@@ -1,1 +1,1 @@
-x
+z
`
	_, err := Parse(in)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse err = %v, want *ParseError", err)
	}
	if !strings.Contains(perr.Msg, "duplicate hunk id") {
		t.Errorf("Msg = %q, want duplicate hunk id", perr.Msg)
	}
}
