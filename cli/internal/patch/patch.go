// Package patch rewrites hunk subsets into valid unified-diff text. Patches
// are applied to the current index state, which already reflects hunks from
// earlier commits in the run, so every emitted hunk header is corrected by
// the file's cumulative line offset: earlier applications shift the text
// below them, and the post-image start follows that shift while the
// pre-image range stays as parsed. Bodies are never touched; only headers
// move.
package patch

import (
	"fmt"
	"strings"

	"smartsquash/cli/internal/diff"
)

// Offsets records, per file path, the signed line-count delta applied by all
// hunks committed earlier in the current run. The coordinator owns the map
// and advances it after each successful group.
type Offsets map[string]int

// Apply adds each hunk's line delta to its file entry. Called after a group
// commits so later groups see the shift.
func (o Offsets) Apply(hunks []diff.Hunk) {
	for _, h := range hunks {
		o[h.FilePath] += h.LineDelta()
	}
}

// Synthesize emits unified-diff patch text for the given hunks, ordered as
// given. File headers are emitted verbatim, once per file within the patch.
// Hunks applied earlier inside this same patch shift later same-file hunks
// in addition to the cross-commit offsets. The result always ends with a
// newline, as git apply requires.
func Synthesize(hunks []diff.Hunk, offsets Offsets) (string, error) {
	if len(hunks) == 0 {
		return "", fmt.Errorf("synthesize: no hunks")
	}

	var sb strings.Builder
	headerDone := make(map[string]bool)
	local := make(map[string]int) // intra-patch shift per file

	for _, h := range hunks {
		if !headerDone[h.FilePath] {
			for _, line := range h.FileHeader {
				sb.WriteString(line)
				sb.WriteByte('\n')
			}
			headerDone[h.FilePath] = true
		}

		switch {
		case h.Kind == diff.Binary:
			if len(h.Body) == 0 {
				return "", fmt.Errorf("synthesize: binary change for %s has no reapplicable patch data (diff not produced with --binary)", h.FilePath)
			}
			writeLines(&sb, h.Body)
		case len(h.Body) == 0:
			// Pure rename, empty file, or mode flip: the header block is the
			// whole change.
		default:
			shift := offsets[h.FilePath] + local[h.FilePath]
			sb.WriteString(hunkHeader(h, shift))
			sb.WriteByte('\n')
			writeLines(&sb, h.Body)
			local[h.FilePath] += h.LineDelta()
		}
	}
	return sb.String(), nil
}

// hunkHeader renders "@@ -S,C +S+shift,C' @@". The pre-image range is kept
// as parsed; only the post-image start moves with the cumulative shift. The
// body already encodes the actual new content, so C' is the parsed NewCount.
// For a pure insertion (C == 0) the pre-image start anchors the line the
// insertion follows, and the post-image start sits one past it.
func hunkHeader(h diff.Hunk, shift int) string {
	newStart := h.OldStart + shift
	if h.OldCount == 0 {
		newStart++
	}
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, newStart, h.NewCount)
}

func writeLines(sb *strings.Builder, lines []string) {
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
