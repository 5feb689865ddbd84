// Package depend decides which hunks of a group must be applied together.
// Two hunks in the same file depend on each other when their pre-image line
// ranges touch or overlap, or when the gap between them is smaller than the
// diff context window: their context lines then overlap, and applying one
// patch invalidates the other's line numbers. Dependent hunks are merged
// into one subgroup and share a single patch so git can reconcile the
// shared context itself. Hunks from different files never depend.
package depend

import (
	"sort"

	"smartsquash/cli/internal/diff"
)

// contextWindow is git's default number of context lines around a hunk.
// Hunks closer than this share context and must be applied as one patch.
const contextWindow = 3

// Subgroup is a non-empty, old_start-ordered run of hunks from one file
// that must go into the same patch.
type Subgroup struct {
	Hunks []diff.Hunk
}

// FilePath returns the file all hunks in the subgroup belong to.
func (s Subgroup) FilePath() string { return s.Hunks[0].FilePath }

// Partition splits the hunks of one group into subgroups. Files keep their
// first-appearance order from the input; within a file, subgroups are
// ordered by minimum old_start and hunks inside a subgroup by old_start.
func Partition(hunks []diff.Hunk) []Subgroup {
	byFile := make(map[string][]diff.Hunk)
	var fileOrder []string
	for _, h := range hunks {
		if _, ok := byFile[h.FilePath]; !ok {
			fileOrder = append(fileOrder, h.FilePath)
		}
		byFile[h.FilePath] = append(byFile[h.FilePath], h)
	}

	var out []Subgroup
	for _, path := range fileOrder {
		out = append(out, partitionFile(byFile[path])...)
	}
	return out
}

func partitionFile(hunks []diff.Hunk) []Subgroup {
	sort.SliceStable(hunks, func(i, j int) bool {
		return hunks[i].OldStart < hunks[j].OldStart
	})

	// A rename, add, delete, or binary header mutates file identity when the
	// patch lands. Re-emitting it in a second patch would replay the side
	// effect against a file that no longer exists, so every hunk of such a
	// file shares one patch.
	for _, h := range hunks {
		if h.Kind != diff.Modify {
			return []Subgroup{{Hunks: hunks}}
		}
	}

	var out []Subgroup
	cur := Subgroup{Hunks: []diff.Hunk{hunks[0]}}
	for _, h := range hunks[1:] {
		last := cur.Hunks[len(cur.Hunks)-1]
		if dependent(last, h) {
			cur.Hunks = append(cur.Hunks, h)
			continue
		}
		out = append(out, cur)
		cur = Subgroup{Hunks: []diff.Hunk{h}}
	}
	return append(out, cur)
}

// dependent reports whether two old_start-ordered hunks from the same file
// must share a patch: ranges touching or overlapping, or a gap under the
// context window. A negative gap covers the overlap case.
func dependent(h1, h2 diff.Hunk) bool {
	gap := h2.OldStart - (h1.OldStart + h1.OldCount)
	return gap < contextWindow
}
