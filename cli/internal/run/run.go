// Package run drives one full reorganization: validate the grouping, back
// up the branch, reset to the base, then materialize each group as one
// commit built from offset-corrected patches. Any failure after the first
// mutation restores the branch from the backup ref before the error is
// returned, so the only terminal states are a verified rewrite or the
// original tip.
//
// A run is strictly sequential: groups in input order, subgroups in
// dependency order, hunks by old_start. Callers must not start two runs on
// the same repository; git's index lock would reject it anyway.
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartsquash/cli/internal/apply"
	"smartsquash/cli/internal/backup"
	"smartsquash/cli/internal/depend"
	"smartsquash/cli/internal/diff"
	"smartsquash/cli/internal/erruser"
	"smartsquash/cli/internal/git"
	"smartsquash/cli/internal/patch"
	"smartsquash/cli/internal/plan"
	"smartsquash/cli/internal/trace"
)

// Result reports a successful run.
type Result struct {
	NewTip    string // commit hash of the rewritten branch tip
	BackupRef string // backup branch kept for manual recovery
}

// Failure wraps an error raised after mutation began. BackupRef names the
// recovery branch (always preserved); Restored reports whether the branch
// was reset back to it.
type Failure struct {
	Err       error
	BackupRef string
	Restored  bool
}

func (f *Failure) Error() string {
	if f.Restored {
		return fmt.Sprintf("%v (branch restored from %s)", f.Err, f.BackupRef)
	}
	return fmt.Sprintf("%v (restore failed; recover manually from %s)", f.Err, f.BackupRef)
}

func (f *Failure) Unwrap() error { return f.Err }

// TreeMismatchError is the end-to-end check failing: the rewritten branch
// does not reproduce the original tree byte-for-byte.
type TreeMismatchError struct {
	Want, Got string
}

func (e *TreeMismatchError) Error() string {
	return fmt.Sprintf("rewritten tree %s does not match original tree %s", e.Got, e.Want)
}

// ErrDetachedHead blocks runs outside a branch; there is no ref to move or
// back up.
var ErrDetachedHead = errors.New("HEAD is detached; check out a branch first")

// Coordinator holds the collaborators for a run.
type Coordinator struct {
	Repo   *git.Repo
	Backup *backup.Manager
	Tracer *trace.Tracer
}

// Run reorganizes the current branch: one commit per group, applied on top
// of base, final tree verified against the original tip. Errors before any
// mutation (validation, unclean worktree) are returned directly; errors
// after the reset come back as *Failure.
func (c *Coordinator) Run(ctx context.Context, base string, hunks []diff.Hunk, groups []plan.Group) (*Result, error) {
	tr := c.Tracer

	// Everything here runs before the first mutation: a failure leaves the
	// repository untouched and creates no backup ref.
	if err := plan.Validate(groups, hunks); err != nil {
		return nil, err
	}
	if err := c.Backup.CheckClean(ctx); err != nil {
		return nil, err
	}
	branch, err := c.Repo.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if branch == "HEAD" {
		return nil, ErrDetachedHead
	}
	baseCommit, err := c.Repo.RevParse(ctx, base)
	if err != nil {
		return nil, erruser.Newf(err, "Base ref %q does not resolve to a commit.", base)
	}
	origTree, err := c.Repo.TreeHash(ctx, "HEAD")
	if err != nil {
		return nil, err
	}

	backupRef, err := c.Backup.Create(ctx, branch, time.Now())
	if err != nil {
		return nil, err
	}
	tr.Section("run")
	tr.Printf("state: Backed-Up (ref %s)\n", backupRef)

	// fail restores the branch and wraps err. Restoration runs even when
	// the surrounding context was canceled; abandoning a half-rewritten
	// branch is worse than finishing two git invocations.
	fail := func(err error) error {
		restoreCtx := context.WithoutCancel(ctx)
		restoreErr := c.Backup.Restore(restoreCtx, backupRef)
		if restoreErr != nil {
			tr.Printf("state: restore FAILED: %v\n", restoreErr)
			return &Failure{Err: errors.Join(err, restoreErr), BackupRef: backupRef}
		}
		tr.Printf("state: Restored\n")
		return &Failure{Err: err, BackupRef: backupRef, Restored: true}
	}

	if err := c.Repo.ResetHard(ctx, baseCommit); err != nil {
		return nil, fail(err)
	}
	tr.Printf("state: Reset (base %s)\n", baseCommit)

	offsets := patch.Offsets{}
	for i, g := range groups {
		tr.Printf("state: ApplyingGroup[%d] %q\n", i, g.Message)
		if err := c.applyGroup(ctx, g, hunks, offsets); err != nil {
			return nil, fail(err)
		}
		tr.Printf("state: Committed[%d]\n", i)
	}

	newTree, err := c.Repo.TreeHash(ctx, "HEAD")
	if err != nil {
		return nil, fail(err)
	}
	if newTree != origTree {
		return nil, fail(&TreeMismatchError{Want: origTree, Got: newTree})
	}
	newTip, err := c.Repo.RevParse(ctx, "HEAD")
	if err != nil {
		return nil, fail(err)
	}
	tr.Printf("state: Verified (tip %s)\n", newTip)
	return &Result{NewTip: newTip, BackupRef: backupRef}, nil
}

// applyGroup stages every subgroup of g as its own patch and closes with a
// single commit. Subgroups staged earlier shift the line numbers later
// subgroups depend on, so a group-local copy of the offset map advances
// per subgroup; the caller's map advances only once the commit lands.
func (c *Coordinator) applyGroup(ctx context.Context, g plan.Group, hunks []diff.Hunk, offsets patch.Offsets) error {
	groupHunks, err := plan.Resolve(g, hunks)
	if err != nil {
		return err
	}
	subgroups := depend.Partition(groupHunks)

	txn, err := apply.Begin(ctx, c.Repo, c.Tracer)
	if err != nil {
		return err
	}

	staged := patch.Offsets{}
	for path, delta := range offsets {
		staged[path] = delta
	}
	for _, sg := range subgroups {
		text, err := patch.Synthesize(sg.Hunks, staged)
		if err != nil {
			return err
		}
		c.Tracer.Printf("subgroup %s: %d hunk(s), patch %d bytes\n", sg.FilePath(), len(sg.Hunks), len(text))
		if err := txn.Stage(ctx, text); err != nil {
			return err
		}
		staged.Apply(sg.Hunks)
	}
	if err := txn.Commit(ctx, g.Message); err != nil {
		return err
	}
	offsets.Apply(groupHunks)
	return nil
}
