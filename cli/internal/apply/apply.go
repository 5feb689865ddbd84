// Package apply stages and commits patch groups through git with
// all-or-nothing semantics. All mutation flows through `git apply --cached`:
// git's own patch machinery validates pre-image context against the index
// and handles whitespace and line-ending quirks. Rewriting file content by
// raw line number is prohibited here — after the first hunk lands, raw line
// numbers no longer describe the file, and that road ends in silent
// corruption.
package apply

import (
	"context"
	"errors"
	"fmt"

	"smartsquash/cli/internal/git"
	"smartsquash/cli/internal/trace"
)

// PatchError is returned when git rejects a synthesized patch. Stderr is
// git's verbatim explanation.
type PatchError struct {
	Stderr string
	Err    error
}

func (e *PatchError) Error() string { return "patch apply failed: " + e.Stderr }
func (e *PatchError) Unwrap() error { return e.Err }

// CommitError is returned when the commit itself fails (including the
// empty-commit case, which signals a scheduler bug upstream).
type CommitError struct {
	Message string // intended commit message
	Stderr  string
	Err     error
}

func (e *CommitError) Error() string { return "commit failed: " + e.Stderr }
func (e *CommitError) Unwrap() error { return e.Err }

// Txn is one group's staging transaction: a recorded index snapshot, any
// number of staged patches, and a single closing commit. Begin a fresh Txn
// per group.
type Txn struct {
	repo      *git.Repo
	tr        *trace.Tracer
	indexTree string // index snapshot for rollback
	headRef   string // commit to reset to if the commit itself fails
}

// Begin snapshots the current index (write-tree) and HEAD so the
// transaction can roll back without observable change.
func Begin(ctx context.Context, repo *git.Repo, tr *trace.Tracer) (*Txn, error) {
	tree, err := repo.WriteTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot index: %w", err)
	}
	head, err := repo.RevParse(ctx, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	tr.Printf("txn begin: index tree %s, HEAD %s\n", tree, head)
	return &Txn{repo: repo, tr: tr, indexTree: tree, headRef: head}, nil
}

// Stage applies one patch to the index. On rejection the index is restored
// to the transaction snapshot and a *PatchError carrying git's stderr is
// returned; nothing observable changes.
func (t *Txn) Stage(ctx context.Context, patchText string) error {
	if err := t.repo.ApplyCached(ctx, patchText); err != nil {
		t.tr.Printf("apply --cached rejected; restoring index %s\n", t.indexTree)
		if restoreErr := t.repo.ReadTree(ctx, t.indexTree); restoreErr != nil {
			return errors.Join(stageError(err), fmt.Errorf("restore index: %w", restoreErr))
		}
		return stageError(err)
	}
	return nil
}

// Commit closes the transaction with one commit for everything staged, then
// syncs the working tree to the new index (checkout-index -f -a): earlier
// Stage calls leave on-disk files behind the index, and the next group's
// patches validate against the index, so the tree must catch up. On failure
// the index and HEAD are restored to the transaction snapshot.
func (t *Txn) Commit(ctx context.Context, message string) error {
	if err := t.repo.Commit(ctx, message); err != nil {
		t.tr.Printf("commit rejected; rolling back to %s\n", t.headRef)
		rollback := []error{commitError(message, err)}
		if restoreErr := t.repo.ReadTree(ctx, t.indexTree); restoreErr != nil {
			rollback = append(rollback, fmt.Errorf("restore index: %w", restoreErr))
		}
		if resetErr := t.repo.ResetHard(ctx, t.headRef); resetErr != nil {
			rollback = append(rollback, fmt.Errorf("reset to pre-apply commit: %w", resetErr))
		}
		return errors.Join(rollback...)
	}
	if err := t.repo.CheckoutIndexAll(ctx); err != nil {
		return fmt.Errorf("sync working tree: %w", err)
	}
	return nil
}

func stageError(err error) error {
	var cmdErr *git.CmdError
	if errors.As(err, &cmdErr) {
		return &PatchError{Stderr: cmdErr.Stderr, Err: err}
	}
	return &PatchError{Stderr: err.Error(), Err: err}
}

func commitError(message string, err error) error {
	var cmdErr *git.CmdError
	if errors.As(err, &cmdErr) {
		return &CommitError{Message: message, Stderr: cmdErr.Stderr, Err: err}
	}
	return &CommitError{Message: message, Stderr: err.Error(), Err: err}
}
