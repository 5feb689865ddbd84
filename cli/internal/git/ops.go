package git

import (
	"context"
	"strings"
)

// RevParse resolves ref to a full commit SHA.
func (r *Repo) RevParse(ctx context.Context, ref string) (string, error) {
	out, err := r.run(ctx, "", "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// TreeHash returns the tree object hash for ref (ref^{tree}).
func (r *Repo) TreeHash(ctx context.Context, ref string) (string, error) {
	out, err := r.run(ctx, "", "rev-parse", ref+"^{tree}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RefExists reports whether ref resolves to an object.
func (r *Repo) RefExists(ctx context.Context, ref string) bool {
	_, err := r.run(ctx, "", "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return err == nil
}

// CurrentBranch returns the checked-out branch name, or "HEAD" when detached.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Diff returns the unified diff base..head with default context. --binary is
// passed so binary changes carry a reapplicable "GIT binary patch" block
// instead of a bare "Binary files differ" notice.
func (r *Repo) Diff(ctx context.Context, base, head string) (string, error) {
	return r.run(ctx, "", "diff", "--no-color", "--no-ext-diff", "--binary", base+".."+head)
}

// WriteTree writes the current index as a tree object and returns its hash.
func (r *Repo) WriteTree(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "", "write-tree")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ReadTree replaces the index with the given tree.
func (r *Repo) ReadTree(ctx context.Context, tree string) error {
	_, err := r.run(ctx, "", "read-tree", tree)
	return err
}

// ApplyCached applies patch text to the index only. On rejection the
// returned *CmdError carries git's stderr verbatim.
func (r *Repo) ApplyCached(ctx context.Context, patch string) error {
	_, err := r.run(ctx, patch, "apply", "--cached", "--whitespace=nowarn")
	return err
}

// Commit creates a commit from the index with the given message. Empty
// commits are not allowed; git rejects them when nothing is staged.
func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "", "commit", "-m", message)
	return err
}

// StagedFiles lists paths with staged changes relative to HEAD.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "", "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CheckoutIndexAll forces on-disk files to match the index (checkout-index -f -a).
func (r *Repo) CheckoutIndexAll(ctx context.Context) error {
	_, err := r.run(ctx, "", "checkout-index", "-f", "-a")
	return err
}

// ResetHard moves HEAD, index, and working tree to ref.
func (r *Repo) ResetHard(ctx context.Context, ref string) error {
	_, err := r.run(ctx, "", "reset", "--hard", ref)
	return err
}

// Branch creates branch name at ref without checking it out.
func (r *Repo) Branch(ctx context.Context, name, ref string) error {
	_, err := r.run(ctx, "", "branch", name, ref)
	return err
}

// StatusPorcelain returns the porcelain status lines (staged, unstaged, and
// untracked entries), one per changed path.
func (r *Repo) StatusPorcelain(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "", "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// UntrackedFiles lists untracked paths that are not ignored by gitignore
// rules (ls-files --others --exclude-standard).
func (r *Repo) UntrackedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "", "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// FirstCommit returns the root commit of the current history.
func (r *Repo) FirstCommit(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "", "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return "", err
	}
	lines := splitLines(out)
	if len(lines) == 0 {
		return "", &CmdError{Args: []string{"rev-list", "--max-parents=0", "HEAD"}, Err: errNoCommits}
	}
	return lines[0], nil
}

func splitLines(out string) []string {
	// Only trailing newlines go: porcelain status lines start with a
	// significant space (" M path").
	trimmed := strings.TrimRight(out, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
