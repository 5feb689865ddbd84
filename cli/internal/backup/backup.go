// Package backup guards a run with a recovery branch. Before any mutation a
// ref named <branch>-backup-<unix_seconds> is created at the original tip;
// it is a branch rather than a tag so standard tooling can check it out. On
// fatal failure the branch tip is reset back to it; on success it is kept
// for manual recovery and the user deletes it when done.
package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"smartsquash/cli/internal/git"
)

// defaultIgnoredUntracked are untracked paths that never block a run:
// build leftovers whose presence says nothing about unsaved work.
var defaultIgnoredUntracked = []string{
	"*.pyc",
	"__pycache__/",
	"*.log",
	"dist/",
	"build/",
}

// UncleanError blocks a run when the working tree holds changes the reset
// would destroy. Paths names the offending files so the user can act.
type UncleanError struct {
	Paths []string
}

func (e *UncleanError) Error() string {
	return "working tree not clean: " + strings.Join(e.Paths, ", ")
}

// Manager creates, restores, and gates on the backup ref.
type Manager struct {
	repo   *git.Repo
	ignore *ignore.GitIgnore
}

// NewManager builds a Manager. extraPatterns extends the built-in
// generated-file patterns using gitignore syntax.
func NewManager(repo *git.Repo, extraPatterns []string) *Manager {
	lines := append(append([]string{}, defaultIgnoredUntracked...), extraPatterns...)
	return &Manager{repo: repo, ignore: ignore.CompileIgnoreLines(lines...)}
}

// CheckClean verifies the precondition for a run: no staged or unstaged
// changes at all, and no untracked files beyond the ignored generated-file
// patterns. Returns *UncleanError naming every offending path.
func (m *Manager) CheckClean(ctx context.Context) error {
	var offending []string

	status, err := m.repo.StatusPorcelain(ctx)
	if err != nil {
		return err
	}
	for _, line := range status {
		if len(line) < 4 || strings.HasPrefix(line, "??") {
			continue // untracked entries are judged separately
		}
		offending = append(offending, strings.TrimSpace(line[3:]))
	}

	untracked, err := m.repo.UntrackedFiles(ctx)
	if err != nil {
		return err
	}
	for _, path := range untracked {
		if m.ignore.MatchesPath(path) {
			continue
		}
		offending = append(offending, path)
	}

	if len(offending) > 0 {
		return &UncleanError{Paths: offending}
	}
	return nil
}

// Create makes the backup branch at the current tip of branch and returns
// its name.
func (m *Manager) Create(ctx context.Context, branch string, now time.Time) (string, error) {
	name := fmt.Sprintf("%s-backup-%d", branch, now.Unix())
	if err := m.repo.Branch(ctx, name, branch); err != nil {
		return "", fmt.Errorf("create backup ref: %w", err)
	}
	return name, nil
}

// Restore hard-resets the current branch to the backup ref, undoing every
// commit the run created. The backup ref itself is left in place.
func (m *Manager) Restore(ctx context.Context, ref string) error {
	if err := m.repo.ResetHard(ctx, ref); err != nil {
		return fmt.Errorf("restore from backup %s: %w", ref, err)
	}
	return nil
}
