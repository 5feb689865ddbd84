// Package git runs the host git binary for the reorganization engine:
// repository discovery, diff extraction, index-level patch application, and
// ref manipulation. All repository mutation in this program flows through
// this package; nothing writes .git internals directly.
//
// Subprocesses run with a minimal environment (PATH, GIT_TERMINAL_PROMPT=0,
// GIT_PAGER=cat, HOME passthrough) so prompts and pagers never block a run.
// Context is checked before each invocation, never used to kill a running
// git process: an in-flight command always completes, which keeps the index
// and refs consistent on interrupt.
package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnavailable indicates the git binary could not be spawned at all
// (not installed or not on PATH).
var ErrUnavailable = errors.New("git binary unavailable")

// CmdError is returned when git exits non-zero. Stderr is kept verbatim so
// callers can surface git's own explanation (e.g. why a patch was rejected).
type CmdError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CmdError) Error() string {
	msg := "git " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CmdError) Unwrap() error { return e.Err }

// Repo is a handle on one git repository. Zero value is not valid; use Open.
type Repo struct {
	root string
}

// Open locates the repository containing dir via rev-parse --show-toplevel
// and returns a handle rooted there.
func Open(dir string) (*Repo, error) {
	r := &Repo{root: dir}
	out, err := r.run(context.Background(), "", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(strings.TrimSpace(out))
	if err != nil {
		return nil, err
	}
	return &Repo{root: root}, nil
}

// Root returns the absolute repository root path.
func (r *Repo) Root() string { return r.root }

// run executes git with the given args, feeding stdin when non-empty.
// Stdout is returned as-is (no trimming; diff output is byte-sensitive).
// A non-zero exit becomes *CmdError; a spawn failure becomes ErrUnavailable.
func (r *Repo) run(ctx context.Context, stdin string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = r.root
	cmd.Env = minimalEnv()
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", errors.Join(ErrUnavailable, err)
		}
		return stdout.String(), &CmdError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

func minimalEnv() []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_PAGER=cat", // prevent pager; subprocess output is captured
	}
	if home := os.Getenv("HOME"); home != "" {
		env = append(env, "HOME="+home)
	} else if runtime.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			env = append(env, "HOME="+profile)
		}
	}
	// Author identity comes from the user's gitconfig, or from these
	// variables when set; commits carry the acting user, not a tool identity.
	for _, k := range []string{"GIT_AUTHOR_NAME", "GIT_AUTHOR_EMAIL", "GIT_COMMITTER_NAME", "GIT_COMMITTER_EMAIL"} {
		if v := os.Getenv(k); v != "" {
			env = append(env, k+"="+v)
		}
	}
	return env
}

// MinimalEnv returns the environment used for git subprocesses. Exported for
// tests that spawn their own git commands against fixture repos.
func MinimalEnv() []string {
	return minimalEnv()
}
