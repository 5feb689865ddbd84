// Command smartsquash reorganizes the commits on the current branch into a
// smaller set of semantically coherent commits. It extracts the diff
// against a base ref, asks a language-model advisor to partition the hunks
// into logical commits, and replays the groups on top of the base while
// preserving the final tree byte-for-byte.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"smartsquash/cli/internal/advisor"
	"smartsquash/cli/internal/backup"
	"smartsquash/cli/internal/commitmsg"
	"smartsquash/cli/internal/config"
	"smartsquash/cli/internal/diff"
	"smartsquash/cli/internal/erruser"
	"smartsquash/cli/internal/git"
	"smartsquash/cli/internal/plan"
	"smartsquash/cli/internal/run"
	"smartsquash/cli/internal/trace"
	"smartsquash/cli/internal/version"
)

type cliFlags struct {
	base         string
	provider     string
	model        string
	instructions string
	dryRun       bool
	autoApply    bool
	noColor      bool
	traceOn      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags cliFlags
	cmd := &cobra.Command{
		Use:           "smartsquash",
		Short:         "Reorganize a messy branch into clean, logical commits",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.base, "base", "b", "", "base ref to reorganize onto (default from config, then main)")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "advisor provider: local, openai, or anthropic")
	cmd.Flags().StringVar(&flags.model, "model", "", "advisor model name")
	cmd.Flags().StringVar(&flags.instructions, "instructions", "", "extra grouping instructions for the advisor")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the proposed commits without touching the repository")
	cmd.Flags().BoolVar(&flags.autoApply, "auto-apply", false, "apply without the confirmation prompt")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&flags.traceOn, "trace", false, "write internal step output to stderr")
	return cmd
}

func runRoot(cmd *cobra.Command, flags cliFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if flags.noColor {
		color.NoColor = true
	}
	var traceOut io.Writer
	if flags.traceOn {
		traceOut = cmd.ErrOrStderr()
	}
	tr := trace.New(traceOut)

	repo, err := git.Open(".")
	if err != nil {
		return erruser.New("This directory is not inside a Git repository.", err)
	}

	cfg, err := config.Load(config.LoadOptions{
		RepoRoot: repo.Root(),
		Overrides: &config.Overrides{
			Provider: &flags.provider,
			Model:    &flags.model,
			Base:     &flags.base,
		},
	})
	if err != nil {
		return err
	}

	baseRef, err := repo.ResolveBase(ctx, cfg.Base)
	if err != nil {
		return erruser.Newf(err, "Could not resolve a base ref (tried %q and the usual fallbacks).", cfg.Base)
	}
	if baseRef != cfg.Base {
		fmt.Fprintf(out, "Using %s as base reference\n", baseRef)
	}

	tr.Section("diff")
	diffText, err := repo.Diff(ctx, baseRef, "HEAD")
	if err != nil {
		return erruser.Newf(err, "Could not diff %s..HEAD.", baseRef)
	}
	if strings.TrimSpace(diffText) == "" {
		fmt.Fprintln(out, "Branch matches the base; nothing to reorganize.")
		return nil
	}
	hunks, err := diff.Parse(diffText)
	if err != nil {
		return err
	}
	tr.Printf("parsed %d hunk(s) from %d bytes of diff\n", len(hunks), len(diffText))

	provider, err := advisor.New(advisor.Options{
		Provider:     cfg.Provider,
		Model:        cfg.Model,
		BaseURL:      cfg.OllamaBaseURL,
		APIKeyEnv:    cfg.APIKeyEnv,
		Timeout:      cfg.Timeout,
		ContextLimit: cfg.ContextLimit,
		Temperature:  cfg.Temperature,
	})
	if err != nil {
		return err
	}
	groups, err := advisor.Plan(ctx, provider, advisor.PromptRequest{
		Diff:         diffText,
		Hunks:        hunks,
		Instructions: flags.instructions,
	}, cfg.ContextLimit, tr)
	if err != nil {
		return err
	}

	groups, err = polishMessages(out, groups, cfg)
	if err != nil {
		return err
	}
	if err := plan.Validate(groups, hunks); err != nil {
		return erruser.New("The advisor produced an invalid grouping.", err)
	}

	printPlan(out, groups)
	if flags.dryRun {
		fmt.Fprintln(out, "Dry run; repository not modified.")
		return nil
	}
	if !flags.autoApply && !cfg.AutoApply {
		ok, err := confirm(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted; repository not modified.")
			return nil
		}
	}

	coord := &run.Coordinator{
		Repo:   repo,
		Backup: backup.NewManager(repo, cfg.IgnoredUntracked),
		Tracer: tr,
	}
	start := time.Now()
	result, err := coord.Run(ctx, baseRef, hunks, groups)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "Rewrote branch into %d commit(s) in %s.\n", len(groups), time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "New tip: %s\n", result.NewTip)
	fmt.Fprintf(out, "Backup kept at %s (delete it once you are happy).\n", result.BackupRef)
	return nil
}

// polishMessages normalizes advisor messages and applies the configured
// commit-format rules. Over-length subjects only warn; a missing or
// ill-typed subject fails before anything is shown to the user as a plan.
func polishMessages(out io.Writer, groups []plan.Group, cfg *config.Config) ([]plan.Group, error) {
	format := commitmsg.Format{MaxSubjectLength: cfg.MaxSubjectLength}
	if cfg.EnforceTypes {
		format.Types = cfg.CommitTypes
		if len(format.Types) == 0 {
			format.Types = commitmsg.DefaultTypes
		}
	}
	for i := range groups {
		groups[i].Message = commitmsg.Normalize(groups[i].Message)
		warning, err := format.Validate(groups[i].Message)
		if err != nil {
			return nil, erruser.Newf(err, "Commit %d has an unusable message.", i+1)
		}
		if warning != "" {
			color.New(color.FgYellow).Fprintf(out, "warning: commit %d: %s\n", i+1, warning)
		}
	}
	return groups, nil
}

func printPlan(out io.Writer, groups []plan.Group) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	fmt.Fprintf(out, "\nProposed commits:\n")
	for i, g := range groups {
		bold.Fprintf(out, "  %d. %s\n", i+1, subjectOf(g.Message))
		if g.Rationale != "" {
			dim.Fprintf(out, "     %s\n", g.Rationale)
		}
		dim.Fprintf(out, "     hunks: %s\n", strings.Join(g.HunkIDs, ", "))
	}
	fmt.Fprintln(out)
}

func subjectOf(msg string) string {
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		return msg[:idx]
	}
	return msg
}

// confirm asks for a y/N answer on in. Anything but y/yes declines.
func confirm(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "Rewrite the branch with these commits? [y/N] ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, erruser.New("Could not read confirmation.", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// printError renders the failure: the user-facing message first, technical
// detail behind a Details line when available.
func printError(w io.Writer, err error) {
	color.New(color.FgRed).Fprintf(w, "error: %v\n", err)
	var userErr *erruser.Err
	if errors.As(err, &userErr) && userErr.Err != nil {
		fmt.Fprintf(w, "Details: %v\n", userErr.Err)
	}
	var failure *run.Failure
	if errors.As(err, &failure) && !failure.Restored {
		color.New(color.FgYellow).Fprintf(w, "The branch may be in an intermediate state; recover with: git reset --hard %s\n", failure.BackupRef)
	}
}
