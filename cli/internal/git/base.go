package git

import (
	"context"
	"errors"
)

var errNoCommits = errors.New("repository has no commits")

// baseFallbacks are tried, in order, after the requested base and its origin
// counterpart. Mirrors the common main-branch names so `smartsquash` works
// out of the box on repos without a local "main".
var baseFallbacks = []string{"master", "origin/master", "develop", "origin/develop"}

// ResolveBase resolves the base ref for a run. Candidates, in order:
// base itself, origin/<base>, then the usual main-branch names, finally the
// repository's root commit. Returns the first candidate that resolves to a
// commit, else the root commit; a repository without commits yields the
// error from FirstCommit.
func (r *Repo) ResolveBase(ctx context.Context, base string) (string, error) {
	candidates := make([]string, 0, 2+len(baseFallbacks))
	if base != "" {
		candidates = append(candidates, base, "origin/"+base)
	}
	candidates = append(candidates, baseFallbacks...)
	for _, cand := range candidates {
		if r.RefExists(ctx, cand) {
			return cand, nil
		}
	}
	return r.FirstCommit(ctx)
}
