package service

import (
	"fmt"

	"speck/internal/hooks"
	"speck/internal/logs"
	"speck/internal/model"
	"speck/internal/multirepo"
	"speck/internal/stack"
	"speck/internal/store"
)

// CreateOptions configures CreateBranch.
type CreateOptions struct {
	Name         string
	SpecID       string
	Base         string // empty means the repository's default branch
	ParentSpecID string // overrides the child's configured default
	WorktreePath string // non-empty: create a worktree instead of checking out
	NoCheckout   bool
}

// CreateResult reports what CreateBranch did, including non-fatal warnings.
type CreateResult struct {
	Entry    model.BranchEntry
	Base     string
	Warnings []string
}

// CreateBranch validates the new entry against the local store and the
// local git branches, creates the git branch, and records the entry.
// The base is only ever resolved against this repository; a name that
// lives in a sibling repository is rejected with the cross-repo error.
func (s *Service) CreateBranch(opts CreateOptions) (*CreateResult, error) {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return nil, err
	}

	base := opts.Base
	if base == "" {
		base, err = s.Git.DefaultBranch()
		if err != nil {
			return nil, err
		}
	}

	exists, err := s.Git.BranchExists(base)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := multirepo.CheckBaseNotCrossRepo(s.Ctx, base); err != nil {
			return nil, err
		}
		return nil, &stack.ValidationError{
			Op: "create", Branch: opts.Name,
			Reason: fmt.Sprintf("base branch %q does not exist in this repository", base),
			Hint:   "create it first or pick an existing base with --base",
		}
	}

	entry := model.BranchEntry{
		Name:       opts.Name,
		SpecID:     opts.SpecID,
		BaseBranch: base,
		Status:     model.StatusActive,
	}
	if s.Ctx.Kind == multirepo.MultiRepoChild {
		entry.ParentSpecID = opts.ParentSpecID
		if entry.ParentSpecID == "" {
			entry.ParentSpecID = s.Ctx.ParentSpecID
		}
	}

	// Engine validation first so no git branch is created for a rejected
	// entry.
	if err := stack.AddBranch(m, entry); err != nil {
		return nil, err
	}

	if err := s.Git.CreateBranch(opts.Name, base); err != nil {
		return nil, err
	}
	switch {
	case opts.WorktreePath != "":
		if err := s.Git.CreateWorktree(opts.WorktreePath, opts.Name); err != nil {
			return nil, err
		}
	case !opts.NoCheckout:
		if err := s.Git.Checkout(opts.Name); err != nil {
			return nil, err
		}
	}

	if err := store.Save(s.RepoRoot, m); err != nil {
		return nil, err
	}

	res := &CreateResult{Entry: *m.Entry(opts.Name), Base: base}
	if !s.Git.HasRemote() {
		res.Warnings = append(res.Warnings,
			"no git remote configured; branch created locally, PR suggestions are skipped")
	}
	if s.Ctx.Orphaned {
		res.Warnings = append(res.Warnings,
			"this child repository's root no longer links back to it; the store is orphaned (re-run `speck link` at the root)")
	}
	for _, w := range res.Warnings {
		logs.Warn("%s", w)
	}

	hooks.RunHooks(hooks.EventCreateBranch, opts.Name)
	return res, nil
}
