package service

import (
	"speck/internal/hooks"
	"speck/internal/multirepo"
	"speck/internal/stack"
	"speck/internal/store"
)

// Remove deletes a tracked entry. Dependents block the removal unless force
// is set; forced removal leaves them dangling and returns the warnings.
// The git branch itself is left alone.
func (s *Service) Remove(name string, force bool) ([]string, error) {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return nil, err
	}
	warnings, err := stack.RemoveBranch(m, name, force)
	if err != nil {
		return nil, err
	}
	if err := store.Save(s.RepoRoot, m); err != nil {
		return nil, err
	}
	hooks.RunHooks(hooks.EventRemoveBranch, name)
	return warnings, nil
}

// Dependents lists tracked branches based on name, without mutating
// anything. Used by the CLI to decide whether removal needs confirmation.
func (s *Service) Dependents(name string) ([]string, error) {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return nil, err
	}
	return m.Dependents(name), nil
}

// Rename renames the git branch and the tracked entry, re-pointing every
// dependent's base at the new name.
func (s *Service) Rename(oldName, newName string) error {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return err
	}
	// Engine validation first; only then touch git.
	if err := stack.RenameBranch(m, oldName, newName); err != nil {
		return err
	}
	if err := s.Git.RenameBranch(oldName, newName); err != nil {
		return err
	}
	if err := store.Save(s.RepoRoot, m); err != nil {
		return err
	}
	hooks.RunHooks(hooks.EventRenameBranch, newName)
	return nil
}

// Rebase re-points name's recorded base at newBase (cycle-checked) and
// optionally runs the git rebase too.
func (s *Service) Rebase(name, newBase string, runGit bool) error {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return err
	}

	exists, err := s.Git.BranchExists(newBase)
	if err != nil {
		return err
	}
	if !exists {
		if err := multirepo.CheckBaseNotCrossRepo(s.Ctx, newBase); err != nil {
			return err
		}
		return &stack.ValidationError{
			Op: "rebase", Branch: name,
			Reason: "new base branch " + newBase + " does not exist in this repository",
			Hint:   "create it first or pick an existing base",
		}
	}

	if err := stack.RebaseBranch(m, name, newBase); err != nil {
		return err
	}
	if runGit {
		if err := s.Git.Rebase(name, newBase); err != nil {
			return err
		}
	}
	if err := store.Save(s.RepoRoot, m); err != nil {
		return err
	}
	hooks.RunHooks(hooks.EventRebaseBranch, name)
	return nil
}

// Repair rebuilds the spec index and rewrites bad timestamps. With check
// set it only reports whether the store needed work.
func (s *Service) Repair(check bool) (dirty bool, err error) {
	m, rep, err := store.LoadWithReport(s.RepoRoot)
	if err != nil {
		return false, err
	}
	if check {
		return rep.Dirty(), nil
	}
	if rep.Dirty() {
		if err := store.Save(s.RepoRoot, m); err != nil {
			return true, err
		}
	}
	return rep.Dirty(), nil
}
