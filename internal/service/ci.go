package service

import (
	"fmt"

	"speck/internal/model"
	"speck/internal/stack"
	"speck/internal/store"
)

// CheckMergeFeasibility reports whether branch can be merged: it must be
// tracked, non-terminal, and every tracked ancestor in its base chain must
// already be merged. Intended for CI pipelines guarding PR merge order.
func (s *Service) CheckMergeFeasibility(branch string) error {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return err
	}
	entry := m.Entry(branch)
	if entry == nil {
		return &stack.ValidationError{
			Op: "ci check", Branch: branch,
			Reason: "branch is not tracked in this repository's store",
			Hint:   "run `speck list` to see tracked branches",
		}
	}
	if entry.Status.IsTerminal() {
		return &stack.ValidationError{
			Op: "ci check", Branch: branch,
			Reason: fmt.Sprintf("branch is already %s", entry.Status),
		}
	}

	// Walk ancestors; chains are acyclic by engine invariant, the guard is
	// only against a corrupted store.
	seen := map[string]bool{branch: true}
	for cur := m.Entry(entry.BaseBranch); cur != nil; cur = m.Entry(cur.BaseBranch) {
		if seen[cur.Name] {
			return &stack.CycleError{Path: []string{branch, cur.Name, branch}}
		}
		seen[cur.Name] = true
		if cur.Status != model.StatusMerged {
			return &stack.ValidationError{
				Op: "ci check", Branch: branch,
				Reason: fmt.Sprintf("ancestor %q is %s, not merged", cur.Name, cur.Status),
				Hint:   "merge the stack bottom-up: land " + cur.Name + " first",
			}
		}
	}
	return nil
}
