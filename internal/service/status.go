package service

import (
	"fmt"

	"speck/internal/hooks"
	"speck/internal/logs"
	"speck/internal/model"
	"speck/internal/stack"
	"speck/internal/store"
)

// UpdateStatus applies a guarded status transition and persists it.
func (s *Service) UpdateStatus(name string, status model.Status, pr *int) error {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return err
	}
	if err := stack.UpdateBranchStatus(m, name, status, pr); err != nil {
		return err
	}
	if err := store.Save(s.RepoRoot, m); err != nil {
		return err
	}
	hooks.RunHooks(hooks.EventUpdateStatus, name)
	return nil
}

// SyncResult reports what Sync changed.
type SyncResult struct {
	Marked  []string // entries newly marked merged
	Skipped []string // merged in git but already terminal in the store
}

// Sync asks git which tracked branches are merged into the default branch
// and marks their entries merged. Terminal entries are left alone.
func (s *Service) Sync() (*SyncResult, error) {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return nil, err
	}
	def, err := s.Git.DefaultBranch()
	if err != nil {
		return nil, err
	}
	merged, err := s.Git.MergedBranches(def)
	if err != nil {
		return nil, fmt.Errorf("failed to detect merged branches: %w", err)
	}
	mergedSet := make(map[string]bool, len(merged))
	for _, b := range merged {
		mergedSet[b] = true
	}

	res := &SyncResult{}
	for i := range m.Branches {
		e := &m.Branches[i]
		if !mergedSet[e.Name] || e.Status == model.StatusMerged {
			continue
		}
		if e.Status.IsTerminal() {
			res.Skipped = append(res.Skipped, e.Name)
			continue
		}
		if err := stack.UpdateBranchStatus(m, e.Name, model.StatusMerged, nil); err != nil {
			return nil, err
		}
		res.Marked = append(res.Marked, e.Name)
	}

	if len(res.Marked) > 0 {
		if err := store.Save(s.RepoRoot, m); err != nil {
			return nil, err
		}
		for _, n := range res.Marked {
			hooks.RunHooks(hooks.EventUpdateStatus, n)
		}
	}
	logs.Info("Sync against %q: %d marked merged, %d skipped", def, len(res.Marked), len(res.Skipped))
	return res, nil
}
