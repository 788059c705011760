package service

import (
	"fmt"
	"strings"

	"speck/internal/hooks"
	"speck/internal/model"
	"speck/internal/stack"
	"speck/internal/store"
)

// RecordPR stores a PR number against a branch and marks it submitted.
func (s *Service) RecordPR(name string, pr int) error {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return err
	}
	if err := stack.RecordPR(m, name, pr); err != nil {
		return err
	}
	if err := store.Save(s.RepoRoot, m); err != nil {
		return err
	}
	hooks.RunHooks(hooks.EventUpdateStatus, name)
	return nil
}

// SuggestPRs finds active entries whose base is merged: the next PRs worth
// opening. A non-empty result comes back as a SuggestionError so the CLI
// exits with the structured-suggestion code.
func (s *Service) SuggestPRs() error {
	if !s.Git.HasRemote() {
		return nil // nothing to suggest without a remote
	}
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return err
	}

	var ready []string
	for _, e := range m.Branches {
		if e.Status != model.StatusActive || e.PR != nil {
			continue
		}
		base := m.Entry(e.BaseBranch)
		if base == nil || base.Status == model.StatusMerged {
			ready = append(ready, e.Name)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	return &SuggestionError{
		Msg: fmt.Sprintf("ready for a PR (base merged or untracked): %s\nOpen one, then record it with `speck pr record <branch> <number>`",
			strings.Join(ready, ", ")),
	}
}
