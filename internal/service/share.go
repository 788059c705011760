package service

import (
	"encoding/json"
	"fmt"
	"os"

	"speck/internal/logs"
	"speck/internal/multirepo"
	"speck/internal/stack"
	"speck/internal/store"
)

// Export writes the current store as an indented JSON snapshot.
func (s *Service) Export(path string) error {
	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	out = append(out, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// ImportResult reports what Import did.
type ImportResult struct {
	Added   []string
	Skipped []string // only with force: entries rejected by validation
}

// Import merges entries from a snapshot file through full engine
// validation, entry by entry. Without force the first rejected entry
// aborts the import and nothing is persisted; with force rejected entries
// are skipped and reported.
func (s *Service) Import(path string, force bool) (*ImportResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	snap, _, err := store.Decode(path, content)
	if err != nil {
		return nil, err
	}

	m, err := store.Load(s.RepoRoot)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	for _, e := range snap.Branches {
		// parentSpecId only belongs in multi-repo child stores; a snapshot
		// taken in a child must not smuggle it into this one.
		if s.Ctx.Kind != multirepo.MultiRepoChild {
			e.ParentSpecID = ""
		}
		if err := stack.AddBranch(m, e); err != nil {
			if !force {
				return nil, fmt.Errorf("import aborted at entry %q: %w", e.Name, err)
			}
			logs.Warn("Skipping entry %q: %v", e.Name, err)
			res.Skipped = append(res.Skipped, e.Name)
			continue
		}
		res.Added = append(res.Added, e.Name)
	}

	if len(res.Added) > 0 {
		if err := store.Save(s.RepoRoot, m); err != nil {
			return nil, err
		}
	}
	return res, nil
}
