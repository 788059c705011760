// Package store persists a repository's BranchMapping as
// .speck/branches.json. Load transparently migrates legacy-schema files and
// auto-repairs recoverable drift; Save writes atomically.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"speck/internal/logs"
	"speck/internal/model"
)

const (
	// SpeckDirName holds everything speck writes inside a repository.
	SpeckDirName = ".speck"
	// FileName is the store file inside SpeckDirName.
	FileName = "branches.json"
)

// StructuralError means the store file is unreadable or malformed beyond
// auto-repair. It is fatal to the current operation and always carries a
// recovery hint.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("store file %s is unusable: %s (restore it from version control, e.g. `git checkout -- %s`)",
		e.Path, e.Reason, e.Path)
}

// Report describes what Load had to do to hand back a usable mapping.
type Report struct {
	Created            bool // no file existed; a fresh empty mapping was returned
	Migrated           bool // legacy schema upgraded in memory
	RepairedIndex      bool // specIndex drifted from branches and was rebuilt
	RepairedTimestamps int  // entries whose timestamps were rewritten
}

// Dirty reports whether the in-memory mapping differs from the file on disk
// and is worth persisting.
func (r Report) Dirty() bool {
	return r.Migrated || r.RepairedIndex || r.RepairedTimestamps > 0
}

// Path returns the store file location for a repository root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, SpeckDirName, FileName)
}

// Exists reports whether a store file is present for the repository.
func Exists(repoRoot string) bool {
	_, err := os.Stat(Path(repoRoot))
	return err == nil
}

// Load reads the repository's store. A missing file is not an error: it
// means branch-stacking has not been used here, and an empty current-schema
// mapping is returned.
func Load(repoRoot string) (*model.BranchMapping, error) {
	m, _, err := LoadWithReport(repoRoot)
	return m, err
}

// LoadWithReport is Load plus a description of migrations/repairs applied.
// Repairs are in-memory only; they reach disk on the next Save.
func LoadWithReport(repoRoot string) (*model.BranchMapping, Report, error) {
	var rep Report
	p := Path(repoRoot)

	content, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		logs.Debug("No store file at %s; starting with an empty mapping", p)
		rep.Created = true
		return model.NewMapping(), rep, nil
	}
	if err != nil {
		return nil, rep, &StructuralError{Path: p, Reason: err.Error()}
	}

	m, rep2, err := decode(p, content)
	if err != nil {
		return nil, rep, err
	}
	rep2.Created = false
	if rep2.Migrated {
		logs.Info("Migrated store %s from legacy schema to %s (persisted on next save)", p, model.VersionCurrent)
	}
	if rep2.RepairedIndex {
		logs.Warn("specIndex in %s was inconsistent with branches; rebuilt", p)
	}
	if rep2.RepairedTimestamps > 0 {
		logs.Warn("Rewrote %d invalid timestamp(s) in %s", rep2.RepairedTimestamps, p)
	}
	return m, rep2, nil
}

// Decode parses store-format content from an arbitrary source (e.g. an
// exported snapshot) through the same version-tagged pipeline Load uses.
// path is only used in diagnostics.
func Decode(path string, content []byte) (*model.BranchMapping, Report, error) {
	return decode(path, content)
}

// Save writes the mapping atomically: marshal to a temp file in the same
// directory, then rename over the target, so a crash mid-write never leaves
// a half-written store.
func Save(repoRoot string, m *model.BranchMapping) error {
	dir := filepath.Join(repoRoot, SpeckDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	out = append(out, '\n')

	tmp, err := os.CreateTemp(dir, ".branches-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp store file: %w", err)
	}
	if err := os.Rename(tmpName, Path(repoRoot)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	logs.Debug("Saved store for %s (%d branches)", repoRoot, len(m.Branches))
	return nil
}
