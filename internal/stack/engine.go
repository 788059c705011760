// Package stack is the dependency and consistency engine: pure operations
// over an in-memory BranchMapping. Callers own Load/Save around a logical
// transaction; every operation here is all-or-nothing against the mapping.
package stack

import (
	"fmt"
	"time"

	"speck/internal/model"
)

// AddBranch appends entry after validating name uniqueness, spec id format,
// status, and acyclicity of the resulting base chain.
func AddBranch(m *model.BranchMapping, entry model.BranchEntry) error {
	if entry.Name == "" {
		return &ValidationError{Op: "add", Branch: entry.Name, Reason: "branch name cannot be empty"}
	}
	if m.Entry(entry.Name) != nil {
		return &ValidationError{
			Op: "add", Branch: entry.Name,
			Reason: "a tracked branch with this name already exists",
			Hint:   "pick a different name or remove the existing entry first",
		}
	}
	if !model.ValidSpecID(entry.SpecID) {
		return &ValidationError{
			Op: "add", Branch: entry.Name,
			Reason: fmt.Sprintf("spec id %q is not in NNN-kebab-name form", entry.SpecID),
			Hint:   "e.g. 009-multi-repo-stacked",
		}
	}
	if entry.Status == "" {
		entry.Status = model.StatusActive
	}
	if _, err := model.ParseStatus(string(entry.Status)); err != nil {
		return &ValidationError{Op: "add", Branch: entry.Name, Reason: err.Error()}
	}
	if err := DetectCycle(m, entry); err != nil {
		return err
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	m.Branches = append(m.Branches, entry)
	m.SpecIndex[entry.SpecID] = append(m.SpecIndex[entry.SpecID], entry.Name)
	return nil
}

// UpdateBranchStatus moves name to newStatus, optionally recording a PR
// number. Transitions away from a terminal status are rejected, not ignored.
func UpdateBranchStatus(m *model.BranchMapping, name string, newStatus model.Status, pr *int) error {
	entry := m.Entry(name)
	if entry == nil {
		return &ValidationError{
			Op: "update", Branch: name,
			Reason: "branch is not tracked in this repository's store",
			Hint:   "run `speck list` to see tracked branches",
		}
	}
	if _, err := model.ParseStatus(string(newStatus)); err != nil {
		return &ValidationError{Op: "update", Branch: name, Reason: err.Error()}
	}
	if entry.Status.IsTerminal() && newStatus != entry.Status {
		return &ValidationError{
			Op: "update", Branch: name,
			Reason: fmt.Sprintf("status %q is terminal and cannot change to %q", entry.Status, newStatus),
			Hint:   "create a new branch if further work is needed",
		}
	}
	entry.Status = newStatus
	if pr != nil {
		entry.PR = pr
	}
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordPR sets the PR number on an entry and marks it submitted unless the
// entry is already terminal.
func RecordPR(m *model.BranchMapping, name string, pr int) error {
	entry := m.Entry(name)
	if entry == nil {
		return &ValidationError{
			Op: "pr", Branch: name,
			Reason: "branch is not tracked in this repository's store",
			Hint:   "run `speck list` to see tracked branches",
		}
	}
	if entry.Status.IsTerminal() {
		return &ValidationError{
			Op: "pr", Branch: name,
			Reason: fmt.Sprintf("status %q is terminal; recording a PR is not allowed", entry.Status),
		}
	}
	entry.PR = &pr
	entry.Status = model.StatusSubmitted
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveBranch deletes the named entry. If other entries base on it, the
// removal is rejected unless force is set, in which case the dependents keep
// their now-dangling base and each is returned as a warning for the caller
// to surface.
func RemoveBranch(m *model.BranchMapping, name string, force bool) ([]string, error) {
	entry := m.Entry(name)
	if entry == nil {
		return nil, &ValidationError{
			Op: "remove", Branch: name,
			Reason: "branch is not tracked in this repository's store",
			Hint:   "run `speck list` to see tracked branches",
		}
	}
	dependents := m.Dependents(name)
	if len(dependents) > 0 && !force {
		return nil, &ValidationError{
			Op: "remove", Branch: name,
			Reason: fmt.Sprintf("branches still base on it: %v", dependents),
			Hint:   "rebase the dependents first, or pass --force to leave them dangling",
		}
	}

	kept := m.Branches[:0]
	for _, b := range m.Branches {
		if b.Name != name {
			kept = append(kept, b)
		}
	}
	m.Branches = kept
	RebuildSpecIndex(m)

	var warnings []string
	for _, d := range dependents {
		warnings = append(warnings, fmt.Sprintf("branch %q now bases on removed branch %q", d, name))
	}
	return warnings, nil
}

// RebaseBranch re-points name's base to newBase after a cycle check.
func RebaseBranch(m *model.BranchMapping, name, newBase string) error {
	entry := m.Entry(name)
	if entry == nil {
		return &ValidationError{
			Op: "rebase", Branch: name,
			Reason: "branch is not tracked in this repository's store",
			Hint:   "run `speck list` to see tracked branches",
		}
	}
	candidate := *entry
	candidate.BaseBranch = newBase
	if err := DetectCycle(m, candidate); err != nil {
		return err
	}
	entry.BaseBranch = newBase
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

// RenameBranch renames an entry and re-points every dependent's base at the
// new name.
func RenameBranch(m *model.BranchMapping, oldName, newName string) error {
	entry := m.Entry(oldName)
	if entry == nil {
		return &ValidationError{
			Op: "rename", Branch: oldName,
			Reason: "branch is not tracked in this repository's store",
			Hint:   "run `speck list` to see tracked branches",
		}
	}
	if newName == "" {
		return &ValidationError{Op: "rename", Branch: oldName, Reason: "new name cannot be empty"}
	}
	if m.Entry(newName) != nil {
		return &ValidationError{
			Op: "rename", Branch: newName,
			Reason: "a tracked branch with this name already exists",
		}
	}
	entry.Name = newName
	entry.UpdatedAt = time.Now().UTC()
	for i := range m.Branches {
		if m.Branches[i].BaseBranch == oldName {
			m.Branches[i].BaseBranch = newName
		}
	}
	RebuildSpecIndex(m)
	return nil
}

// RebuildSpecIndex regenerates SpecIndex purely from the Branches slice, in
// slice order. It is the only sanctioned repair path for the index and is
// idempotent.
func RebuildSpecIndex(m *model.BranchMapping) {
	idx := make(map[string][]string, len(m.SpecIndex))
	for _, b := range m.Branches {
		idx[b.SpecID] = append(idx[b.SpecID], b.Name)
	}
	m.SpecIndex = idx
}

// SpecIndexConsistent reports whether the stored index matches one derived
// from Branches.
func SpecIndexConsistent(m *model.BranchMapping) bool {
	derived := make(map[string][]string)
	for _, b := range m.Branches {
		derived[b.SpecID] = append(derived[b.SpecID], b.Name)
	}
	if len(derived) != len(m.SpecIndex) {
		return false
	}
	for spec, names := range derived {
		got, ok := m.SpecIndex[spec]
		if !ok || len(got) != len(names) {
			return false
		}
		for i := range names {
			if got[i] != names[i] {
				return false
			}
		}
	}
	return true
}

// DetectCycle checks whether adding (or re-basing to) candidate would create
// a base-branch cycle. The walk is an iterative traversal over the adjacency
// map name -> base, with candidate's edge overriding any stored one; the
// on-stack path is kept so the full cycle is reported. O(chain length).
func DetectCycle(m *model.BranchMapping, candidate model.BranchEntry) error {
	if candidate.BaseBranch == candidate.Name {
		return &CycleError{Path: []string{candidate.Name, candidate.Name}}
	}

	base := make(map[string]string, len(m.Branches)+1)
	for _, b := range m.Branches {
		base[b.Name] = b.BaseBranch
	}
	base[candidate.Name] = candidate.BaseBranch

	onStack := map[string]bool{candidate.Name: true}
	path := []string{candidate.Name}
	cur := candidate.BaseBranch
	for cur != "" {
		if onStack[cur] {
			// Trim the path to start at the first node of the loop.
			start := 0
			for i, n := range path {
				if n == cur {
					start = i
					break
				}
			}
			return &CycleError{Path: append(path[start:], cur)}
		}
		next, tracked := base[cur]
		if !tracked {
			// Chain left the store (e.g. reached main): no cycle possible.
			return nil
		}
		onStack[cur] = true
		path = append(path, cur)
		cur = next
	}
	return nil
}

// BranchesForSpec returns the branch names implementing specID, via the
// index (O(1)).
func BranchesForSpec(m *model.BranchMapping, specID string) []string {
	return m.SpecIndex[specID]
}

// SpecForBranch returns the spec id of the named branch, or "" if untracked.
func SpecForBranch(m *model.BranchMapping, name string) string {
	if e := m.Entry(name); e != nil {
		return e.SpecID
	}
	return ""
}
