package multirepo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"speck/internal/logs"
	"speck/internal/model"
	"speck/internal/store"
)

// ChildRepoRef is one discovered child repository at a multi-repo root.
type ChildRepoRef struct {
	Name string // link name under .speck/repos/
	Path string // resolved working directory
}

// Aggregate is the unified read view over a root and its children. Each
// repository's mapping stays attributed to its own repository; spec indexes
// are never merged across repositories.
type Aggregate struct {
	Root     *model.BranchMapping
	Children map[string]*model.BranchMapping
	Warnings []string
}

// DiscoverChildRepos enumerates the child symlinks at the root, resolving
// each one hop. A target that resolves but is not a git repository is
// skipped with a warning; a link that does not resolve at all is a hard
// ContextError.
func DiscoverChildRepos(rootPath string) ([]ChildRepoRef, []string, error) {
	dir := reposDirPath(rootPath)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var refs []ChildRepoRef
	var warnings []string
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			warnings = append(warnings, fmt.Sprintf("%s is not a symlink; ignoring (leftover from a manual copy?)", filepath.Join(dir, e.Name())))
			continue
		}
		link := filepath.Join(dir, e.Name())
		target, err := filepath.EvalSymlinks(link)
		if err != nil {
			return nil, nil, &ContextError{
				Link:   link,
				Reason: err.Error(),
				Hint:   "run `speck unlink " + e.Name() + "` or restore the child checkout",
			}
		}
		if _, err := os.Stat(filepath.Join(target, ".git")); err != nil {
			warnings = append(warnings, fmt.Sprintf("child link %q resolves to %s, which is not a git repository; skipping", e.Name(), target))
			continue
		}
		refs = append(refs, ChildRepoRef{Name: e.Name(), Path: target})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, warnings, nil
}

// AggregateStores loads the root's own store plus every discovered child's.
// A child without a store file contributes an empty mapping so it still
// appears in listings.
func AggregateStores(rootPath string) (*Aggregate, error) {
	rootMapping, err := store.Load(rootPath)
	if err != nil {
		return nil, err
	}

	refs, warnings, err := DiscoverChildRepos(rootPath)
	if err != nil {
		return nil, err
	}

	agg := &Aggregate{
		Root:     rootMapping,
		Children: make(map[string]*model.BranchMapping, len(refs)),
		Warnings: warnings,
	}
	for _, ref := range refs {
		m, err := store.Load(ref.Path)
		if err != nil {
			return nil, fmt.Errorf("child %q: %w", ref.Name, err)
		}
		agg.Children[ref.Name] = m
	}
	for _, w := range agg.Warnings {
		logs.Warn("%s", w)
	}
	return agg, nil
}

// ChildNames returns the aggregated child names in sorted order.
func (a *Aggregate) ChildNames() []string {
	names := make([]string, 0, len(a.Children))
	for n := range a.Children {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
