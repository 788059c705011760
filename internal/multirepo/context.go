// Package multirepo classifies the working directory (single-repo,
// multi-repo root, multi-repo child) via the .speck symlink convention and
// aggregates the per-repository stores into a unified read-only view.
//
// The context is computed once per invocation and passed by parameter; there
// is no module-level cache.
package multirepo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"speck/internal/config"
	"speck/internal/store"
)

// Kind classifies a working directory.
type Kind string

const (
	SingleRepo     Kind = "single-repo"
	MultiRepoRoot  Kind = "multi-repo-root"
	MultiRepoChild Kind = "multi-repo-child"
)

const (
	// RootLinkName is the symlink inside a child's .speck dir pointing at
	// the multi-repo root's working directory.
	RootLinkName = "root"
	// ReposDirName holds the root's per-child symlinks.
	ReposDirName = "repos"
)

// Context is the per-invocation classification of the working directory.
type Context struct {
	Kind     Kind
	RepoRoot string // the repository the command runs in
	RootPath string // multi-repo root working dir; equals RepoRoot unless Kind is child

	// ParentSpecID is the default parent spec for new entries in a child
	// repository, read from the child's local config when it was linked.
	ParentSpecID string

	// Orphaned is set on a child whose root no longer links back to it.
	// The store stays; the caller surfaces a warning.
	Orphaned bool
}

// ContextError is a symlink-resolution failure during context detection.
// It is fail-fast: the caller gets no partial context and no silent
// fallback to single-repo.
type ContextError struct {
	Link   string
	Reason string
	Hint   string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("multi-repo link %s is broken: %s (%s)", e.Link, e.Reason, e.Hint)
}

func rootLinkPath(repoRoot string) string {
	return filepath.Join(repoRoot, store.SpeckDirName, RootLinkName)
}

func reposDirPath(repoRoot string) string {
	return filepath.Join(repoRoot, store.SpeckDirName, ReposDirName)
}

// DetectContext inspects repoRoot for the symlink convention. Any
// inspection failure other than plain absence -- a broken link, a
// permission error, something shadowing the .speck directory -- is a hard
// error, never a fallback to single-repo.
func DetectContext(repoRoot string) (*Context, error) {
	link := rootLinkPath(repoRoot)
	fi, err := os.Lstat(link)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ContextError{
			Link:   link,
			Reason: err.Error(),
			Hint:   "make " + filepath.Join(repoRoot, store.SpeckDirName) + " an inspectable directory",
		}
	}
	if err == nil && fi.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(link)
		if err != nil {
			return nil, &ContextError{
				Link:   link,
				Reason: err.Error(),
				Hint:   "remove the link and re-run `speck link` from the root, or restore the root checkout",
			}
		}
		ctx := &Context{
			Kind:         MultiRepoChild,
			RepoRoot:     repoRoot,
			RootPath:     target,
			ParentSpecID: config.GetConfigValueIn(repoRoot, "parent_spec"),
		}
		ctx.Orphaned = !rootLinksBack(target, repoRoot)
		return ctx, nil
	}

	reposDir := reposDirPath(repoRoot)
	entries, err := os.ReadDir(reposDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &ContextError{
			Link:   reposDir,
			Reason: err.Error(),
			Hint:   "fix permissions so the child links can be enumerated",
		}
	}
	for _, e := range entries {
		if e.Type()&os.ModeSymlink != 0 {
			return &Context{Kind: MultiRepoRoot, RepoRoot: repoRoot, RootPath: repoRoot}, nil
		}
	}
	return &Context{Kind: SingleRepo, RepoRoot: repoRoot, RootPath: repoRoot}, nil
}

// samePath compares two directories after symlink resolution.
func samePath(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		ra = a
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		rb = b
	}
	return ra == rb
}

// rootLinksBack reports whether any child link at the root resolves to
// childRoot. Best effort: resolution errors here only affect the orphan
// flag, not context detection.
func rootLinksBack(rootPath, childRoot string) bool {
	entries, err := os.ReadDir(reposDirPath(rootPath))
	if err != nil {
		return false
	}
	want, err := filepath.EvalSymlinks(childRoot)
	if err != nil {
		want = childRoot
	}
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		target, err := filepath.EvalSymlinks(filepath.Join(reposDirPath(rootPath), e.Name()))
		if err == nil && target == want {
			return true
		}
	}
	return false
}
