package multirepo

import (
	"fmt"
	"os"
	"path/filepath"

	"speck/internal/config"
	"speck/internal/logs"
	"speck/internal/model"
	"speck/internal/store"
)

// LinkChild registers childPath as a child of rootPath: a symlink at
// .speck/repos/<name> on the root side and a .speck/root symlink on the
// child side. parentSpec, when non-empty, becomes the child's default
// parent spec for new entries.
func LinkChild(rootPath, childPath, name, parentSpec string) error {
	childAbs, err := filepath.Abs(childPath)
	if err != nil {
		return fmt.Errorf("failed to resolve child path %q: %w", childPath, err)
	}
	if _, err := os.Stat(filepath.Join(childAbs, ".git")); err != nil {
		return fmt.Errorf("%s is not a git repository (missing .git); initialize it first", childAbs)
	}
	if name == "" {
		name = filepath.Base(childAbs)
	}
	if parentSpec != "" && !model.ValidSpecID(parentSpec) {
		return fmt.Errorf("parent spec %q is not in NNN-kebab-name form", parentSpec)
	}

	reposDir := reposDirPath(rootPath)
	if err := os.MkdirAll(reposDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", reposDir, err)
	}
	link := filepath.Join(reposDir, name)
	if _, err := os.Lstat(link); err == nil {
		return fmt.Errorf("a child named %q is already linked; `speck unlink %s` first", name, name)
	}
	if err := os.Symlink(childAbs, link); err != nil {
		return fmt.Errorf("failed to create child link %s: %w", link, err)
	}

	childSpeck := filepath.Join(childAbs, store.SpeckDirName)
	if err := os.MkdirAll(childSpeck, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", childSpeck, err)
	}
	rootAbs, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	backLink := filepath.Join(childSpeck, RootLinkName)
	if _, err := os.Lstat(backLink); err == nil {
		os.Remove(link)
		return fmt.Errorf("%s already links to a root; unlink it there first", childAbs)
	}
	if err := os.Symlink(rootAbs, backLink); err != nil {
		os.Remove(link)
		return fmt.Errorf("failed to create root link %s: %w", backLink, err)
	}

	if parentSpec != "" {
		if err := config.SetConfigValueIn(childAbs, "parent_spec", parentSpec); err != nil {
			return fmt.Errorf("failed to record parent spec in child config: %w", err)
		}
	}
	logs.Info("Linked child repo %q -> %s", name, childAbs)
	return nil
}

// UnlinkChild removes the root-side link and, when reachable, the child's
// back-link. The child's store is left in place and flagged as orphaned,
// never deleted.
func UnlinkChild(rootPath, name string) (orphanedStore string, err error) {
	link := filepath.Join(reposDirPath(rootPath), name)
	if _, err := os.Lstat(link); err != nil {
		return "", fmt.Errorf("no child named %q is linked at this root", name)
	}
	target, resolveErr := filepath.EvalSymlinks(link)
	if err := os.Remove(link); err != nil {
		return "", fmt.Errorf("failed to remove child link %s: %w", link, err)
	}
	if resolveErr != nil {
		logs.Warn("Child link %q was already dangling; nothing to clean on the child side", name)
		return "", nil
	}

	backLink := filepath.Join(target, store.SpeckDirName, RootLinkName)
	if _, err := os.Lstat(backLink); err == nil {
		if err := os.Remove(backLink); err != nil {
			logs.Warn("Failed to remove root link on child %q: %v", name, err)
		}
	}
	if store.Exists(target) {
		orphanedStore = store.Path(target)
		logs.Warn("Child %q still has a store at %s; it is orphaned, not deleted", name, orphanedStore)
	}
	return orphanedStore, nil
}
