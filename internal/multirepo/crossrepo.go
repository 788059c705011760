package multirepo

import (
	"fmt"
	"strings"

	"speck/internal/store"
)

// CrossRepoError rejects a base branch that exists only in a sibling
// repository. It is deliberately distinct from "branch does not exist" and
// enumerates the supported alternatives so the user does not have to guess.
type CrossRepoError struct {
	Base      string
	FoundIn   string // repository (link name or "root") that owns the branch
	LocalRepo string
}

func (e *CrossRepoError) Error() string {
	alternatives := []string{
		"merge that branch in its own repository first, then base on the updated default branch",
		"coordinate through a shared contract (spec) instead of a cross-repo branch dependency",
		"manage PR merge order manually across the two repositories",
	}
	return fmt.Sprintf("base branch %q belongs to repository %q, not %q; cross-repository stacking is not supported. Alternatives:\n  - %s",
		e.Base, e.FoundIn, e.LocalRepo, strings.Join(alternatives, "\n  - "))
}

// CheckBaseNotCrossRepo inspects the sibling repositories' stores for base.
// base is only ever validated against the local repository's git branches;
// this check exists solely to upgrade "not found" into a CrossRepoError with
// a useful message when the name lives in a sibling. From a child the
// root's own store counts as a sibling too.
func CheckBaseNotCrossRepo(ctx *Context, base string) error {
	if ctx.Kind == SingleRepo {
		return nil
	}

	refs, _, err := DiscoverChildRepos(ctx.RootPath)
	if err != nil {
		return err
	}

	localName := "root"
	type site struct{ name, path string }
	var sites []site
	if ctx.Kind == MultiRepoChild {
		sites = append(sites, site{"root", ctx.RootPath})
	}
	for _, ref := range refs {
		if samePath(ref.Path, ctx.RepoRoot) {
			localName = ref.Name
			continue
		}
		sites = append(sites, site{ref.Name, ref.Path})
	}

	for _, s := range sites {
		m, err := store.Load(s.path)
		if err != nil {
			continue // an unreadable sibling store never blocks local work
		}
		if m.Entry(base) != nil {
			return &CrossRepoError{Base: base, FoundIn: s.name, LocalRepo: localName}
		}
	}
	return nil
}
