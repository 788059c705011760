package service

import (
	"speck/internal/model"
	"speck/internal/multirepo"
	"speck/internal/store"
)

// RepoView is one repository's slice of an overview, always attributed to
// its own repository; indexes are never merged across repos.
type RepoView struct {
	Name     string               `json:"name"`
	Kind     string               `json:"kind"` // "root", "child", or "single"
	Mapping  *model.BranchMapping `json:"mapping"`
	HasStore bool                 `json:"hasStore"`
}

// Overview is the context-aware status result shared by the status
// command, the HTTP API, and the MCP tools.
type Overview struct {
	Context  multirepo.Kind `json:"context"`
	Repos    []RepoView     `json:"repos"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Overview builds the unified listing for the current context. From a
// multi-repo root it fans out over every discovered child; a child without
// a store still appears, with an empty mapping.
func (s *Service) Overview() (*Overview, error) {
	switch s.Ctx.Kind {
	case multirepo.MultiRepoRoot:
		agg, err := multirepo.AggregateStores(s.Ctx.RootPath)
		if err != nil {
			return nil, err
		}
		ov := &Overview{Context: s.Ctx.Kind, Warnings: agg.Warnings}
		ov.Repos = append(ov.Repos, RepoView{
			Name: "root", Kind: "root", Mapping: agg.Root,
			HasStore: store.Exists(s.Ctx.RootPath),
		})
		refs, _, err := multirepo.DiscoverChildRepos(s.Ctx.RootPath)
		if err != nil {
			return nil, err
		}
		paths := map[string]string{}
		for _, r := range refs {
			paths[r.Name] = r.Path
		}
		for _, name := range agg.ChildNames() {
			ov.Repos = append(ov.Repos, RepoView{
				Name: name, Kind: "child", Mapping: agg.Children[name],
				HasStore: store.Exists(paths[name]),
			})
		}
		return ov, nil

	default:
		m, err := store.Load(s.RepoRoot)
		if err != nil {
			return nil, err
		}
		kind := "single"
		if s.Ctx.Kind == multirepo.MultiRepoChild {
			kind = "child"
		}
		ov := &Overview{Context: s.Ctx.Kind}
		if s.Ctx.Orphaned {
			ov.Warnings = append(ov.Warnings,
				"this child repository's root no longer links back to it; the store is orphaned")
		}
		ov.Repos = append(ov.Repos, RepoView{
			Name: "local", Kind: kind, Mapping: m, HasStore: store.Exists(s.RepoRoot),
		})
		return ov, nil
	}
}
