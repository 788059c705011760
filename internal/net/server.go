// Package net serves a read-only JSON view of the branch stores over HTTP,
// for dashboards and tooling. Every request re-reads the stores; the server
// holds no state of its own.
package net

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"speck/internal/logs"
	"speck/internal/model"
	"speck/internal/multirepo"
)

// NewRouter builds the API for the repository at root. Mutations are
// deliberately absent; the store is only written by CLI invocations.
func NewRouter(root string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		agg, err := multirepo.AggregateStores(root)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"root":     agg.Root,
			"children": agg.Children,
			"warnings": agg.Warnings,
		})
	})

	r.Get("/api/repos", func(w http.ResponseWriter, req *http.Request) {
		refs, warnings, err := multirepo.DiscoverChildRepos(root)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"repos": refs, "warnings": warnings})
	})

	r.Get("/api/branches/{repo}", func(w http.ResponseWriter, req *http.Request) {
		repo := chi.URLParam(req, "repo")
		m, err := loadRepo(root, repo)
		if err != nil {
			writeError(w, err)
			return
		}
		if m == nil {
			http.Error(w, fmt.Sprintf("unknown repo %q", repo), http.StatusNotFound)
			return
		}
		writeJSON(w, m)
	})

	return r
}

func loadRepo(root, name string) (*model.BranchMapping, error) {
	agg, err := multirepo.AggregateStores(root)
	if err != nil {
		return nil, err
	}
	if name == "root" {
		return agg.Root, nil
	}
	return agg.Children[name], nil
}

// StartServer serves the read-only API on port (blocking).
func StartServer(root string, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: NewRouter(root),
	}
	logs.Info("Status API listening on :%d", port)
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logs.Warn("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	logs.Error("API error: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
