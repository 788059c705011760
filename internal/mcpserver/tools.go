package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"speck/internal/git"
	"speck/internal/model"
	"speck/internal/service"
	"speck/internal/stack"
	"speck/internal/store"
)

func newService(repoRoot string) (*service.Service, error) {
	return service.NewAt(repoRoot, git.New(repoRoot))
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// StatusTool handles speck_status: the context-aware overview.
type StatusTool struct {
	repoRoot string
}

func NewStatusTool(repoRoot string) *StatusTool { return &StatusTool{repoRoot: repoRoot} }

func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_status",
		mcp.WithDescription(
			"Show the branch-stack status for the current repository. "+
				"From a multi-repo root this includes every linked child repository, "+
				"each attributed separately.",
		),
	)
}

func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, err := newService(t.repoRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ov, err := svc.Overview()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ov)
}

// ListTool handles speck_list_branches, optionally filtered by spec id.
type ListTool struct {
	repoRoot string
}

func NewListTool(repoRoot string) *ListTool { return &ListTool{repoRoot: repoRoot} }

func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_list_branches",
		mcp.WithDescription("List tracked branches in this repository's store, optionally filtered by spec id."),
		mcp.WithString("spec",
			mcp.Description("Spec id filter, e.g. 009-multi-repo-stacked"),
		),
	)
}

func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := store.Load(t.repoRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := req.GetString("spec", "")
	if spec == "" {
		return jsonResult(m.Branches)
	}
	var out []model.BranchEntry
	for _, name := range stack.BranchesForSpec(m, spec) {
		if e := m.Entry(name); e != nil {
			out = append(out, *e)
		}
	}
	return jsonResult(out)
}

// CreateTool handles speck_create_branch.
type CreateTool struct {
	repoRoot string
}

func NewCreateTool(repoRoot string) *CreateTool { return &CreateTool{repoRoot: repoRoot} }

func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_create_branch",
		mcp.WithDescription(
			"Create a stacked branch: makes the git branch and records it in the store. "+
				"The base must exist in this repository; cross-repo bases are rejected.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Branch name to create"),
		),
		mcp.WithString("spec",
			mcp.Required(),
			mcp.Description("Spec id this branch implements (NNN-kebab-name)"),
		),
		mcp.WithString("base",
			mcp.Description("Base branch; defaults to the repository's default branch"),
		),
	)
}

func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	spec := req.GetString("spec", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	if spec == "" {
		return mcp.NewToolResultError("'spec' is required"), nil
	}

	svc, err := newService(t.repoRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := svc.CreateBranch(service.CreateOptions{
		Name:       name,
		SpecID:     spec,
		Base:       req.GetString("base", ""),
		NoCheckout: true, // never move the agent's working tree implicitly
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

// UpdateTool handles speck_update_status.
type UpdateTool struct {
	repoRoot string
}

func NewUpdateTool(repoRoot string) *UpdateTool { return &UpdateTool{repoRoot: repoRoot} }

func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("speck_update_status",
		mcp.WithDescription(
			"Update a tracked branch's status. merged and abandoned are terminal; "+
				"transitions away from them are rejected.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tracked branch name"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Enum("active", "submitted", "merged", "abandoned"),
			mcp.Description("New status"),
		),
		mcp.WithNumber("pr",
			mcp.Description("Pull request number to record, if one was opened"),
		),
	)
}

func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	status, err := model.ParseStatus(req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var pr *int
	if n := intArg(req, "pr", 0); n > 0 {
		pr = &n
	}

	svc, err := newService(t.repoRoot)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := svc.UpdateStatus(name, status, pr); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("branch %q is now %s", name, status)), nil
}
