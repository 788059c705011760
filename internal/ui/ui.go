// Package ui holds the lipgloss styling for command output: usage
// headings, status badges, and the stack tree renderer.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"speck/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	repoStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	specStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	statusStyles = map[model.Status]lipgloss.Style{
		model.StatusActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		model.StatusSubmitted: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		model.StatusMerged:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		model.StatusAbandoned: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
	}
)

// ColorHeadings styles the section headings of a cobra usage template.
func ColorHeadings(template string) string {
	for _, h := range []string{"Usage:", "Aliases:", "Examples:", "Available Commands:", "Flags:", "Global Flags:", "Additional help topics:"} {
		template = strings.ReplaceAll(template, h, headingStyle.Render(h))
	}
	return template
}

// RepoHeading renders a repository name for aggregate listings.
func RepoHeading(name string) string {
	return repoStyle.Render(name)
}

// StatusBadge renders a colored status label.
func StatusBadge(s model.Status) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

// Warning renders a non-fatal warning line.
func Warning(msg string) string {
	return warnStyle.Render("warning: " + msg)
}

// RenderEntryLine formats one branch entry for flat listings.
func RenderEntryLine(e model.BranchEntry, current string) string {
	name := branchStyle.Render(e.Name)
	if e.Name == current {
		name = currentStyle.Render("* " + e.Name)
	}
	pr := ""
	if e.PR != nil {
		pr = fmt.Sprintf("  PR #%d", *e.PR)
	}
	return fmt.Sprintf("%s  [%s]%s  %s", name, StatusBadge(e.Status), pr, specStyle.Render(e.SpecID))
}

// RenderTree draws the stack as a tree rooted at untracked bases (e.g.
// main), following baseBranch edges.
func RenderTree(m *model.BranchMapping, current string) string {
	children := map[string][]string{}
	tracked := map[string]bool{}
	for _, b := range m.Branches {
		tracked[b.Name] = true
	}
	var roots []string
	seenRoot := map[string]bool{}
	for _, b := range m.Branches {
		children[b.BaseBranch] = append(children[b.BaseBranch], b.Name)
		if !tracked[b.BaseBranch] && !seenRoot[b.BaseBranch] {
			roots = append(roots, b.BaseBranch)
			seenRoot[b.BaseBranch] = true
		}
	}
	sort.Strings(roots)

	var sb strings.Builder
	visited := map[string]bool{}
	for _, root := range roots {
		sb.WriteString(specStyle.Render(root) + "\n")
		renderSubtree(&sb, m, children, root, 1, current, visited)
	}
	if sb.Len() == 0 {
		return specStyle.Render("(no tracked branches)")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderSubtree(sb *strings.Builder, m *model.BranchMapping, children map[string][]string, name string, depth int, current string, visited map[string]bool) {
	for _, child := range children[name] {
		if visited[child] {
			continue
		}
		visited[child] = true
		entry := m.Entry(child)
		indent := strings.Repeat("  ", depth)
		sb.WriteString(indent + "└─ " + RenderEntryLine(*entry, current) + "\n")
		renderSubtree(sb, m, children, child, depth+1, current, visited)
	}
}
