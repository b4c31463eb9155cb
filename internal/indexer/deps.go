package indexer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// usersGraph maps an instantiated module type to the modules that
// instantiate it.
type usersGraph map[string]map[string]bool

func buildUsersGraph(modules []registry.Module) usersGraph {
	graph := make(usersGraph)
	for _, m := range modules {
		for _, inst := range m.Instances {
			if inst.Type == "" || inst.Type == m.Name {
				continue
			}
			if graph[inst.Type] == nil {
				graph[inst.Type] = make(map[string]bool)
			}
			graph[inst.Type][m.Name] = true
		}
	}
	return graph
}

// ImpactReport lists, level by level, the modules that transitively
// instantiate Root. Level 1 instantiates Root directly.
type ImpactReport struct {
	Root   string     `json:"root"`
	Levels [][]string `json:"levels"`
}

// Users computes the impact report for module over the registry.
func Users(reg *registry.Registry, module string) ImpactReport {
	return computeImpact(module, buildUsersGraph(reg.Modules()))
}

func computeImpact(root string, users usersGraph) ImpactReport {
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var levels [][]string

	for len(frontier) > 0 {
		var next []string
		for _, m := range frontier {
			for user := range users[m] {
				if visited[user] {
					continue
				}
				visited[user] = true
				next = append(next, user)
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Strings(next)
		levels = append(levels, next)
		frontier = next
	}

	return ImpactReport{Root: root, Levels: levels}
}

// FormatImpactReport renders a report as indented text.
func FormatImpactReport(report ImpactReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s\n", report.Root))
	if len(report.Levels) == 0 {
		b.WriteString("    (no users)\n")
	}
	for i, level := range report.Levels {
		b.WriteString(fmt.Sprintf("    level %d (%d): %s\n", i+1, len(level), strings.Join(level, ", ")))
	}
	return b.String()
}
