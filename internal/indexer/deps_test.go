package indexer

import (
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

func TestImpactExpansion(t *testing.T) {
	reg := registry.New()
	reg.Insert(registry.Module{Name: "leaf"})
	reg.Insert(registry.Module{Name: "alu", Instances: []registry.Instance{{Type: "leaf", Name: "u0"}, {Type: "leaf", Name: "u1"}}})
	reg.Insert(registry.Module{Name: "fpu", Instances: []registry.Instance{{Type: "leaf", Name: "u0"}}})
	reg.Insert(registry.Module{Name: "core", Instances: []registry.Instance{{Type: "alu", Name: "u_alu"}, {Type: "fpu", Name: "u_fpu"}}})
	reg.Insert(registry.Module{Name: "soc", Instances: []registry.Instance{{Type: "core", Name: "u_core"}, {Type: "leaf", Name: "u_spare"}}})

	report := Users(reg, "leaf")

	if len(report.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %d: %v", len(report.Levels), report.Levels)
	}
	level := report.Levels[0]
	if len(level) != 3 || level[0] != "alu" || level[1] != "fpu" || level[2] != "soc" {
		t.Fatalf("unexpected direct users: %v", level)
	}
	if report.Levels[1][0] != "core" {
		t.Fatalf("unexpected second level: %v", report.Levels[1])
	}
}

func TestImpactStopsOnCycles(t *testing.T) {
	reg := registry.New()
	reg.Insert(registry.Module{Name: "a", Instances: []registry.Instance{{Type: "b", Name: "u_b"}}})
	reg.Insert(registry.Module{Name: "b", Instances: []registry.Instance{{Type: "a", Name: "u_a"}, {Type: "b", Name: "u_self"}}})

	report := Users(reg, "a")
	if len(report.Levels) != 1 || report.Levels[0][0] != "b" {
		t.Fatalf("unexpected levels for cyclic graph: %v", report.Levels)
	}

	out := FormatImpactReport(report)
	if !strings.Contains(out, "level 1 (1): b") {
		t.Fatalf("unexpected formatted report:\n%s", out)
	}
	if !strings.Contains(FormatImpactReport(Users(reg, "nobody")), "(no users)") {
		t.Fatalf("expected no-users marker")
	}
}
