package facts

import "testing"

func TestFilterTablesByFiles(t *testing.T) {
	tables := Tables{
		Files: []FileRow{
			{Path: "a.v"},
			{Path: "b.v"},
		},
		Modules: []ModuleRow{
			{Name: "a", File: "a.v"},
			{Name: "b", File: "b.v"},
		},
		Ports: []PortRow{
			{Module: "a", Name: "clk", File: "a.v"},
			{Module: "b", Name: "rst", File: "b.v"},
		},
		Conflicts: []ConflictRow{
			{Name: "b", File: "c.v", FirstFile: "b.v"},
		},
		Defines: []DefineRow{{Name: "SIM"}},
	}

	files := map[string]bool{"a.v": true}
	filtered := FilterTablesByFiles(tables, files)

	if len(filtered.Files) != 1 || filtered.Files[0].Path != "a.v" {
		t.Fatalf("expected only a.v file row, got %#v", filtered.Files)
	}
	if len(filtered.Modules) != 1 || filtered.Modules[0].File != "a.v" {
		t.Fatalf("expected only a.v module rows, got %#v", filtered.Modules)
	}
	if len(filtered.Ports) != 1 || filtered.Ports[0].File != "a.v" {
		t.Fatalf("expected only a.v port rows, got %#v", filtered.Ports)
	}
	if len(filtered.Conflicts) != 0 {
		t.Fatalf("expected no conflict rows, got %#v", filtered.Conflicts)
	}
	if len(filtered.Defines) != 1 {
		t.Fatalf("expected defines kept, got %#v", filtered.Defines)
	}

	filtered = FilterTablesByFiles(tables, map[string]bool{"b.v": true})
	if len(filtered.Conflicts) != 1 {
		t.Fatalf("expected conflict kept by first file, got %#v", filtered.Conflicts)
	}
}

func TestFilterDeltaByFilesEmptySet(t *testing.T) {
	delta := ComputeDelta(Tables{}, BuildTables(sampleRegistry()))
	filtered := FilterDeltaByFiles(delta, nil)
	if !filtered.Empty() {
		t.Fatalf("expected empty delta for empty file set, got %+v", filtered)
	}
}
