package facts

import (
	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// Tables is the relational fact model consumed by the validator and the
// policy engine. Each slice is a relation (table) with flat rows.
type Tables struct {
	Files     []FileRow     `json:"files" yaml:"files"`
	Modules   []ModuleRow   `json:"modules" yaml:"modules"`
	Ports     []PortRow     `json:"ports" yaml:"ports"`
	Instances []InstanceRow `json:"instances" yaml:"instances"`
	Conflicts []ConflictRow `json:"conflicts" yaml:"conflicts"`
	Defines   []DefineRow   `json:"defines" yaml:"defines"`
}

type FileRow struct {
	Path    string `json:"path" yaml:"path"`
	Modules int    `json:"modules" yaml:"modules"`
}

type ModuleRow struct {
	Name   string `json:"name" yaml:"name"`
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// PortRow holds one declared port. An inout port appears once.
type PortRow struct {
	Module    string `json:"module" yaml:"module"`
	Name      string `json:"name" yaml:"name"`
	Direction string `json:"direction" yaml:"direction"`
	Width     string `json:"width" yaml:"width"`
	File      string `json:"file" yaml:"file"`
}

type InstanceRow struct {
	Module  string `json:"module" yaml:"module"`
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type" yaml:"type"`
	Index   int    `json:"index" yaml:"index"`
	Defined bool   `json:"defined" yaml:"defined"`
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line" yaml:"line"`
}

// ConflictRow is a duplicate module definition; FirstFile holds the kept one.
type ConflictRow struct {
	Name      string `json:"name" yaml:"name"`
	File      string `json:"file" yaml:"file"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	FirstFile string `json:"first_file" yaml:"first_file"`
}

type DefineRow struct {
	Name  string `json:"name" yaml:"name"`
	Order int    `json:"order" yaml:"order"`
}

// BuildTables flattens a registry into fact tables. Rows follow registry
// order; instance lines are those of the enclosing module definition.
func BuildTables(reg *registry.Registry) Tables {
	tables := emptyTables()

	modules := reg.Modules()
	fileIndex := make(map[string]int)
	for _, m := range modules {
		file := m.Location.File
		if i, ok := fileIndex[file]; ok {
			tables.Files[i].Modules++
		} else {
			fileIndex[file] = len(tables.Files)
			tables.Files = append(tables.Files, FileRow{Path: file, Modules: 1})
		}

		tables.Modules = append(tables.Modules, ModuleRow{
			Name:   m.Name,
			File:   file,
			Line:   m.Location.Line,
			Column: m.Location.Column,
		})

		for _, p := range m.Inputs {
			tables.Ports = append(tables.Ports, portRow(m, p))
		}
		for _, p := range m.Outputs {
			if p.Direction == registry.DirInout {
				continue
			}
			tables.Ports = append(tables.Ports, portRow(m, p))
		}

		for i, inst := range m.Instances {
			tables.Instances = append(tables.Instances, InstanceRow{
				Module:  m.Name,
				Name:    inst.Name,
				Type:    inst.Type,
				Index:   i,
				Defined: reg.Has(inst.Type),
				File:    file,
				Line:    m.Location.Line,
			})
		}
	}

	for _, c := range reg.Conflicts() {
		row := ConflictRow{
			Name:   c.Name,
			File:   c.Location.File,
			Line:   c.Location.Line,
			Column: c.Location.Column,
		}
		if kept, ok := reg.Lookup(c.Name); ok {
			row.FirstFile = kept.Location.File
		}
		tables.Conflicts = append(tables.Conflicts, row)
	}

	for i, name := range reg.Defines().Names() {
		tables.Defines = append(tables.Defines, DefineRow{Name: name, Order: i})
	}

	return tables
}

func portRow(m registry.Module, p registry.Port) PortRow {
	return PortRow{
		Module:    m.Name,
		Name:      p.Name,
		Direction: p.Direction,
		Width:     p.Width,
		File:      m.Location.File,
	}
}

func emptyTables() Tables {
	return Tables{
		Files:     []FileRow{},
		Modules:   []ModuleRow{},
		Ports:     []PortRow{},
		Instances: []InstanceRow{},
		Conflicts: []ConflictRow{},
		Defines:   []DefineRow{},
	}
}

// Normalize replaces nil relations with empty ones so encoders emit [] not null.
func Normalize(t Tables) Tables {
	out := emptyTables()
	out.Files = append(out.Files, t.Files...)
	out.Modules = append(out.Modules, t.Modules...)
	out.Ports = append(out.Ports, t.Ports...)
	out.Instances = append(out.Instances, t.Instances...)
	out.Conflicts = append(out.Conflicts, t.Conflicts...)
	out.Defines = append(out.Defines, t.Defines...)
	return out
}
