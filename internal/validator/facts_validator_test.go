package validator

import (
	"encoding/json"
	"testing"

	"github.com/robert-at-pretension-io/vhier/internal/facts"
	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

func TestFactsValidatorAcceptsBuiltTables(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("new facts validator: %v", err)
	}

	reg := registry.New("SIM")
	reg.Insert(registry.Module{
		Name:      "top",
		Inputs:    []registry.Port{{Direction: registry.DirInput, Name: "clk"}},
		Outputs:   []registry.Port{{Direction: registry.DirOutput, Name: "q", Width: "[3:0]"}},
		Instances: []registry.Instance{{Type: "leaf", Name: "u0"}, {Type: "missing", Name: "u1"}},
		Location:  registry.Location{File: "top.v", Line: 1, Column: 11},
	})
	reg.Insert(registry.Module{Name: "leaf", Location: registry.Location{File: "leaf.v", Line: 2, Column: 12}})
	reg.Insert(registry.Module{Name: "leaf", Location: registry.Location{File: "leaf2.v", Line: 5, Column: 12}})

	tables := facts.BuildTables(reg)
	if err := v.Validate(tables); err != nil {
		t.Fatalf("expected valid tables, got error: %v", err)
	}

	data, err := json.Marshal(tables)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := v.ValidateJSON(data); err != nil {
		t.Fatalf("expected valid JSON tables, got error: %v", err)
	}
}

func TestFactsValidatorRejectsInvalidTables(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("new facts validator: %v", err)
	}

	tables := facts.Tables{
		Files: []facts.FileRow{{Path: "", Modules: 1}},
		Modules: []facts.ModuleRow{{
			Name: "top",
			File: "top.v",
			Line: 0,
		}},
	}

	if err := v.Validate(tables); err == nil {
		t.Fatalf("expected validation error, got nil")
	}
	if errs := v.ValidationErrors(tables); len(errs) < 2 {
		t.Fatalf("expected every failure listed, got %v", errs)
	}
}
