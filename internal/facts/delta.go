package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added" yaml:"added"`
	Removed Tables `json:"removed" yaml:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// Empty reports whether the delta has no rows.
func (d Delta) Empty() bool {
	return d.Added.Len() == 0 && d.Removed.Len() == 0
}

// Len returns the total number of rows over all relations.
func (t Tables) Len() int {
	return len(t.Files) + len(t.Modules) + len(t.Ports) + len(t.Instances) + len(t.Conflicts) + len(t.Defines)
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Files = diffRows(from.Files, to.Files, func(r FileRow) string {
		return r.Path + "|" + strconv.Itoa(r.Modules)
	})
	out.Modules = diffRows(from.Modules, to.Modules, func(r ModuleRow) string {
		return r.Name + "|" + r.File + "|" + strconv.Itoa(r.Line) + "|" + strconv.Itoa(r.Column)
	})
	out.Ports = diffRows(from.Ports, to.Ports, func(r PortRow) string {
		return r.Module + "|" + r.Name + "|" + r.Direction + "|" + r.Width + "|" + r.File
	})
	out.Instances = diffRows(from.Instances, to.Instances, func(r InstanceRow) string {
		return r.Module + "|" + r.Name + "|" + r.Type + "|" + strconv.Itoa(r.Index) + "|" +
			strconv.FormatBool(r.Defined) + "|" + r.File + "|" + strconv.Itoa(r.Line)
	})
	out.Conflicts = diffRows(from.Conflicts, to.Conflicts, func(r ConflictRow) string {
		return r.Name + "|" + r.File + "|" + strconv.Itoa(r.Line) + "|" + strconv.Itoa(r.Column) + "|" + r.FirstFile
	})
	out.Defines = diffRows(from.Defines, to.Defines, func(r DefineRow) string {
		return r.Name
	})

	return out
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}
