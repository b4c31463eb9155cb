// Package registry holds every module discovered during a run.
//
// The registry is written only while files are ingested, by a single
// goroutine. After ingestion it is read-only and may be queried from many
// goroutines at once.
package registry

import (
	"errors"
	"sync"

	"github.com/robert-at-pretension-io/vhier/internal/preprocess"
)

// ErrModuleNotFound is returned by Describe for unknown module names.
var ErrModuleNotFound = errors.New("module not found")

// InsertResult tells whether Insert kept the module or recorded a conflict.
type InsertResult int

const (
	Inserted InsertResult = iota
	ConflictRecorded
)

func (r InsertResult) String() string {
	if r == ConflictRecorded {
		return "conflict"
	}
	return "inserted"
}

// Registry maps module names to their first definition. The zero value is
// an empty registry with an empty define set.
type Registry struct {
	mu        sync.RWMutex
	modules   []Module
	index     map[string]int
	conflicts []Conflict
	defines   *preprocess.Defines
}

// New returns an empty registry whose define set is seeded with defines.
func New(defines ...string) *Registry {
	return &Registry{
		index:   make(map[string]int),
		defines: preprocess.NewDefines(defines...),
	}
}

// Insert adds m unless a module with the same name exists, in which case
// the new definition's location is appended to the conflict list and the
// existing module is left untouched.
func (r *Registry) Insert(m Module) InsertResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lazyInit()

	if _, ok := r.index[m.Name]; ok {
		r.conflicts = append(r.conflicts, Conflict{Name: m.Name, Location: m.Location})
		return ConflictRecorded
	}
	r.index[m.Name] = len(r.modules)
	r.modules = append(r.modules, m.clone())
	return Inserted
}

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return Module{}, false
	}
	return r.modules[i], true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[name]
	return ok
}

// Describe returns the raw attributes of a module.
func (r *Registry) Describe(name string) (Summary, error) {
	m, ok := r.Lookup(name)
	if !ok {
		return Summary{}, ErrModuleNotFound
	}
	return Summary{
		Name:      m.Name,
		Inputs:    append([]Port{}, m.Inputs...),
		Outputs:   append([]Port{}, m.Outputs...),
		Instances: append([]Instance{}, m.Instances...),
		File:      m.Location.File,
		Line:      m.Location.Line,
		Column:    m.Location.Column,
	}, nil
}

// Modules returns all modules in insertion order. The slice is a copy; the
// modules share their port and instance slices with the registry and must
// not be modified.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Names returns module names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.modules))
	for i, m := range r.modules {
		out[i] = m.Name
	}
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// Conflicts returns every duplicate definition seen, in order.
func (r *Registry) Conflicts() []Conflict {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// Defines returns the run-wide `define set used by ingestion.
func (r *Registry) Defines() *preprocess.Defines {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lazyInit()
	return r.defines
}

// lazyInit must be called with mu held for writing.
func (r *Registry) lazyInit() {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if r.defines == nil {
		r.defines = preprocess.NewDefines()
	}
}

// ReplaceAll discards the current contents, including conflicts, and
// loads modules in order. Later duplicates in modules are dropped.
func (r *Registry) ReplaceAll(modules []Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules = make([]Module, 0, len(modules))
	r.index = make(map[string]int, len(modules))
	r.conflicts = nil
	for _, m := range modules {
		if _, ok := r.index[m.Name]; ok {
			continue
		}
		r.index[m.Name] = len(r.modules)
		r.modules = append(r.modules, m.clone())
	}
}

// Clear drops every module and conflict. The define set is kept.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules = nil
	r.index = make(map[string]int)
	r.conflicts = nil
}
