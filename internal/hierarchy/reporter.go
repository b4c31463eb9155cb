// Package hierarchy answers structural questions over a populated registry:
// the instantiation tree below a module, and every path from a scope down
// to instances of a given module.
//
// Both walks are recursive and unmemoised. Neither detects instantiation
// cycles unless CycleGuard is set; without it a cyclic design recurses
// until MaxDepth, or without bound when MaxDepth is 0.
package hierarchy

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// TreeOptions controls a hierarchy report.
type TreeOptions struct {
	// MaxDepth limits the number of instance levels below the root (0 = unlimited)
	MaxDepth int

	// ReportUnused computes modules and files the walk never reached
	ReportUnused bool

	// CycleGuard stops descent into a module already on the walk stack
	CycleGuard bool
}

// TreeLine is one instance in the tree. Depth 1 is a direct child of the root.
type TreeLine struct {
	Depth    int    `json:"depth"`
	Instance string `json:"instance"`
	Type     string `json:"type"`
}

// TreeResult is everything one report produced.
type TreeResult struct {
	Root        string            `json:"root"`
	Lines       []TreeLine        `json:"lines"`
	UsedFiles   []string          `json:"used_files"`
	Unused      []registry.Module `json:"unused,omitempty"`
	UnusedFiles []string          `json:"unused_files,omitempty"`
	CyclesCut   []string          `json:"cycles_cut,omitempty"`
}

// Reporter renders the instantiation tree below a module. Sinks left nil
// are skipped.
type Reporter struct {
	Registry *registry.Registry
	Logger   *log.Logger

	// Tree receives the tab-indented report
	Tree io.Writer

	// Console receives the same lines indented with "| " per level
	Console io.Writer

	// UnusedModules and UnusedFiles are written only with ReportUnused
	UnusedModules io.Writer
	UnusedFiles   io.Writer
}

// NewReporter creates a Reporter over reg with no sinks attached.
func NewReporter(reg *registry.Registry, logger *log.Logger) *Reporter {
	return &Reporter{Registry: reg, Logger: logger}
}

func (r *Reporter) logger() *log.Logger {
	if r.Logger == nil {
		r.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "hier"})
	}
	return r.Logger
}

type treeWalker struct {
	reg      *registry.Registry
	opts     TreeOptions
	logger   *log.Logger
	lines    []TreeLine
	used     map[string]bool
	files    map[string]bool
	fileList []string
	onStack  map[string]bool
	cut      []string
}

// Report walks the tree below root depth-first, in instance declaration
// order, and writes it to the attached sinks. An undefined root yields a
// report with no lines.
func (r *Reporter) Report(root string, opts TreeOptions) (TreeResult, error) {
	logger := r.logger()
	logger.Info("reporting hierarchy below module", "module", root)

	w := &treeWalker{
		reg:     r.Registry,
		opts:    opts,
		logger:  logger,
		used:    map[string]bool{root: true},
		files:   make(map[string]bool),
		onStack: make(map[string]bool),
	}
	w.visit(root, 0)

	result := TreeResult{
		Root:      root,
		Lines:     w.lines,
		UsedFiles: w.fileList,
		CyclesCut: w.cut,
	}
	if opts.ReportUnused {
		result.Unused, result.UnusedFiles = w.unused()
	}

	if err := r.write(result, opts); err != nil {
		return result, err
	}
	logger.Info("end of hierarchy report", "module", root, "instances", len(result.Lines))
	return result, nil
}

func (w *treeWalker) visit(name string, depth int) {
	m, ok := w.reg.Lookup(name)
	if !ok {
		return
	}
	if !w.files[m.Location.File] {
		w.files[m.Location.File] = true
		w.fileList = append(w.fileList, m.Location.File)
	}

	if w.opts.CycleGuard {
		w.onStack[name] = true
		defer delete(w.onStack, name)
	}

	for _, inst := range m.Instances {
		w.lines = append(w.lines, TreeLine{Depth: depth + 1, Instance: inst.Name, Type: inst.Type})
		w.used[inst.Type] = true

		if w.opts.MaxDepth != 0 && depth >= w.opts.MaxDepth-1 {
			continue
		}
		if w.opts.CycleGuard && w.onStack[inst.Type] {
			w.logger.Warn("instantiation cycle, not descending", "module", name, "instance", inst.Name, "type", inst.Type)
			w.cut = append(w.cut, name+"."+inst.Name)
			continue
		}
		w.visit(inst.Type, depth+1)
	}
}

func (w *treeWalker) unused() ([]registry.Module, []string) {
	var modules []registry.Module
	var files []string
	seen := make(map[string]bool)
	for _, m := range w.reg.Modules() {
		if w.used[m.Name] {
			continue
		}
		modules = append(modules, m)
		f := m.Location.File
		if !seen[f] && !w.files[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return modules, files
}

func (r *Reporter) write(result TreeResult, opts TreeOptions) error {
	if r.Tree != nil {
		if err := WriteTree(r.Tree, result, opts.MaxDepth); err != nil {
			return fmt.Errorf("writing hierarchy: %w", err)
		}
	}
	if r.Console != nil {
		if err := WriteConsole(r.Console, result); err != nil {
			return fmt.Errorf("writing hierarchy: %w", err)
		}
	}
	if !opts.ReportUnused {
		return nil
	}

	logger := r.logger()
	for _, m := range result.Unused {
		logger.Info(UnusedModuleLine(m))
	}
	if r.UnusedModules != nil {
		for _, m := range result.Unused {
			if _, err := fmt.Fprintln(r.UnusedModules, UnusedModuleLine(m)); err != nil {
				return fmt.Errorf("writing unused modules: %w", err)
			}
		}
	}
	if r.UnusedFiles != nil {
		for _, f := range result.UnusedFiles {
			if _, err := fmt.Fprintf(r.UnusedFiles, "No modules from this file were used : %s\n", f); err != nil {
				return fmt.Errorf("writing unused files: %w", err)
			}
		}
	}
	return nil
}

// WriteTree writes the file form of a report: an optional max-depth
// header, the root, then one tab per level before "name (type)".
func WriteTree(w io.Writer, result TreeResult, maxDepth int) error {
	var b strings.Builder
	if maxDepth != 0 {
		fmt.Fprintf(&b, "INFO : max_depth set to %d\n\n", maxDepth)
	}
	b.WriteString(result.Root)
	b.WriteString("\n")
	for _, l := range result.Lines {
		fmt.Fprintf(&b, "%s%s (%s)\n", strings.Repeat("\t", l.Depth), l.Instance, l.Type)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteConsole writes the console form of a report, using "| " per level
// and colouring module types.
func WriteConsole(w io.Writer, result TreeResult) error {
	typeColor := color.New(color.FgCyan).SprintFunc()
	rootColor := color.New(color.Bold).SprintFunc()

	var b strings.Builder
	b.WriteString(rootColor(result.Root))
	b.WriteString("\n")
	for _, l := range result.Lines {
		fmt.Fprintf(&b, "%s%s (%s)\n", strings.Repeat("| ", l.Depth), l.Instance, typeColor(l.Type))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// UnusedModuleLine formats one entry of the unused-module report.
func UnusedModuleLine(m registry.Module) string {
	return fmt.Sprintf("module type %s was unused (%s)", m.Name, m.Location)
}
