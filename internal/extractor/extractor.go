package extractor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/robert-at-pretension-io/vhier/internal/preprocess"
	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

var (
	// ErrUnmatchedEndmodule is returned when endmodule appears outside a module.
	ErrUnmatchedEndmodule = errors.New("endmodule detected before a module definition was established")

	// ErrUnterminatedModule is returned when a file ends inside a module.
	ErrUnterminatedModule = errors.New("module did not have a corresponding endmodule")
)

// ParseError is a fatal structural error in a source file.
type ParseError struct {
	File   string
	Line   int
	Module string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("%s:%d: module %q: %v", e.File, e.Line, e.Module, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor recognises module definitions in Verilog source text. It keeps
// no per-file state between calls; the define set it holds is shared by
// every file of a run.
type Extractor struct {
	// Logger receives non-fatal warnings. Defaults to stderr.
	Logger *log.Logger

	defines *preprocess.Defines
}

// FileFacts contains every module recognised in one source file.
type FileFacts struct {
	File    string
	Lines   int
	Modules []registry.Module
}

// New creates an Extractor that reads and extends defines.
func New(defines *preprocess.Defines) *Extractor {
	if defines == nil {
		defines = preprocess.NewDefines()
	}
	return &Extractor{defines: defines}
}

// Extract reads a Verilog file and returns its modules.
func (e *Extractor) Extract(filePath string) (FileFacts, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return FileFacts{File: filePath}, fmt.Errorf("reading file: %w", err)
	}
	return e.ExtractSource(filePath, content)
}

func (e *Extractor) logger() *log.Logger {
	if e.Logger == nil {
		e.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "extract"})
	}
	return e.Logger
}

// ExtractSource runs the recogniser over in-memory content attributed to
// filePath. On a structural error no modules are returned.
func (e *Extractor) ExtractSource(filePath string, content []byte) (FileFacts, error) {
	facts := FileFacts{File: filePath}
	filter := preprocess.NewFilter(e.defines)
	tr := tracker{file: filePath}

	lines := splitLines(string(content))
	facts.Lines = len(lines)
	for i, raw := range lines {
		if err := tr.feed(filter.Line(raw), i+1); err != nil {
			return FileFacts{File: filePath, Lines: len(lines)}, err
		}
	}
	// Text after an unclosed comment or conditional was never seen.
	if filter.InBlockComment() {
		e.logger().Warn("file ends inside a block comment", "file", filePath)
	}
	if n := filter.PendingConditionals(); n > 0 {
		e.logger().Warn("file ends with unclosed conditional", "file", filePath, "open", n)
	}
	if tr.state == stateInModule {
		return FileFacts{File: filePath, Lines: len(lines)}, &ParseError{
			File:   filePath,
			Line:   len(lines),
			Module: tr.name,
			Err:    ErrUnterminatedModule,
		}
	}

	facts.Modules = tr.modules
	return facts, nil
}

type boundaryState int

const (
	stateIdle boundaryState = iota
	stateInModule
)

// tracker groups filtered lines into per-module batches.
type tracker struct {
	file    string
	state   boundaryState
	name    string
	loc     registry.Location
	body    []string
	modules []registry.Module
}

func (t *tracker) feed(line string, lineNum int) error {
	switch {
	case strings.Contains(line, "endmodule"):
		if t.state == stateIdle {
			return &ParseError{File: t.file, Line: lineNum, Err: ErrUnmatchedEndmodule}
		}
		t.body = append(t.body, line)
		t.finish()

	case t.state == stateIdle:
		name, col, ok := matchModuleHeader(line)
		if !ok {
			return nil
		}
		t.state = stateInModule
		t.name = name
		t.loc = registry.Location{File: t.file, Line: lineNum, Column: col}
		t.body = append(t.body[:0], line)

	default:
		t.body = append(t.body, line)
	}
	return nil
}

func (t *tracker) finish() {
	body := Normalize(t.body)
	inputs, outputs := splitPorts(matchPorts(body))
	t.modules = append(t.modules, registry.Module{
		Name:      t.name,
		Inputs:    inputs,
		Outputs:   outputs,
		Instances: extractInstances(body, t.name),
		Location:  t.loc,
	})
	t.state = stateIdle
	t.name = ""
	t.body = nil
}

func splitPorts(ports []registry.Port) (inputs, outputs []registry.Port) {
	for _, p := range ports {
		switch p.Direction {
		case registry.DirInput:
			inputs = append(inputs, p)
		case registry.DirOutput:
			outputs = append(outputs, p)
		case registry.DirInout:
			inputs = append(inputs, p)
			outputs = append(outputs, p)
		}
	}
	return inputs, outputs
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, strings.TrimSuffix(s[start:i], "\r"))
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, strings.TrimSuffix(s[start:], "\r"))
	}
	return lines
}
