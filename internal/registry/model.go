package registry

import "fmt"

// Port directions.
const (
	DirInput  = "input"
	DirOutput = "output"
	DirInout  = "inout"
)

// Port is a module port as declared. Width is the bracketed range text
// verbatim, or "" when the port is a single bit.
type Port struct {
	Direction string `json:"direction" msgpack:"direction"`
	Name      string `json:"name" msgpack:"name"`
	Width     string `json:"width" msgpack:"width"`
}

// Instance is one instantiation of another module inside a module body.
type Instance struct {
	Type string `json:"type" msgpack:"type"`
	Name string `json:"name" msgpack:"name"`
}

// Location points at a module definition. Column is the 1-based column
// just after the module name.
type Location struct {
	File   string `json:"file" msgpack:"file"`
	Line   int    `json:"line" msgpack:"line"`
	Column int    `json:"column" msgpack:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Module is a recognised module definition. It is built once when its
// endmodule is reached and treated as read-only afterwards.
type Module struct {
	Name      string     `json:"name" msgpack:"name"`
	Inputs    []Port     `json:"inputs" msgpack:"inputs"`
	Outputs   []Port     `json:"outputs" msgpack:"outputs"`
	Instances []Instance `json:"instances" msgpack:"instances"`
	Location  Location   `json:"location" msgpack:"location"`
}

// Conflict records a definition of an already registered module name.
type Conflict struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

// Summary is the flat view of a module returned by Describe.
type Summary struct {
	Name      string     `json:"name"`
	Inputs    []Port     `json:"inputs"`
	Outputs   []Port     `json:"outputs"`
	Instances []Instance `json:"instances"`
	File      string     `json:"file"`
	Line      int        `json:"line"`
	Column    int        `json:"column"`
}

func (m Module) clone() Module {
	out := m
	out.Inputs = append([]Port(nil), m.Inputs...)
	out.Outputs = append([]Port(nil), m.Outputs...)
	out.Instances = append([]Instance(nil), m.Instances...)
	return out
}
