package preprocess

import "strings"

// Defines is the set of `define names seen so far in a run. It only grows;
// files ingested later see every name defined by earlier files.
type Defines struct {
	names map[string]struct{}
	order []string
}

// NewDefines returns a set seeded with the given names.
func NewDefines(names ...string) *Defines {
	d := &Defines{names: make(map[string]struct{})}
	for _, n := range names {
		d.Define(n)
	}
	return d
}

// Define adds name to the set. Empty names are ignored.
func (d *Defines) Define(name string) {
	if name == "" {
		return
	}
	if d.names == nil {
		d.names = make(map[string]struct{})
	}
	if _, ok := d.names[name]; ok {
		return
	}
	d.names[name] = struct{}{}
	d.order = append(d.order, name)
}

// IsDefined reports whether name has been defined.
func (d *Defines) IsDefined(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.names[name]
	return ok
}

// Names returns the defined names in definition order.
func (d *Defines) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of defined names.
func (d *Defines) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// CondState tracks `ifdef nesting for a single file.
type CondState struct {
	stack  []string
	active bool
}

// Depth returns the number of pending conditional blocks.
func (c *CondState) Depth() int { return len(c.stack) }

// Active reports whether the innermost conditional scope is visible.
func (c *CondState) Active() bool { return c.active }

// Visible reports whether a plain source line would pass the filter now.
func (c *CondState) Visible() bool {
	return len(c.stack) == 0 || c.active
}

func (c *CondState) top() string {
	return c.stack[len(c.stack)-1]
}

func (c *CondState) push(token string) {
	c.stack = append(c.stack, token)
}

func (c *CondState) pop() {
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// Filter applies conditional-compilation directives to a comment-free line.
// Directive lines are consumed and yield "". Other lines are returned
// unchanged when visible and replaced by "" when suppressed. `define lines
// add to defs only when visible.
func (c *CondState) Filter(line string, defs *Defines) string {
	directive := strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))

	switch {
	case strings.HasPrefix(directive, "`ifdef"):
		c.push(lastToken(directive))
		c.active = defs.IsDefined(c.top())
	case strings.HasPrefix(directive, "`protected"):
		c.push("protected")
		c.active = defs.IsDefined(c.top())
	case strings.HasPrefix(directive, "`ifndef"):
		wasEmpty := len(c.stack) == 0
		c.push(lastToken(directive))
		c.active = wasEmpty && !defs.IsDefined(c.top())
	case strings.HasPrefix(directive, "`endif"), strings.HasPrefix(directive, "`endprotected"):
		c.pop()
		c.active = len(c.stack) > 0 && defs.IsDefined(c.top())
	case strings.HasPrefix(directive, "`else"):
		c.active = len(c.stack) > 0 && !defs.IsDefined(c.top())
	case strings.HasPrefix(directive, "`define"):
		if c.Visible() {
			if fields := strings.Fields(directive); len(fields) >= 2 {
				defs.Define(fields[1])
			}
		}
	default:
		if c.Visible() {
			return line
		}
	}
	return ""
}

func lastToken(directive string) string {
	parts := strings.Split(directive, " ")
	return parts[len(parts)-1]
}
