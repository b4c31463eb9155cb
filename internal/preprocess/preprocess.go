// Package preprocess implements the lexical layer that runs before module
// recognition: comment removal followed by `ifdef filtering.
package preprocess

// Filter is the per-file preprocessing pipeline. Comments are stripped
// first, independent of conditional state, then directives are applied.
type Filter struct {
	comments CommentStripper
	cond     CondState
	defs     *Defines
}

// NewFilter returns a Filter that reads and extends defs.
func NewFilter(defs *Defines) *Filter {
	if defs == nil {
		defs = NewDefines()
	}
	return &Filter{defs: defs}
}

// Line preprocesses one raw source line.
func (f *Filter) Line(raw string) string {
	return f.cond.Filter(f.comments.Strip(raw), f.defs)
}

// InBlockComment reports whether a block comment is still open.
func (f *Filter) InBlockComment() bool { return f.comments.InBlockComment() }

// PendingConditionals returns the number of unclosed `ifdef blocks.
func (f *Filter) PendingConditionals() int { return f.cond.Depth() }

// Defines returns the run-wide define set this filter writes to.
func (f *Filter) Defines() *Defines { return f.defs }
