package preprocess

import (
	"strings"
	"testing"
)

func TestStripCommentsLineComment(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"trailing", "wire a; // note", "wire a; "},
		{"whole_line", "// only a comment", ""},
		{"no_comment", "assign a = b;", "assign a = b;"},
		{"unblock_marker", "foo u1(); //* vendor pragma", "foo u1(); "},
		{"line_before_block", "a // b /* c", "a "},
		{"inline_block", "a /* b */ c", "a  c"},
		{"two_blocks", "x /* 1 */ y /* 2 */ z", "x  y  z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, inBlock := StripComments(tt.line, false)
			if got != tt.want {
				t.Fatalf("StripComments(%q) = %q, want %q", tt.line, got, tt.want)
			}
			if inBlock {
				t.Fatalf("expected block comment to be closed after %q", tt.line)
			}
		})
	}
}

func TestStripCommentsMultiLineBlock(t *testing.T) {
	var s CommentStripper
	lines := []string{
		"keep_before /* drop one",
		"drop two",
		"drop three */ keep_after",
	}
	var out []string
	for _, l := range lines {
		out = append(out, s.Strip(l))
	}
	if out[0] != "keep_before " {
		t.Fatalf("line 1 = %q", out[0])
	}
	if out[1] != "" {
		t.Fatalf("line 2 = %q, want empty", out[1])
	}
	if out[2] != " keep_after" {
		t.Fatalf("line 3 = %q", out[2])
	}
	if s.InBlockComment() {
		t.Fatalf("block comment should be closed")
	}
}

func TestStripCommentsUnblockMarkerInsideBlock(t *testing.T) {
	got, inBlock := StripComments("still comment //* */ code", true)
	if got != " code" || inBlock {
		t.Fatalf("got %q inBlock=%v", got, inBlock)
	}
}

func runFilter(defs *Defines, lines ...string) []string {
	var c CondState
	var kept []string
	for _, l := range lines {
		if out := c.Filter(l, defs); out != "" {
			kept = append(kept, out)
		}
	}
	return kept
}

func TestIfdefElseSelectsBranch(t *testing.T) {
	defs := NewDefines("FOO")

	kept := runFilter(defs, "`ifdef FOO", "first;", "`else", "second;", "`endif", "after;")
	if strings.Join(kept, "|") != "first;|after;" {
		t.Fatalf("ifdef FOO kept %v", kept)
	}

	kept = runFilter(defs, "`ifdef BAR", "first;", "`else", "second;", "`endif", "after;")
	if strings.Join(kept, "|") != "second;|after;" {
		t.Fatalf("ifdef BAR kept %v", kept)
	}
}

func TestIfndefOnlyActiveAtTopLevel(t *testing.T) {
	defs := NewDefines("OUTER")

	kept := runFilter(defs, "`ifndef MISSING", "top;", "`endif")
	if len(kept) != 1 || kept[0] != "top;" {
		t.Fatalf("top-level ifndef kept %v", kept)
	}

	kept = runFilter(defs, "`ifdef OUTER", "`ifndef MISSING", "nested;", "`endif", "outer;", "`endif")
	if strings.Join(kept, "|") != "outer;" {
		t.Fatalf("nested ifndef kept %v", kept)
	}
}

func TestDefineOnlyWhenVisible(t *testing.T) {
	defs := NewDefines()
	runFilter(defs,
		"`define VISIBLE 1",
		"`ifdef NOPE",
		"`define HIDDEN",
		"`endif",
	)
	if !defs.IsDefined("VISIBLE") {
		t.Fatalf("expected VISIBLE to be defined")
	}
	if defs.IsDefined("HIDDEN") {
		t.Fatalf("HIDDEN was defined inside an inactive block")
	}
}

func TestDefinesCarryAcrossFilters(t *testing.T) {
	defs := NewDefines()
	first := NewFilter(defs)
	first.Line("`define USE_FAST")

	second := NewFilter(defs)
	var kept []string
	for _, l := range []string{"`ifdef USE_FAST", "fast_adder u0(.a(a));", "`endif"} {
		if out := second.Line(l); out != "" {
			kept = append(kept, out)
		}
	}
	if len(kept) != 1 {
		t.Fatalf("expected define from first file to be visible, kept %v", kept)
	}
	if got := defs.Names(); len(got) != 1 || got[0] != "USE_FAST" {
		t.Fatalf("defines = %v", got)
	}
}

func TestProtectedBlockSuppressed(t *testing.T) {
	kept := runFilter(NewDefines(), "`protected", "encrypted garbage", "`endprotected", "visible;")
	if strings.Join(kept, "|") != "visible;" {
		t.Fatalf("protected block kept %v", kept)
	}
}

func TestFilterStripsBeforeDirectives(t *testing.T) {
	f := NewFilter(NewDefines())
	if out := f.Line("`ifdef X // comment"); out != "" {
		t.Fatalf("directive produced %q", out)
	}
	if f.PendingConditionals() != 1 {
		t.Fatalf("expected one pending conditional")
	}
	if out := f.Line("hidden;"); out != "" {
		t.Fatalf("expected hidden line to be suppressed, got %q", out)
	}
	f.Line("`endif")
	if out := f.Line("shown; /* tail"); out != "shown; " {
		t.Fatalf("got %q", out)
	}
	if !f.InBlockComment() {
		t.Fatalf("expected open block comment")
	}
}
