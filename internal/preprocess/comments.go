package preprocess

import "strings"

type commentState int

const (
	stateCode commentState = iota
	stateBlockComment
)

// CommentStripper removes // and /* */ comments one line at a time,
// carrying block-comment state across lines.
type CommentStripper struct {
	state commentState
}

// InBlockComment reports whether the last stripped line ended inside an
// open block comment.
func (s *CommentStripper) InBlockComment() bool {
	return s.state == stateBlockComment
}

// Reset returns the stripper to the code state. Called at file boundaries.
func (s *CommentStripper) Reset() {
	s.state = stateCode
}

// Strip returns the part of line that is not commented out.
func (s *CommentStripper) Strip(line string) string {
	if s.state == stateCode {
		// Vendor "unblock" markers are plain line comments.
		for strings.Contains(line, "//*") {
			line = strings.ReplaceAll(line, "//*", "//")
		}
	}

	var out strings.Builder
	i := 0
	for i < len(line) {
		rest := line[i:]
		switch s.state {
		case stateBlockComment:
			end := strings.Index(rest, "*/")
			if end < 0 {
				i = len(line)
				continue
			}
			i += end + len("*/")
			s.state = stateCode

		default:
			block := strings.Index(rest, "/*")
			lineComment := strings.Index(rest, "//")
			switch {
			case lineComment >= 0 && (block < 0 || lineComment < block):
				out.WriteString(rest[:lineComment])
				i = len(line)
			case block >= 0:
				out.WriteString(rest[:block])
				i += block + len("/*")
				s.state = stateBlockComment
			default:
				out.WriteString(rest)
				i = len(line)
			}
		}
	}
	return out.String()
}

// StripComments is the functional form of CommentStripper.Strip.
func StripComments(line string, inBlock bool) (string, bool) {
	s := CommentStripper{}
	if inBlock {
		s.state = stateBlockComment
	}
	out := s.Strip(line)
	return out, s.InBlockComment()
}
