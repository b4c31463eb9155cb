package extractor

import "strings"

// Normalize flattens a module's lines into one single-spaced string with
// parameter lists (#(...)) and event controls (@(...)) removed. Line
// boundaries become spaces.
func Normalize(lines []string) string {
	s := strings.Join(lines, "\n")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, ", ", ",")
	s = strings.ReplaceAll(s, "# (", "#(")

	s = elideBalanced(s, "#(")
	s = elideBalanced(s, "@(")

	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// elideBalanced repeatedly deletes the first span starting at opener and
// ending at its matching close paren. An unbalanced span runs to the end.
func elideBalanced(s, opener string) string {
	for {
		start := strings.Index(s, opener)
		if start < 0 {
			return s
		}
		depth := 1
		j := start + len(opener)
		for j < len(s) && depth > 0 {
			switch s[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			j++
		}
		s = s[:start] + s[j:]
	}
}
