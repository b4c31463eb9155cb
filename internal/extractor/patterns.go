package extractor

import (
	"regexp"
	"strings"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

var (
	// Pattern: input|output|inout [reg|logic|bit] [range] name{,name} ;|,|)
	portPattern = regexp.MustCompile(`\b(input|output|inout)\s+(?:reg|logic|bit)?\s*(?:(\[[^\]]*\])\s*)?(\w+(?:\s*,\s*\w+)*)\s*[;,)]`)
)

// matchPorts returns every port declared in a normalised module body, in
// declaration order.
func matchPorts(body string) []registry.Port {
	var ports []registry.Port
	for _, m := range portPattern.FindAllStringSubmatch(body, -1) {
		direction, width, group := m[1], strings.TrimSpace(m[2]), m[3]
		for _, name := range strings.Split(group, ",") {
			ports = append(ports, registry.Port{
				Direction: direction,
				Name:      strings.TrimSpace(name),
				Width:     width,
			})
		}
	}
	return ports
}

// matchModuleHeader returns the module name and the 1-based column after
// it when line opens a module definition.
func matchModuleHeader(line string) (string, int, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "module ") &&
		!strings.HasPrefix(trimmed, "module\t") &&
		!strings.Contains(line, " module ") {
		return "", 0, false
	}

	kw := moduleKeywordIndex(line)
	if kw < 0 {
		return "", 0, false
	}
	start := kw + len("module")
	for start < len(line) && (line[start] == ' ' || line[start] == '\t') {
		start++
	}
	end := start
	for end < len(line) && !strings.ContainsRune(" \t(;", rune(line[end])) {
		end++
	}
	return line[start:end], end + 1, true
}

// moduleKeywordIndex finds the first standalone "module" keyword that is
// followed by a space or tab.
func moduleKeywordIndex(line string) int {
	from := 0
	for {
		i := strings.Index(line[from:], "module")
		if i < 0 {
			return -1
		}
		i += from
		after := i + len("module")
		if after < len(line) && (line[after] == ' ' || line[after] == '\t') &&
			(i == 0 || !isIdentByte(line[i-1])) {
			return i
		}
		from = after
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b == '`' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
