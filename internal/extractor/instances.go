package extractor

import (
	"strings"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// reservedWords are never accepted as an instance type or name, and are
// stripped when they lead a statement.
var reservedWords = []string{
	"if", "else", "begin", "end", "case", "endcase", "generate", "endgenerate",
	"initial", "wire", "logic", "parameter", "localparam", "assign", "always",
	"always_ff", "for", "$display", "$finish", "@",
}

var reservedSet = func() map[string]bool {
	m := make(map[string]bool, len(reservedWords))
	for _, w := range reservedWords {
		m[w] = true
	}
	return m
}()

// Characters that disqualify an instance candidate.
const rejectedChars = "=:.[]$<> "

type scanStep int

const (
	stepSkipHeader    scanStep = iota // remainder still holds the module clause
	stepSkipNet                       // wire/assign statement
	stepCandidate                     // statement with a '(' somewhere after it
	stepSkipStatement                 // nothing left to recognise
)

func classify(rest, header string) scanStep {
	switch {
	case strings.Contains(rest, header):
		return stepSkipHeader
	case strings.HasPrefix(rest, "wire "), strings.HasPrefix(rest, "assign "):
		return stepSkipNet
	case strings.Contains(rest, "("):
		return stepCandidate
	default:
		return stepSkipStatement
	}
}

// extractInstances scans a normalised module body for `type name (` pairs.
// Every step advances the cursor past the next ';', or to the end of the
// body when none remains.
func extractInstances(body, moduleName string) []registry.Instance {
	var out []registry.Instance
	header := "module " + moduleName

	for i := 0; i < len(body); {
		rest := body[i:]
		if classify(rest, header) == stepCandidate {
			end := i + strings.Index(rest, "(")
			start := stripReservedPrefix(body, i, end)
			if cand := body[start:end]; !strings.Contains(cand, ";") {
				if inst, ok := splitCandidate(cand); ok {
					out = append(out, inst)
				}
			}
		}
		i = nextStatement(body, i)
	}
	return out
}

// stripReservedPrefix moves start past leading reserved words, repeating
// until none of them leads body[start:end].
func stripReservedPrefix(body string, start, end int) int {
	for {
		found := false
		for _, kw := range reservedWords {
			cand := body[start:end]
			if strings.HasPrefix(strings.TrimSpace(cand), kw+" ") {
				start += strings.Index(cand, kw+" ") + len(kw) + 1
				found = true
			}
		}
		if !found {
			return start
		}
	}
}

func splitCandidate(cand string) (registry.Instance, bool) {
	s := strings.TrimSpace(cand)
	sp := strings.Index(s, " ")
	if sp < 0 {
		return registry.Instance{}, false
	}
	typ := strings.TrimSpace(s[:sp+1])
	name := strings.TrimSpace(s[sp+1:])
	if typ == "" || name == "" || reservedSet[typ] || reservedSet[name] {
		return registry.Instance{}, false
	}
	if strings.ContainsAny(typ+name, rejectedChars) {
		return registry.Instance{}, false
	}
	return registry.Instance{Type: typ, Name: name}, true
}

func nextStatement(body string, i int) int {
	if j := strings.Index(body[i:], ";"); j >= 0 {
		return i + j + 1
	}
	return len(body)
}
