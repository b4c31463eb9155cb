package policy

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/robert-at-pretension-io/vhier/internal/facts"
)

//go:embed checks.rego
var checksRego string

// Severities reported by the rules.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Engine evaluates the design checks against fact tables.
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Violation represents a policy violation
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Module   string `json:"module"`
	Message  string `json:"message"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Summary provides aggregate counts
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// New prepares the embedded checks.
func New(ctx context.Context) (*Engine, error) {
	engine := &Engine{
		queries: make(map[string]rego.PreparedEvalQuery),
	}

	module := rego.Module("checks.rego", checksRego)
	for key, q := range map[string]string{
		"violations": "data.vhier.checks.all_violations",
		"summary":    "data.vhier.checks.summary",
	} {
		query, err := rego.New(module, rego.Query(q)).PrepareForEval(ctx)
		if err != nil {
			return nil, fmt.Errorf("preparing %s query: %w", key, err)
		}
		engine.queries[key] = query
	}

	return engine, nil
}

// Evaluate runs the checks against the fact tables.
func (e *Engine) Evaluate(ctx context.Context, tables facts.Tables) (*Result, error) {
	inputMap, err := structToMap(facts.Normalize(tables))
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{Violations: []Violation{}}

	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		violations, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					File:     getString(vmap, "file"),
					Line:     getInt(vmap, "line"),
					Module:   getString(vmap, "module"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}

	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}

	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		smap, ok := rs[0].Expressions[0].Value.(map[string]interface{})
		if ok {
			result.Summary = Summary{
				Total:    getInt(smap, "total"),
				Errors:   getInt(smap, "errors"),
				Warnings: getInt(smap, "warnings"),
				Info:     getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

// HasErrors reports whether any error-severity violation was found.
func (r *Result) HasErrors() bool {
	return r.Summary.Errors > 0
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
