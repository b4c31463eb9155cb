package hierarchy

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/robert-at-pretension-io/vhier/internal/registry"
)

// Match selects which instances start a path search.
type Match int

const (
	MatchType         Match = iota // instance type equals the target
	MatchTypeContains              // instance type contains the target
	MatchNameContains              // instance name contains the target
)

func (m Match) String() string {
	switch m {
	case MatchTypeContains:
		return "type-contains"
	case MatchNameContains:
		return "name-contains"
	default:
		return "type"
	}
}

// ParseMatch converts a --method value to a Match.
func ParseMatch(s string) (Match, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "type":
		return MatchType, nil
	case "type-contains":
		return MatchTypeContains, nil
	case "name-contains":
		return MatchNameContains, nil
	}
	return MatchType, fmt.Errorf("unknown match method %q (want type, type-contains or name-contains)", s)
}

func (m Match) matches(inst registry.Instance, target string) bool {
	switch m {
	case MatchTypeContains:
		return strings.Contains(inst.Type, target)
	case MatchNameContains:
		return strings.Contains(inst.Name, target)
	default:
		return inst.Type == target
	}
}

// Query asks for every instance path from Scope down to instances matching
// Target.
type Query struct {
	Target string
	Match  Match
	Scope  string
}

// OutputName is the report file a query is written to.
func (q Query) OutputName() string {
	return q.Target + "_under_" + q.Scope + ".txt"
}

// PathFinder walks the instantiation graph upward from matching instances.
type PathFinder struct {
	Registry   *registry.Registry
	Logger     *log.Logger
	Separator  string
	CycleGuard bool
}

// NewPathFinder creates a PathFinder using sep between instance names.
func NewPathFinder(reg *registry.Registry, sep string, logger *log.Logger) *PathFinder {
	return &PathFinder{Registry: reg, Separator: sep, Logger: logger}
}

func (pf *PathFinder) logger() *log.Logger {
	if pf.Logger == nil {
		pf.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "find"})
	}
	return pf.Logger
}

func (pf *PathFinder) separator() string {
	if pf.Separator == "" {
		return "."
	}
	return pf.Separator
}

// Find writes every path for q to sink, one per line, and returns how many
// were written. Nothing is written when there is no match.
func (pf *PathFinder) Find(q Query, sink io.Writer) (int, error) {
	paths, err := pf.Paths(context.Background(), q)
	if err != nil {
		return 0, err
	}
	for i, p := range paths {
		if _, err := fmt.Fprintln(sink, p); err != nil {
			return i, fmt.Errorf("writing paths: %w", err)
		}
	}
	return len(paths), nil
}

// Paths returns every path for q in discovery order.
func (pf *PathFinder) Paths(ctx context.Context, q Query) ([]string, error) {
	pf.logger().Info("searching for instances",
		"target", q.Target, "method", q.Match.String(), "under", q.Scope)

	s := &pathSearch{
		ctx:     ctx,
		modules: pf.Registry.Modules(),
		scope:   q.Scope,
		sep:     pf.separator(),
		guard:   pf.CycleGuard,
		onStack: make(map[string]bool),
		logger:  pf.logger(),
	}
	if err := s.walk(q.Target, q.Match, ""); err != nil {
		return nil, err
	}
	for _, p := range s.found {
		pf.logger().Debug("found path", "path", p)
	}
	return s.found, nil
}

// FindAll runs independent queries concurrently. The registry must not be
// written while it runs. Results are in query order.
func (pf *PathFinder) FindAll(ctx context.Context, queries []Query) ([][]string, error) {
	results := make([][]string, len(queries))
	pf.logger() // initialise before the goroutines share it

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			paths, err := pf.Paths(gctx, q)
			if err != nil {
				return fmt.Errorf("query %s under %s: %w", q.Target, q.Scope, err)
			}
			results[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type pathSearch struct {
	ctx     context.Context
	modules []registry.Module
	scope   string
	sep     string
	guard   bool
	onStack map[string]bool
	logger  *log.Logger
	found   []string
}

func (s *pathSearch) walk(target string, match Match, path string) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if s.guard && match == MatchType {
		s.onStack[target] = true
		defer delete(s.onStack, target)
	}

	for _, m := range s.modules {
		for _, inst := range m.Instances {
			if !match.matches(inst, target) {
				continue
			}
			p := inst.Name
			if path != "" {
				p = inst.Name + s.sep + path
			}
			if m.Name == s.scope {
				s.found = append(s.found, s.scope+s.sep+p)
			}
			if s.guard && s.onStack[m.Name] {
				s.logger.Warn("instantiation cycle, not ascending", "module", m.Name, "instance", inst.Name)
				continue
			}
			if err := s.walk(m.Name, MatchType, p); err != nil {
				return err
			}
		}
	}
	return nil
}
