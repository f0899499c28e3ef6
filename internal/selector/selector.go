// Package selector parses node selection expressions and resolves them
// against a manifest.
//
// An expression is a space-separated union of terms. A term is a
// comma-separated intersection of criteria. A criterion is
//
//	[N+]pattern[+N]
//
// where a leading "+" adds the ancestors of the matched nodes, a trailing
// "+" adds their descendants, and an optional number bounds the depth.
// The pattern is either a glob over node ids (dots act as path separators,
// so "model.shop.*" matches every model of the shop package) or one of the
// methods "kind:", "package:", "tag:" and "path:".
package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/manifest"
)

// ErrEmptyExpression is returned when an expression has no terms.
var ErrEmptyExpression = errors.New("empty selection expression")

// Method names how a criterion matches nodes.
type Method string

const (
	MethodFQN     Method = "fqn"
	MethodKind    Method = "kind"
	MethodPackage Method = "package"
	MethodTag     Method = "tag"
	MethodPath    Method = "path"
)

// unbounded marks a graph operator without a depth limit.
const unbounded = -1

// Criterion is one matcher plus its graph operators.
type Criterion struct {
	Method Method
	Value  string

	Parents     bool
	ParentDepth int
	Children    bool
	ChildDepth  int
}

// Term is the intersection of its criteria.
type Term []Criterion

// Expression is the union of its terms.
type Expression struct {
	Terms []Term
}

// Parse parses a selection expression.
func Parse(expr string) (*Expression, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return nil, ErrEmptyExpression
	}

	e := &Expression{}
	for _, field := range fields {
		var term Term
		for _, part := range strings.Split(field, ",") {
			if part == "" {
				return nil, fmt.Errorf("invalid term %q: empty criterion", field)
			}
			c, err := parseCriterion(part)
			if err != nil {
				return nil, err
			}
			term = append(term, c)
		}
		e.Terms = append(e.Terms, term)
	}
	return e, nil
}

func parseCriterion(s string) (Criterion, error) {
	c := Criterion{Method: MethodFQN, ParentDepth: unbounded, ChildDepth: unbounded}
	raw := s

	// A leading run of digits is a depth only when a pattern follows the "+".
	if i := strings.Index(s, "+"); i >= 0 && i < len(s)-1 && isDigits(s[:i]) {
		c.Parents = true
		if i > 0 {
			c.ParentDepth, _ = strconv.Atoi(s[:i])
		}
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "+"); i >= 0 && isDigits(s[i+1:]) {
		c.Children = true
		if i < len(s)-1 {
			c.ChildDepth, _ = strconv.Atoi(s[i+1:])
		}
		s = s[:i]
	}
	if s == "" {
		return c, fmt.Errorf("invalid criterion %q: missing pattern", raw)
	}

	if method, value, ok := strings.Cut(s, ":"); ok {
		switch Method(method) {
		case MethodKind:
			kind, err := manifest.ParseKind(value)
			if err != nil {
				return c, fmt.Errorf("invalid criterion %q: %w", raw, err)
			}
			value = kind.String()
		case MethodPackage, MethodTag, MethodPath, MethodFQN:
		default:
			return c, fmt.Errorf("invalid criterion %q: unknown method %q", raw, method)
		}
		c.Method = Method(method)
		s = value
	}
	if s == "" {
		return c, fmt.Errorf("invalid criterion %q: missing value", raw)
	}

	if c.Method == MethodFQN {
		s = toGlob(s)
	}
	if (c.Method == MethodFQN || c.Method == MethodPath) && !doublestar.ValidatePattern(s) {
		return c, fmt.Errorf("invalid criterion %q: bad glob", raw)
	}
	c.Value = s
	return c, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// toGlob maps dotted ids onto slash-separated paths so that "*" stops at a
// dot and "**" crosses dots.
func toGlob(s string) string {
	return strings.ReplaceAll(s, ".", "/")
}

// String renders the criterion back in expression syntax.
func (c Criterion) String() string {
	var sb strings.Builder
	if c.Parents {
		if c.ParentDepth >= 0 {
			sb.WriteString(strconv.Itoa(c.ParentDepth))
		}
		sb.WriteString("+")
	}
	switch c.Method {
	case MethodFQN:
		sb.WriteString(strings.ReplaceAll(c.Value, "/", "."))
	default:
		sb.WriteString(string(c.Method) + ":" + c.Value)
	}
	if c.Children {
		sb.WriteString("+")
		if c.ChildDepth >= 0 {
			sb.WriteString(strconv.Itoa(c.ChildDepth))
		}
	}
	return sb.String()
}

// String renders the normalized expression.
func (e *Expression) String() string {
	terms := make([]string, len(e.Terms))
	for i, term := range e.Terms {
		parts := make([]string, len(term))
		for j, c := range term {
			parts[j] = c.String()
		}
		terms[i] = strings.Join(parts, ",")
	}
	return strings.Join(terms, " ")
}

// Matches reports whether n satisfies the criterion's pattern, ignoring
// graph operators.
func (c Criterion) Matches(n *manifest.Node) bool {
	switch c.Method {
	case MethodKind:
		return string(n.Kind) == c.Value
	case MethodPackage:
		return n.Package == c.Value
	case MethodTag:
		return n.HasTag(c.Value)
	case MethodPath:
		return n.Path != "" && globMatch(c.Value, n.Path)
	default:
		return globMatch(c.Value, toGlob(n.UniqueID)) ||
			globMatch(c.Value, toGlob(n.FQN())) ||
			globMatch(c.Value, toGlob(n.Name))
	}
}

func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// selectCriterion resolves one criterion against the manifest. deps is the
// dependency graph used for the graph operators.
func (c Criterion) selectCriterion(m *manifest.Manifest, deps, dependents *graph.Graph[string]) *graph.Set[string] {
	matched := graph.NewSet[string]()
	for _, n := range m.All() {
		if c.Matches(n) {
			matched.Add(n.UniqueID)
		}
	}

	res := matched.Clone()
	if c.Parents {
		res.Union(graph.Reachable(deps, matched, c.ParentDepth))
	}
	if c.Children {
		res.Union(graph.Reachable(dependents, matched, c.ChildDepth))
	}
	return res
}

// Select returns the unique ids of m selected by the expression. deps is the
// dependency graph of m; nodes reached through it that m does not declare
// are left out.
func (e *Expression) Select(m *manifest.Manifest, deps *graph.Graph[string]) *graph.Set[string] {
	dependents := graph.Reverse(deps)

	selected := graph.NewSet[string]()
	for _, term := range e.Terms {
		var acc *graph.Set[string]
		for _, c := range term {
			got := c.selectCriterion(m, deps, dependents)
			if acc == nil {
				acc = got
				continue
			}
			acc = intersect(acc, got)
		}
		selected.Union(acc)
	}

	res := graph.NewSet[string]()
	for id := range selected.All() {
		if m.Exists(id) {
			res.Add(id)
		}
	}
	return res
}

func intersect(a, b *graph.Set[string]) *graph.Set[string] {
	res := graph.NewSet[string]()
	for item := range a.All() {
		if b.Has(item) {
			res.Add(item)
		}
	}
	return res
}

// SelectString parses expr and resolves it. An empty expression selects
// every node of m.
func SelectString(expr string, m *manifest.Manifest, deps *graph.Graph[string]) (*graph.Set[string], *Expression, error) {
	e, err := Parse(expr)
	if errors.Is(err, ErrEmptyExpression) {
		return graph.NewSet(m.IDs()...), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return e.Select(m, deps), e, nil
}
