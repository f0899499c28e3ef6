package plan

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"lukechampine.com/blake3"

	"github.com/rtmx-ai/depgraph/internal/graph"
	"github.com/rtmx-ai/depgraph/internal/manifest"
)

// Schedule is the build plan of one selection.
type Schedule struct {
	// Deps is the dependency graph of the selection and everything upstream
	// of it. Every dependency is also a key.
	Deps *graph.Graph[string]
	// Sorted is a topological order of Deps without unused sources.
	Sorted []string
	// SelfContained is a topological order of the selection plus its
	// frontier, ignoring anything further upstream.
	SelfContained []string
	// Levels groups the selection into waves.
	Levels [][]string

	Selected *graph.Set[string]
	// Frontier holds the direct dependencies of the selection that are not
	// selected themselves.
	Frontier *graph.Set[string]
	// Unused holds the source nodes nothing depends on.
	Unused *graph.Set[string]

	Cycles graph.CycleReport[string]

	// Select and Exclude are the normalized expressions, empty when absent.
	Select  string
	Exclude string
}

// String renders Sorted as a table with each node's dependencies. A
// Frontier column is added when the frontier is not empty.
func (s *Schedule) String() string {
	var sb strings.Builder

	showFrontier := s.Frontier.Len() > 0
	width := 0
	for _, k := range s.Deps.Keys() {
		width = max(width, len(k))
	}

	if showFrontier {
		fmt.Fprintf(&sb, "%-*s | %-8s | Depends-on\n", width, "Unique Id", "Frontier")
	} else {
		fmt.Fprintf(&sb, "%-*s |  Depends-on\n", width, "Unique Id")
	}
	sb.WriteString(strings.Repeat("-", width+3+8+3+width))
	sb.WriteString("\n")

	for _, key := range s.Sorted {
		deps, ok := s.Deps.Deps(key)
		if !ok {
			continue
		}
		values := strings.Join(deps.Slice(), ", ")
		if showFrontier {
			marker := ""
			if s.Frontier.Has(key) {
				marker = "*"
			}
			fmt.Fprintf(&sb, "%-*s | %-8s | %s\n", width, key, marker, values)
		} else {
			fmt.Fprintf(&sb, "%-*s | %s\n", width, key, values)
		}
	}
	return sb.String()
}

// ShowNodes lists the selected ids, one per line, after the normalized
// selection flags.
func (s *Schedule) ShowNodes() string {
	var sb strings.Builder
	if s.Select != "" {
		fmt.Fprintf(&sb, "    [--select: %s]\n", s.Select)
	}
	if s.Exclude != "" {
		fmt.Fprintf(&sb, "    [--exclude: %s]\n", s.Exclude)
	}
	sb.WriteString(strings.Join(s.Selected.Slice(), "\n"))
	sb.WriteString("\n")
	return sb.String()
}

// DefaultOutputKeys are the node fields ListNodes emits in JSON mode when no
// keys are requested.
var DefaultOutputKeys = []string{
	"name",
	"package_name",
	"depends_on",
	"tags",
	"resource_type",
	"original_file_path",
	"unique_id",
}

// ListNodes returns one line per selected node: its package.name form, or
// with asJSON a JSON object holding the requested keys of the node.
func (s *Schedule) ListNodes(m *manifest.Manifest, asJSON bool, keys []string) ([]string, error) {
	if len(keys) == 0 {
		keys = DefaultOutputKeys
	}

	res := make([]string, 0, s.Selected.Len())
	for id := range s.Selected.All() {
		n := m.Get(id)
		if n == nil {
			return nil, fmt.Errorf("%w: %q", manifest.ErrNodeNotFound, id)
		}
		if !asJSON {
			res = append(res, n.FQN())
			continue
		}
		line, err := nodeJSON(n, keys)
		if err != nil {
			return nil, err
		}
		res = append(res, line)
	}
	return res, nil
}

func nodeJSON(n *manifest.Node, keys []string) (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("failed to serialize node %s: %w", n.UniqueID, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("failed to serialize node %s: %w", n.UniqueID, err)
	}

	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	data, err = json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to serialize node %s: %w", n.UniqueID, err)
	}
	return string(data), nil
}

// Fingerprint returns the hex blake3-256 digest of the canonical plan: the
// sorted order followed by the levels. Equal plans have equal fingerprints.
func (s *Schedule) Fingerprint() string {
	h := blake3.New(32, nil)
	fmt.Fprintln(h, "sorted")
	for _, id := range s.Sorted {
		fmt.Fprintln(h, id)
	}
	fmt.Fprintln(h, "levels")
	for _, level := range s.Levels {
		fmt.Fprintln(h, strings.Join(level, ","))
	}
	return hex.EncodeToString(h.Sum(nil))
}
