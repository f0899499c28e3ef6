package manifest

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Node is one buildable or referencable resource of a project.
type Node struct {
	UniqueID    string `csv:"unique_id" json:"unique_id" yaml:"unique_id"`
	Kind        Kind   `csv:"kind" json:"resource_type" yaml:"kind"`
	Package     string `csv:"package" json:"package_name" yaml:"package"`
	Name        string `csv:"name" json:"name" yaml:"name"`
	Path        string `csv:"path" json:"original_file_path,omitempty" yaml:"path,omitempty"`
	Description string `csv:"description" json:"description,omitempty" yaml:"description,omitempty"`

	// DependsOn holds the unique ids this node reads from.
	DependsOn StringSet `csv:"depends_on" json:"depends_on" yaml:"depends_on,omitempty"`
	Tags      StringSet `csv:"tags" json:"tags" yaml:"tags,omitempty"`

	Extra map[string]string `csv:"-" json:"extra,omitempty" yaml:"extra,omitempty"`
}

// StringSet is a set of strings, stored as pipe-separated in CSV.
type StringSet map[string]struct{}

// NewStringSet creates a new StringSet from strings.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet)
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// ParseStringSet parses a pipe-separated string into a StringSet.
func ParseStringSet(s string) StringSet {
	return NewStringSet(strings.Split(s, "|")...)
}

// Add adds an item to the set. Blank items are ignored.
func (s StringSet) Add(item string) {
	if item = strings.TrimSpace(item); item != "" {
		s[item] = struct{}{}
	}
}

// Remove removes an item from the set.
func (s StringSet) Remove(item string) {
	delete(s, item)
}

// Contains checks if an item is in the set.
func (s StringSet) Contains(item string) bool {
	_, ok := s[item]
	return ok
}

// Slice returns the items as a sorted slice.
func (s StringSet) Slice() []string {
	items := make([]string, 0, len(s))
	for item := range s {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// String returns a pipe-separated string.
func (s StringSet) String() string {
	return strings.Join(s.Slice(), "|")
}

// Len returns the number of items.
func (s StringSet) Len() int {
	return len(s)
}

// MarshalJSON writes the set as a sorted array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// MarshalYAML writes the set as a sorted sequence.
func (s StringSet) MarshalYAML() (interface{}, error) {
	return s.Slice(), nil
}

// UnmarshalYAML accepts a sequence or a pipe-separated scalar.
func (s *StringSet) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var items []string
	if err := unmarshal(&items); err == nil {
		*s = NewStringSet(items...)
		return nil
	}
	var scalar string
	if err := unmarshal(&scalar); err != nil {
		return err
	}
	*s = ParseStringSet(scalar)
	return nil
}

// NewNode creates a node whose kind, package and name are derived from the
// unique id when it follows the kind.package.name convention.
func NewNode(uniqueID string) *Node {
	kind, pkg, name := SplitID(uniqueID)
	return &Node{
		UniqueID:  uniqueID,
		Kind:      kind,
		Package:   pkg,
		Name:      name,
		DependsOn: make(StringSet),
		Tags:      make(StringSet),
		Extra:     make(map[string]string),
	}
}

// fillFromID completes empty kind, package and name fields from the id.
func (n *Node) fillFromID() {
	kind, pkg, name := SplitID(n.UniqueID)
	if n.Kind == "" {
		n.Kind = kind
	}
	if n.Package == "" {
		n.Package = pkg
	}
	if n.Name == "" {
		n.Name = name
	}
	if n.DependsOn == nil {
		n.DependsOn = make(StringSet)
	}
	if n.Tags == nil {
		n.Tags = make(StringSet)
	}
	if n.Extra == nil {
		n.Extra = make(map[string]string)
	}
}

// HasTag reports whether the node carries tag.
func (n *Node) HasTag(tag string) bool {
	return n.Tags.Contains(tag)
}

// FQN returns the dotted package.name form used for display.
func (n *Node) FQN() string {
	if n.Package == "" {
		return n.Name
	}
	return n.Package + "." + n.Name
}

// Clone creates a deep copy of the node.
func (n *Node) Clone() *Node {
	clone := *n
	clone.DependsOn = maps.Clone(n.DependsOn)
	clone.Tags = maps.Clone(n.Tags)
	clone.Extra = maps.Clone(n.Extra)
	if clone.DependsOn == nil {
		clone.DependsOn = make(StringSet)
	}
	if clone.Tags == nil {
		clone.Tags = make(StringSet)
	}
	if clone.Extra == nil {
		clone.Extra = make(map[string]string)
	}
	return &clone
}
