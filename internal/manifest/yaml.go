package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the on-disk YAML layout.
type yamlDocument struct {
	Nodes []*Node `yaml:"nodes"`
}

// LoadYAML loads a manifest from a YAML file.
func LoadYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := ReadYAML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	m.path = path
	m.dirty = false
	return m, nil
}

// ReadYAML reads nodes from a YAML document with a top-level nodes list.
func ReadYAML(r io.Reader) (*Manifest, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	m := New()
	for i, n := range doc.Nodes {
		if n == nil {
			return nil, fmt.Errorf("node %d: empty entry", i+1)
		}
		n.UniqueID = strings.TrimSpace(n.UniqueID)
		if n.Kind != "" {
			kind, err := ParseKind(string(n.Kind))
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i+1, err)
			}
			n.Kind = kind
		}
		if err := m.Add(n); err != nil {
			return nil, fmt.Errorf("node %d: %w", i+1, err)
		}
	}
	return m, nil
}

// WriteYAML writes the manifest as a YAML document.
func (m *Manifest) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDocument{Nodes: m.All()}); err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return enc.Close()
}

// LoadFile loads a manifest, choosing the format from the file extension.
func LoadFile(path string) (*Manifest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return Load(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %q", filepath.Ext(path))
	}
}
