package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Standard column names (snake_case).
var standardColumns = []string{
	"unique_id",
	"kind",
	"package",
	"name",
	"path",
	"description",
	"depends_on",
	"tags",
}

// Load loads a manifest from a CSV file.
func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	m, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}

	m.path = path
	m.dirty = false
	return m, nil
}

// Save writes the manifest as CSV. An empty path reuses the loaded path.
func (m *Manifest) Save(path string) error {
	if path == "" {
		path = m.path
	}
	if path == "" {
		return fmt.Errorf("no path specified for saving manifest")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer file.Close()

	if err := m.WriteCSV(file); err != nil {
		return err
	}

	m.path = path
	m.dirty = false
	return nil
}

// ReadCSV reads nodes from a CSV reader. Only unique_id is required; columns
// outside the standard set are kept in Node.Extra.
func ReadCSV(r io.Reader) (*Manifest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	var extraCols []string
	for i, col := range header {
		normalized := normalizeColumnName(col)
		colIndex[normalized] = i
		if !slices.Contains(standardColumns, normalized) {
			extraCols = append(extraCols, col)
		}
	}

	if _, ok := colIndex["unique_id"]; !ok {
		return nil, fmt.Errorf("missing required column: unique_id")
	}

	m := New()

	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", lineNum+1, err)
		}
		lineNum++

		n, err := parseRow(record, colIndex, extraCols)
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", lineNum, err)
		}
		if err := m.Add(n); err != nil {
			return nil, fmt.Errorf("row %d: %w", lineNum, err)
		}
	}

	return m, nil
}

// WriteCSV writes the manifest to a CSV writer.
func (m *Manifest) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	extraCols := make(map[string]bool)
	for _, n := range m.All() {
		for k := range n.Extra {
			extraCols[k] = true
		}
	}

	header := slices.Clone(standardColumns)
	header = append(header, slices.Sorted(maps.Keys(extraCols))...)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, n := range m.All() {
		if err := writer.Write(formatRow(n, header)); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", n.UniqueID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// normalizeColumnName converts column names to snake_case.
func normalizeColumnName(name string) string {
	name = strings.TrimSpace(name)

	if strings.Contains(name, "_") || strings.ToLower(name) == name {
		return strings.ToLower(name)
	}

	// PascalCase/camelCase -> snake_case; runs of capitals stay together.
	var result strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(name[i-1])
			if prev >= 'a' && prev <= 'z' {
				result.WriteByte('_')
			}
		}
		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

func parseRow(record []string, colIndex map[string]int, extraCols []string) (*Node, error) {
	getValue := func(col string) string {
		if idx, ok := colIndex[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	n := NewNode(getValue("unique_id"))
	if n.UniqueID == "" {
		return nil, fmt.Errorf("unique_id is required")
	}

	if s := getValue("kind"); s != "" {
		kind, err := ParseKind(s)
		if err != nil {
			return nil, err
		}
		n.Kind = kind
	}
	if s := getValue("package"); s != "" {
		n.Package = s
	}
	if s := getValue("name"); s != "" {
		n.Name = s
	}
	n.Path = getValue("path")
	n.Description = getValue("description")
	n.DependsOn = ParseStringSet(getValue("depends_on"))
	n.Tags = ParseStringSet(getValue("tags"))

	for _, col := range extraCols {
		normalized := normalizeColumnName(col)
		if idx, ok := colIndex[normalized]; ok && idx < len(record) {
			if value := strings.TrimSpace(record[idx]); value != "" {
				n.Extra[col] = value
			}
		}
	}

	return n, nil
}

func formatRow(n *Node, header []string) []string {
	row := make([]string, len(header))

	for i, col := range header {
		switch col {
		case "unique_id":
			row[i] = n.UniqueID
		case "kind":
			row[i] = n.Kind.String()
		case "package":
			row[i] = n.Package
		case "name":
			row[i] = n.Name
		case "path":
			row[i] = n.Path
		case "description":
			row[i] = n.Description
		case "depends_on":
			row[i] = n.DependsOn.String()
		case "tags":
			row[i] = n.Tags.String()
		default:
			row[i] = n.Extra[col]
		}
	}

	return row
}
