// Package manifest holds the project nodes a dependency graph is built from,
// and reads them from CSV or YAML files.
package manifest

import (
	"fmt"
	"strings"
)

// Kind is the resource type of a node.
type Kind string

const (
	KindModel    Kind = "model"
	KindSeed     Kind = "seed"
	KindSource   Kind = "source"
	KindSnapshot Kind = "snapshot"
	KindTest     Kind = "test"
	KindUnitTest Kind = "unit_test"
	KindExposure Kind = "exposure"
	KindAnalysis Kind = "analysis"
)

// AllKinds returns every known kind.
func AllKinds() []Kind {
	return []Kind{
		KindModel, KindSeed, KindSource, KindSnapshot,
		KindTest, KindUnitTest, KindExposure, KindAnalysis,
	}
}

// ParseKind parses a string into a Kind, case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid kind: %q", s)
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsTest returns true for data tests and unit tests.
func (k Kind) IsTest() bool {
	return k == KindTest || k == KindUnitTest
}

// IsSource returns true for nodes that are read but never built.
func (k Kind) IsSource() bool {
	return k == KindSource
}

// Weight orders kinds for display (sources first, tests last).
func (k Kind) Weight() int {
	switch k {
	case KindSource:
		return 0
	case KindSeed:
		return 1
	case KindSnapshot:
		return 2
	case KindModel:
		return 3
	case KindAnalysis:
		return 4
	case KindExposure:
		return 5
	case KindTest, KindUnitTest:
		return 6
	default:
		return 7
	}
}

// SplitID splits a unique id of the form kind.package.name. The name keeps
// any further dots, e.g. "source.shop.raw.orders" has the name "raw.orders".
// Missing parts are returned empty and an unknown prefix yields no kind.
func SplitID(id string) (kind Kind, pkg, name string) {
	parts := strings.SplitN(id, ".", 3)
	if len(parts) < 3 {
		return "", "", ""
	}
	k, err := ParseKind(parts[0])
	if err != nil {
		return "", "", ""
	}
	return k, parts[1], parts[2]
}
