package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var updateGolden = flag.Bool("update", false, "update golden files")

// goldenDir is the testdata directory of the package under test, fixed
// before any test changes the working directory.
var goldenDir = func() string {
	wd, err := os.Getwd()
	if err != nil {
		return "testdata"
	}
	return filepath.Join(wd, "testdata")
}()

// Update returns true if golden files should be updated.
// Use with: go test -update
func Update() bool {
	return *updateGolden
}

// Golden compares actual output against testdata/<name>.golden of the
// package under test. With -update the file is rewritten instead.
//
//	func TestScheduleTable(t *testing.T) {
//	    testutil.GoldenString(t, "schedule_orders", schedule.String())
//	}
func Golden(t *testing.T, name string, actual []byte) {
	t.Helper()

	goldenPath := filepath.Join(goldenDir, name+".golden")

	if Update() {
		if err := os.MkdirAll(goldenDir, 0755); err != nil {
			t.Fatalf("Failed to create testdata directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, actual, 0644); err != nil {
			t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file %s does not exist. Run with -update to create it.", goldenPath)
		}
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}

	if diff := cmp.Diff(strings.Split(string(expected), "\n"), strings.Split(string(actual), "\n")); diff != "" {
		t.Errorf("Output does not match golden file %s (-want +got):\n%s\n"+
			"To update the golden file, run: go test -update ./...", goldenPath, diff)
	}
}

// GoldenString is a convenience wrapper for Golden that accepts a string.
func GoldenString(t *testing.T, name string, actual string) {
	t.Helper()
	Golden(t, name, []byte(actual))
}

var ansiEscape = regexp.MustCompile("\033\\[[0-9;]*[a-zA-Z]")

// StripANSI removes ANSI escape codes from a byte slice.
func StripANSI(data []byte) []byte {
	return ansiEscape.ReplaceAll(data, nil)
}

// StripANSIString removes ANSI escape codes from a string.
func StripANSIString(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}
