package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStripANSIString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no_ansi", "model.shop.orders", "model.shop.orders"},
		{"simple_color", "\033[32mmodel\033[0m", "model"},
		{"multiple_colors", "\033[36mseed\033[0m -> \033[33mtest\033[0m", "seed -> test"},
		{"nested_codes", "\033[1;31;40mcycle\033[0m", "cycle"},
		{"empty", "", ""},
		{"only_escape", "\033[0m", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSIString(tt.input); got != tt.want {
				t.Errorf("StripANSIString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripANSI(t *testing.T) {
	got := StripANSI([]byte("\033[32mgreen\033[0m"))
	if string(got) != "green" {
		t.Errorf("StripANSI() = %q, want %q", got, "green")
	}
}

func TestGolden(t *testing.T) {
	orig := goldenDir
	goldenDir = filepath.Join(t.TempDir(), "testdata")
	t.Cleanup(func() { goldenDir = orig })

	if err := os.MkdirAll(goldenDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(goldenDir, "levels.golden"), []byte("0: a\n1: b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	GoldenString(t, "levels", "0: a\n1: b\n")
}

func TestGoldenDirIsPackageTestdata(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(wd, "testdata"); goldenDir != want {
		t.Errorf("goldenDir = %q, want %q", goldenDir, want)
	}
}
