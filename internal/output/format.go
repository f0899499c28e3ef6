// Package output provides formatting and display utilities for depgraph.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Red       = "\033[31m"
	Green     = "\033[32m"
	Yellow    = "\033[33m"
	Blue      = "\033[34m"
	Magenta   = "\033[35m"
	Cyan      = "\033[36m"
	White     = "\033[37m"
	BoldRed   = "\033[1;31m"
	BoldGreen = "\033[1;32m"
)

var useColor = true

// DisableColor disables colored output.
func DisableColor() {
	useColor = false
}

// EnableColor enables colored output.
func EnableColor() {
	useColor = true
}

// IsColorEnabled reports whether color is on and stdout is a terminal.
// NO_COLOR in the environment turns color off.
func IsColorEnabled() bool {
	if !useColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Color applies a color to text if color is enabled.
func Color(text, color string) string {
	if !IsColorEnabled() {
		return text
	}
	return color + text + Reset
}

// KindColor returns the color used for a node kind.
func KindColor(kind string) string {
	switch strings.ToLower(kind) {
	case "source":
		return Green
	case "seed":
		return Cyan
	case "snapshot":
		return Magenta
	case "model":
		return Blue
	case "test", "unit_test":
		return Yellow
	case "exposure", "analysis":
		return Dim
	default:
		return White
	}
}

// ColorID colors a unique id by the kind in its first segment.
func ColorID(id string) string {
	kind, _, _ := strings.Cut(id, ".")
	return Color(id, KindColor(kind))
}

// StatusColor returns the color for a run status.
func StatusColor(status string) string {
	switch strings.ToLower(status) {
	case "succeeded":
		return Green
	case "skipped":
		return Yellow
	case "failed":
		return Red
	case "canceled":
		return Dim
	default:
		return White
	}
}

// StatusIcon returns a colored icon for a run status.
func StatusIcon(status string) string {
	switch strings.ToLower(status) {
	case "succeeded":
		return Color("✓", Green)
	case "skipped":
		return Color("⚠", Yellow)
	case "failed":
		return Color("✗", Red)
	case "canceled":
		return Color("-", Dim)
	default:
		return "?"
	}
}

// Header creates a formatted header line.
func Header(text string, width int) string {
	return Color(rule(text, width, "="), Bold)
}

// SubHeader creates a formatted subheader line.
func SubHeader(text string, width int) string {
	return Color(rule(text, width, "-"), Dim)
}

func rule(text string, width int, fill string) string {
	padding := max((width-len(text)-2)/2, 0)
	line := strings.Repeat(fill, padding) + " " + text + " " + strings.Repeat(fill, padding)
	if len(line) < width {
		line += strings.Repeat(fill, width-len(line))
	}
	return line
}

// Checkmark returns a colored checkmark or X.
func Checkmark(ok bool) string {
	if ok {
		return Color("✓", Green)
	}
	return Color("✗", Red)
}

// FormatCount formats "n label", coloring non-zero counts.
func FormatCount(n int, label, color string) string {
	text := fmt.Sprintf("%d %s", n, label)
	if n == 0 {
		return text
	}
	return Color(text, color)
}

// Truncate truncates text to a maximum width with ellipsis.
func Truncate(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return text[:maxWidth]
	}
	return text[:maxWidth-3] + "..."
}
