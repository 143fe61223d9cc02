package formatter

import (
	"fmt"

	"github.com/yildizm/ChatLens/internal/analysis"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(result analysis.Succeeded) ([]byte, error)
}

// Formats lists the supported output format names
var Formats = []string{"text", "json", "markdown", "csv"}

// New returns the formatter for a format name
func New(format string, color, emoji bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color, emoji), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use text, json, markdown or csv)", format)
	}
}

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + addCommas(s[1:])
	}
	return addCommas(s)
}

func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// weekday returns the short day name of a date
func weekday(d analysis.Date) string {
	return d.Time().Weekday().String()[:3]
}
