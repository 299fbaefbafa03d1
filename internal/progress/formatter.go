package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// formatSectionCounter returns the [N/Total] section counter string
func formatSectionCounter(number, total int) string {
	return fmt.Sprintf("[%d/%d]", number, total)
}

// buildSectionMessage constructs the running message for a section
func buildSectionMessage(section SectionInfo) string {
	counter := formatSectionCounter(section.Number, section.Total)
	return fmt.Sprintf("%s Running %s", counter, capitalize(section.Name))
}

// capitalize returns the string with the first letter capitalized
func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// formatElapsed rounds d for display: milliseconds under a second,
// tenths of a second above.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// checkmark returns the appropriate checkmark symbol
func checkmark(symbols ProgressSymbols, supportsColor bool) string {
	if supportsColor && symbols.Checkmark == "✓" {
		return paint(color.FgGreen, symbols.Checkmark)
	}
	return symbols.Checkmark
}

// failureMark returns the appropriate failure symbol
func failureMark(symbols ProgressSymbols, supportsColor bool) string {
	if supportsColor && symbols.Failure == "✗" {
		return paint(color.FgRed, symbols.Failure)
	}
	return symbols.Failure
}

// paint colors s regardless of color.NoColor; callers decide from the
// detected capabilities.
func paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}
