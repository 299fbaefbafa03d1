package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// FormatError renders err with colored headings. Errors that are not a
// CLIError are shown as Runtime errors.
func FormatError(err error) string {
	return format(err, true)
}

// FormatErrorPlain renders err without ANSI codes.
func FormatErrorPlain(err error) string {
	return format(err, false)
}

// FormatSimpleError renders a plain error under the given category.
func FormatSimpleError(err error, category ErrorCategory) string {
	if err == nil {
		return ""
	}
	return FormatError(&CLIError{Category: category, Message: err.Error()})
}

// PrintError writes the formatted error to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError writes the formatted error to w.
func FprintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

func format(err error, colored bool) string {
	if err == nil {
		return ""
	}
	cliErr := AsCLIError(err)
	if cliErr == nil {
		cliErr = &CLIError{Category: Runtime, Message: err.Error()}
	}

	heading := fmt.Sprint
	label := fmt.Sprint
	if colored {
		heading = color.New(color.FgRed, color.Bold).SprintFunc()
		label = color.New(color.FgYellow).SprintFunc()
	}

	var sb strings.Builder
	sb.WriteString(heading(cliErr.Category.String() + ":"))
	sb.WriteString(" ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.Usage != "" {
		sb.WriteString("\n")
		sb.WriteString(label("Usage:"))
		sb.WriteString(" ")
		sb.WriteString(cliErr.Usage)
		sb.WriteString("\n")
	}

	if len(cliErr.Remediation) > 0 {
		sb.WriteString("\n")
		sb.WriteString(label("To fix this:"))
		sb.WriteString("\n")
		for _, step := range cliErr.Remediation {
			sb.WriteString("  - ")
			sb.WriteString(step)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
