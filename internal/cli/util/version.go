package util

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for envinit",
	Example: `  # Show version info
  envinit version

  # Plain output (for scripts)
  envinit version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		if plain {
			printPlainVersion(cmd.OutOrStdout())
		} else {
			printPrettyVersion(cmd.OutOrStdout(), shared.GetTerminalWidth())
		}
	},
}

func init() {
	versionCmd.GroupID = shared.GroupGettingStarted
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer) {
	fmt.Fprintf(w, "envinit %s\n", Version)
	fmt.Fprintf(w, "commit: %s\n", Commit)
	fmt.Fprintf(w, "built: %s\n", BuildDate)
	fmt.Fprintf(w, "go: %s\n", runtime.Version())
	fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/envinit"

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Display the source URL",
	Long:  "Display the source URL for the envinit project",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(SourceURL)
	},
}

// printPrettyVersion prints the logo and a box of build details centered
// in termWidth columns.
func printPrettyVersion(w io.Writer, termWidth int) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	// block characters are wider in bytes than on screen
	fmt.Fprintln(w)
	logoPadding := max((termWidth-shared.LogoDisplayWidth)/2, 0)
	for _, line := range shared.Logo {
		fmt.Fprintln(w, cyan(strings.Repeat(" ", logoPadding)+line))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dim(shared.CenterText(shared.Tagline, termWidth)))
	fmt.Fprintln(w)

	info := []struct {
		label string
		value string
	}{
		{"Version", Version},
		{"Commit", truncateCommit(Commit)},
		{"Built", BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}

	boxWidth := 44
	if termWidth < 50 {
		boxWidth = max(termWidth-6, 24)
	}
	contentWidth := boxWidth - 4

	pad := strings.Repeat(" ", max((termWidth-boxWidth)/2, 0))
	blank := pad + shared.BoxVertical + strings.Repeat(" ", boxWidth-2) + shared.BoxVertical

	fmt.Fprintln(w, pad+shared.BoxTopLeft+strings.Repeat(shared.BoxHorizontal, boxWidth-2)+shared.BoxTopRight)
	fmt.Fprintln(w, blank)
	for _, item := range info {
		line := fmt.Sprintf("  %s    %s", yellow(fmt.Sprintf("%12s", item.label)), white(item.value))
		// label width + spacing + value + margin
		if lineLen := 12 + 4 + len(item.value) + 2; lineLen < contentWidth {
			line += strings.Repeat(" ", contentWidth-lineLen)
		}
		fmt.Fprintln(w, pad+shared.BoxVertical+" "+line+" "+shared.BoxVertical)
	}
	fmt.Fprintln(w, blank)
	fmt.Fprintln(w, pad+shared.BoxBottomLeft+strings.Repeat(shared.BoxHorizontal, boxWidth-2)+shared.BoxBottomRight)
	fmt.Fprintln(w)
}

// truncateCommit shortens commit hash if it's too long
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
