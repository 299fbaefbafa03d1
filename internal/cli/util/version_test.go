package util

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/ariel-frischer/envinit/internal/cli/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests that modify the global Version variable cannot run in parallel.
// They are grouped in the TestVersionGlobalVariable test.

func TestVersionGlobalVariable(t *testing.T) {
	t.Run("IsDevBuild", func(t *testing.T) {
		tests := map[string]struct {
			version string
			want    bool
		}{
			"dev version": {
				version: "dev",
				want:    true,
			},
			"release version": {
				version: "v0.2.0",
				want:    false,
			},
		}

		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				origVersion := Version
				Version = tt.version
				defer func() { Version = origVersion }()

				assert.Equal(t, tt.want, IsDevBuild())
			})
		}
	})

	t.Run("PlainVersion", func(t *testing.T) {
		origVersion, origCommit := Version, Commit
		Version, Commit = "v0.2.0", "abc123"
		defer func() { Version, Commit = origVersion, origCommit }()

		var out bytes.Buffer
		printPlainVersion(&out)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "envinit v0.2.0", lines[0])
		assert.Equal(t, "commit: abc123", lines[1])
		assert.Equal(t, "go: "+runtime.Version(), lines[3])
	})
}

func TestPrettyVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		width int
	}{
		"wide terminal":   {width: 100},
		"narrow terminal": {width: 40},
		"tiny terminal":   {width: 10},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			printPrettyVersion(&out, tt.width)

			text := out.String()
			for _, line := range shared.Logo {
				assert.Contains(t, text, line)
			}
			assert.Contains(t, text, shared.Tagline)
			assert.Contains(t, text, shared.BoxTopLeft)
			assert.Contains(t, text, "Platform")
		})
	}
}

func TestTruncateCommit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		commit string
		want   string
	}{
		"long hash":  {commit: "0123456789abcdef", want: "01234567"},
		"short hash": {commit: "abc", want: "abc"},
		"unknown":    {commit: "unknown", want: "unknown"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, truncateCommit(tt.commit))
		})
	}
}
