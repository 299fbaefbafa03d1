package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYAMLSyntaxFromBytes(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data    string
		wantErr bool
	}{
		"valid":           {data: "a: 1\nb: two\n"},
		"empty":           {data: ""},
		"whitespace only": {data: "  \n\n"},
		"list document":   {data: "- a\n- b\n"},
		"unclosed flow":   {data: "a: [1, 2\n", wantErr: true},
		"bad indentation": {data: "a:\n  b: 1\n c: 2\n", wantErr: true},
		"tab indentation": {data: "a:\n\tb: 1\n", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := ValidateYAMLSyntaxFromBytes([]byte(tt.data), "c.yml")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ferr *FileError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, "c.yml", ferr.FilePath)
			assert.NotEmpty(t, ferr.Message)
		})
	}
}

func TestValidateYAMLSyntax_MissingFileIsFine(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateYAMLSyntax(filepath.Join(t.TempDir(), "absent.yml")))
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	raw, err := ReadFile(write("ok.yml", "a: 1\nb: [x]\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": []any{"x"}}, raw)

	raw, err = ReadFile(write("empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, raw)

	_, err = ReadFile(write("list.yml", "- a\n"))
	assert.EqualError(t, err, filepath.Join(dir, "list.yml")+": top level must be a mapping of keys to values")

	_, err = ReadFile(filepath.Join(dir, "absent.yml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestFileError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "c.yml:3:1: bad", (&FileError{FilePath: "c.yml", Line: 3, Column: 1, Message: "bad"}).Error())
	assert.Equal(t, "c.yml: bad", (&FileError{FilePath: "c.yml", Message: "bad"}).Error())
}
