package sensitive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSecret_NeverRendersPlaintext(t *testing.T) {
	t.Parallel()

	s := New("hunter2")

	tests := map[string]string{
		"String":  s.String(),
		"%v":      fmt.Sprintf("%v", s),
		"%+v":     fmt.Sprintf("%+v", s),
		"%#v":     fmt.Sprintf("%#v", s),
		"%s":      fmt.Sprintf("%s", s),
		"%q":      fmt.Sprintf("%q", s),
		"%x":      fmt.Sprintf("%x", s),
		"in map":  fmt.Sprintf("%v", map[string]Secret{"token": s}),
		"pointer": fmt.Sprintf("%v", &s),
	}

	for name, got := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.NotContains(t, got, "hunter2")
			assert.Contains(t, got, Mask)
		})
	}
}

func TestSecret_Marshalling(t *testing.T) {
	t.Parallel()

	payload := map[string]any{"token": New("hunter2")}

	out, err := yaml.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
	assert.Contains(t, string(out), Mask)

	js, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"*****"}`, string(js))
}

func TestSecret_LogValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("loaded", "token", New("hunter2"))

	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), Mask)
}

func TestSecret_Equal(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		secret Secret
		other  any
		want   bool
	}{
		"same wrapped value":      {secret: New("abc"), other: New("abc"), want: true},
		"different wrapped value": {secret: New("abc"), other: New("xyz"), want: false},
		"raw value":               {secret: New("abc"), other: "abc", want: true},
		"raw int":                 {secret: New(42), other: 42, want: true},
		"pointer to secret":       {secret: New("abc"), other: &Secret{value: "abc"}, want: true},
		"type differs":            {secret: New(42), other: "42", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.secret.Equal(tt.other))
		})
	}
}

func TestSecret_Reveal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", New("abc").Reveal())
	assert.Equal(t, "abc", New("abc").RevealString())
	assert.Equal(t, "8080", New(8080).RevealString())
	assert.Equal(t, "", New(nil).RevealString())
}

func TestMaskConfig(t *testing.T) {
	t.Parallel()

	cfg := map[string]any{
		"project_name": "demo",
		"api_key":      New("k"),
		"auth": map[string]map[string]Secret{
			"qtest": {"token": New("t")},
		},
	}

	masked := MaskConfig(cfg)

	assert.Equal(t, "demo", masked["project_name"])
	assert.Equal(t, Mask, masked["api_key"])
	assert.Equal(t, map[string]any{"qtest": Mask}, masked["auth"])
	// the input is left untouched
	assert.IsType(t, map[string]map[string]Secret{}, cfg["auth"])
}
