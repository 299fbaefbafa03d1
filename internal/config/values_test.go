package config

import (
	"testing"

	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ     schema.Type
		value   string
		want    any
		wantErr string
	}{
		"bool true":           {typ: schema.TypeBoolean, value: "true", want: true},
		"bool mixed case":     {typ: schema.TypeBoolean, value: "False", want: false},
		"bool invalid":        {typ: schema.TypeBoolean, value: "yes", wantErr: "invalid boolean"},
		"int":                 {typ: schema.TypeInteger, value: "-3", want: -3},
		"int invalid":         {typ: schema.TypeInteger, value: "1.5", wantErr: "invalid integer"},
		"string stays string": {typ: schema.TypeString, value: "true", want: "true"},
		"mapping refused":     {typ: schema.TypeMapping, value: "a", wantErr: "cannot set a mapping"},
		"any infers bool":     {typ: schema.TypeAny, value: "true", want: true},
		"untyped infers int":  {typ: "", value: "12", want: 12},
		"untyped falls back":  {typ: "", value: "logs", want: "logs"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseValue(tt.typ, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
