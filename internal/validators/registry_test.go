package validators

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveSpecs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		spec      Spec
		wantErrIs error
		wantMsg   string
	}{
		"named built-in check": {
			spec: Named("is_non_empty_str"),
		},
		"named factory with optional args": {
			spec: Named("int_no_leading_zero"),
		},
		"parametrized factory": {
			spec: Parametrized("int_in_range", map[string]any{"min_value": 5, "max_value": 60}),
		},
		"inline check": {
			spec: Inline("", func(any, string) error { return nil }),
		},
		"unknown name": {
			spec:      Named("does_not_exist"),
			wantErrIs: ErrUnknownValidator,
			wantMsg:   "unknown validator 'does_not_exist'",
		},
		"unknown parametrized name": {
			spec:      Parametrized("int_in_rlange", map[string]any{"min_value": 1, "max_value": 10}),
			wantErrIs: ErrUnknownValidator,
			wantMsg:   "int_in_rlange",
		},
		"misspelled argument": {
			spec:      Parametrized("int_in_range", map[string]any{"min_valu": 1, "max_value": 10}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "min_valu",
		},
		"fractional bound": {
			spec:      Parametrized("int_in_range", map[string]any{"min_value": 5.9, "max_value": 60.9}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "must be a whole number, got 5.9",
		},
		"textual bound": {
			spec:      Parametrized("int_in_range", map[string]any{"min_value": "5", "max_value": 60}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "must be a number, got string '5'",
		},
		"fractional digits": {
			spec:      Parametrized("int_no_leading_zero", map[string]any{"digits": 4.5}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "whole number",
		},
		"whole float bound": {
			spec: Parametrized("int_in_range", map[string]any{"min_value": 5.0, "max_value": 60.0}),
		},
		"missing argument": {
			spec:      Parametrized("int_in_range", map[string]any{"max_value": 10}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "missing argument 'min_value'",
		},
		"named factory with required args": {
			spec:      Named("string_in_string"),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "missing argument 'input_str'",
		},
		"arguments for plain check": {
			spec:      Parametrized("is_bool_str", map[string]any{"strict": true}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "takes no arguments",
		},
		"inverted range": {
			spec:      Parametrized("int_in_range", map[string]any{"min_value": 10, "max_value": 1}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "greater than max_value",
		},
		"bad regex": {
			spec:      Parametrized("matches_pattern", map[string]any{"pattern": "("}),
			wantErrIs: ErrInvalidArguments,
			wantMsg:   "does not compile",
		},
		"malformed spec": {
			spec:      ParseSpec(42),
			wantErrIs: ErrInvalidSpec,
			wantMsg:   "invalid validator specification: 42",
		},
		"inline without function": {
			spec:      Spec{Kind: SpecInline},
			wantErrIs: ErrInvalidSpec,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			check, err := NewRegistry().Resolve(tt.spec)
			if tt.wantErrIs == nil {
				require.NoError(t, err)
				assert.NotNil(t, check)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErrIs)
			var resolveErr *ResolveError
			assert.True(t, errors.As(err, &resolveErr))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRegistry_CustomShadowsBuiltin(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("is_non_empty_str", func(value any, key string) error {
		return fmt.Errorf("%s: custom override", key)
	})

	check, err := reg.Resolve(Named("is_non_empty_str"))
	require.NoError(t, err)
	assert.EqualError(t, check("x", "name"), "name: custom override")

	// a fresh registry still sees the built-in
	check, err = NewRegistry().Resolve(Named("is_non_empty_str"))
	require.NoError(t, err)
	assert.NoError(t, check("x", "name"))
}

func TestRegistry_CustomFactory(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.RegisterFactory("max_len", func(args map[string]any) (Check, error) {
		limit, ok := args["limit"].(int)
		if !ok {
			return nil, errors.New("limit must be an int")
		}
		return func(value any, key string) error {
			if s, _ := value.(string); len(s) > limit {
				return fmt.Errorf("%s longer than %d", key, limit)
			}
			return nil
		}, nil
	})

	check, err := reg.Resolve(Parametrized("max_len", map[string]any{"limit": 3}))
	require.NoError(t, err)
	assert.NoError(t, check("abc", "code"))
	assert.EqualError(t, check("abcd", "code"), "code longer than 3")

	_, err = reg.Resolve(Parametrized("max_len", map[string]any{"limit": "3"}))
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestRegistry_NilResolvesBuiltins(t *testing.T) {
	t.Parallel()

	var reg *Registry
	assert.True(t, reg.Has("log_level_valid"))
	assert.False(t, reg.Has("nope"))
	assert.Len(t, reg.Entries(), len(BuiltinNames()))
}

func TestRegistry_EntriesAndClone(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("zz_custom", func(any, string) error { return nil })

	entries := reg.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "zz_custom", entries[len(entries)-1].Name)
	assert.False(t, entries[len(entries)-1].Builtin)

	clone := reg.Clone()
	clone.Register("only_in_clone", func(any, string) error { return nil })
	assert.True(t, clone.Has("zz_custom"))
	assert.False(t, reg.Has("only_in_clone"))
}

func TestParseSpec(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw      any
		wantKind SpecKind
		wantName string
	}{
		"string":               {raw: "is_bool_str", wantKind: SpecNamed, wantName: "is_bool_str"},
		"mapping":              {raw: map[string]any{"name": "one_of", "values": []any{"a"}}, wantKind: SpecParametrized, wantName: "one_of"},
		"mapping without name": {raw: map[string]any{"values": []any{"a"}}, wantKind: SpecInvalid},
		"mapping name not str": {raw: map[string]any{"name": 3}, wantKind: SpecInvalid},
		"func":                 {raw: func(any, string) error { return nil }, wantKind: SpecInline},
		"check":                {raw: Check(func(any, string) error { return nil }), wantKind: SpecInline},
		"number":               {raw: 7, wantKind: SpecInvalid},
		"list":                 {raw: []any{"a"}, wantKind: SpecInvalid},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			spec := ParseSpec(tt.raw)
			assert.Equal(t, tt.wantKind, spec.Kind)
			assert.Equal(t, tt.wantName, spec.Name)
		})
	}
}

func TestParseSpec_ArgsExcludeName(t *testing.T) {
	t.Parallel()

	spec := ParseSpec(map[string]any{"name": "int_in_range", "min_value": 1, "max_value": 2})
	assert.Equal(t, map[string]any{"min_value": 1, "max_value": 2}, spec.Args)
	assert.Equal(t, "int_in_range(max_value=2, min_value=1)", spec.String())
}

func TestSpec_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "inline", Inline("", nil).Label())
	assert.Equal(t, "port_check", Inline("port_check", nil).Label())
	assert.Equal(t, "is_bool_str", Named("is_bool_str").Label())
	assert.Equal(t, "invalid", ParseSpec(1.5).Label())
}
