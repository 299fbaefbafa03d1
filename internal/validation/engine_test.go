package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/ariel-frischer/envinit/internal/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func timeoutSchema() *schema.Schema {
	return schema.New("timeout").Add(
		schema.Required("timeout", schema.TypeInteger,
			validators.Parametrized("int_in_range", map[string]any{"min_value": 5, "max_value": 60})),
	)
}

func requireValidationError(t *testing.T, err error) *Error {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr
}

func TestValidate_DefaultsOnly(t *testing.T) {
	t.Parallel()

	s := schema.New("defaults").Add(
		schema.Optional("log_level", schema.TypeString, "INFO", validators.Named("log_level_valid")),
		schema.Optional("retries", schema.TypeInteger, 3),
		schema.Optional("verbose", schema.TypeBoolean, false),
		schema.Optional("labels", schema.TypeMapping, map[string]any{"team": "data"}),
	)

	got, err := Validate(map[string]any{}, s, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"log_level": "INFO",
		"retries":   3,
		"verbose":   false,
		"labels":    map[string]any{"team": "data"},
	}, got)

	// defaults are copied, not shared with the schema
	got["labels"].(map[string]any)["team"] = "changed"
	rule, _ := s.Rule("labels")
	assert.Equal(t, "data", rule.Default.(map[string]any)["team"])
}

func TestValidate_MissingRequired(t *testing.T) {
	t.Parallel()

	s := schema.New("req").Add(
		schema.Required("project_name", schema.TypeString, validators.Named("is_non_empty_str")),
		schema.Optional("log_dir", schema.TypeString, "logs"),
	)

	_, err := Validate(map[string]any{}, s, nil)
	verr := requireValidationError(t, err)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, FieldError{Key: "project_name", Message: "missing required field"}, verr.Errors[0])
	assert.Equal(t, []string{"[project_name] missing required field"}, verr.Messages())
}

func TestValidate_RequiredWithDefault(t *testing.T) {
	t.Parallel()

	s := schema.New("req").Add(schema.FieldRule{
		Key: "timeout", Type: schema.TypeInteger, Required: schema.RequirementRequired, Default: 10,
	})

	got, err := Validate(nil, s, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, got["timeout"])
}

func TestValidate_OptionalWithoutDefault(t *testing.T) {
	t.Parallel()

	s := schema.New("opt").Add(
		schema.Optional("qtest_auth_path", schema.TypeString, nil, validators.Named("file_exists")),
	)

	got, err := Validate(map[string]any{}, s, nil)
	require.NoError(t, err)
	value, present := got["qtest_auth_path"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestValidate_Placeholders(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		value           any
		wantPlaceholder bool
	}{
		"required marker":     {value: "<REQUIRED>", wantPlaceholder: true},
		"optional marker":     {value: "<OPTIONAL>", wantPlaceholder: true},
		"arbitrary wrapped":   {value: "<your project>", wantPlaceholder: true},
		"empty inner":         {value: "<>", wantPlaceholder: true},
		"padded":              {value: "  <REQUIRED> ", wantPlaceholder: true},
		"inner brackets only": {value: "a<b>c", wantPlaceholder: false},
		"leading only":        {value: "<abc", wantPlaceholder: false},
		"trailing only":       {value: "abc>", wantPlaceholder: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, rule := range []schema.FieldRule{
				schema.Required("name", schema.TypeString),
				schema.Optional("name", schema.TypeString, "default"),
			} {
				_, err := Validate(map[string]any{"name": tt.value}, schema.New("p").Add(rule), nil)
				if !tt.wantPlaceholder {
					assert.NoError(t, err)
					continue
				}
				verr := requireValidationError(t, err)
				require.Len(t, verr.Errors, 1)
				assert.Contains(t, verr.Errors[0].Message, "unresolved placeholder")
			}
		})
	}
}

func TestValidate_PlaceholderSkipsOtherChecks(t *testing.T) {
	t.Parallel()

	s := schema.New("p").Add(
		schema.Required("timeout", schema.TypeInteger,
			validators.Parametrized("int_in_range", map[string]any{"min_value": 5, "max_value": 60})),
	)

	_, err := Validate(map[string]any{"timeout": "<REQUIRED>"}, s, nil)
	verr := requireValidationError(t, err)
	assert.Len(t, verr.Errors, 1)
}

func TestValidate_IntInRange(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw      map[string]any
		want     any
		wantErrs []string
	}{
		"in range": {
			raw:  map[string]any{"timeout": 10},
			want: 10,
		},
		"out of range": {
			raw:      map[string]any{"timeout": 99},
			wantErrs: []string{"[timeout] int_in_range: timeout=99 not in range [5, 60]"},
		},
		"lower bound inclusive": {
			raw:  map[string]any{"timeout": 5},
			want: 5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Validate(tt.raw, timeoutSchema(), nil)
			if tt.wantErrs != nil {
				assert.Nil(t, got)
				verr := requireValidationError(t, err)
				assert.Equal(t, tt.wantErrs, verr.Messages())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got["timeout"])
		})
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		rule    schema.FieldRule
		value   any
		wantMsg string
	}{
		"string for integer": {
			rule:    schema.Required("retries", schema.TypeInteger),
			value:   "3",
			wantMsg: "expected type integer, got string (3)",
		},
		"int for boolean": {
			rule:    schema.Required("verbose", schema.TypeBoolean),
			value:   1,
			wantMsg: "expected type boolean, got integer (1)",
		},
		"bool for integer": {
			rule:    schema.Required("retries", schema.TypeInteger),
			value:   true,
			wantMsg: "expected type integer, got boolean (true)",
		},
		"list for mapping": {
			rule:    schema.Required("labels", schema.TypeMapping),
			value:   []any{"a"},
			wantMsg: "expected type mapping, got list ([a])",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Validate(map[string]any{tt.rule.Key: tt.value}, schema.New("t").Add(tt.rule), nil)
			verr := requireValidationError(t, err)
			require.Len(t, verr.Errors, 1)
			assert.Equal(t, tt.wantMsg, verr.Errors[0].Message)
		})
	}
}

func TestValidate_TypeMismatchStillRunsValidators(t *testing.T) {
	t.Parallel()

	_, err := Validate(map[string]any{"timeout": "99"}, timeoutSchema(), nil)
	verr := requireValidationError(t, err)
	assert.Equal(t, []string{
		"[timeout] expected type integer, got string (99)",
		"[timeout] int_in_range: timeout must be an integer, got string",
	}, verr.Messages())
}

func TestValidate_MultipleValidatorFailuresForOneField(t *testing.T) {
	t.Parallel()

	s := schema.New("multi").Add(
		schema.Required("output_dir", schema.TypeString,
			validators.Parametrized("string_in_string", map[string]any{"input_str": "output"}),
			validators.Named("is_bool_str"),
			validators.Named("is_non_empty_str"),
		),
	)

	_, err := Validate(map[string]any{"output_dir": "data"}, s, nil)
	verr := requireValidationError(t, err)
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, "output_dir", verr.Errors[0].Key)
	assert.Contains(t, verr.Errors[0].Message, "string_in_string:")
	assert.Contains(t, verr.Errors[1].Message, "is_bool_str:")
}

func TestValidate_AggregatesAcrossFieldsInSchemaOrder(t *testing.T) {
	t.Parallel()

	s := schema.New("order").Add(
		schema.Required("zeta", schema.TypeString),
		schema.Required("alpha", schema.TypeInteger),
		schema.Optional("mid", schema.TypeString, "INFO", validators.Named("log_level_valid")),
	)

	raw := map[string]any{"alpha": "x", "mid": "LOUD"}
	_, err := Validate(raw, s, nil)
	verr := requireValidationError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, []string{
		verr.Errors[0].Key, verr.Errors[1].Key, verr.Errors[2].Key,
	})
	assert.Len(t, verr.ForKey("alpha"), 1)
}

func TestValidate_PassesThroughUnknownKeys(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"timeout": 10,
		"extra":   map[string]any{"nested": []any{1, 2}},
	}
	got, err := Validate(raw, timeoutSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, raw["extra"], got["extra"])

	// output does not alias the input
	got["extra"].(map[string]any)["nested"] = "changed"
	assert.Equal(t, []any{1, 2}, raw["extra"].(map[string]any)["nested"])
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	s := schema.New("m").Add(schema.Optional("retries", schema.TypeInteger, 3))
	raw := map[string]any{"other": "x"}
	_, err := Validate(raw, s, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"other": "x"}, raw)
}

func TestValidate_Deterministic(t *testing.T) {
	t.Parallel()

	s := schema.New("det").Add(
		schema.Required("a", schema.TypeString, validators.Named("is_non_empty_str")),
		schema.Optional("b", schema.TypeInteger, 1),
		schema.Required("c", schema.TypeInteger),
		schema.Optional("d", schema.TypeString, "x", validators.Named("is_bool_str"), validators.Named("not_placeholder")),
	)

	good := map[string]any{"a": "v", "c": 2, "d": "true", "z": []any{"p"}}
	first, err := Validate(good, s, nil)
	require.NoError(t, err)
	second, err := Validate(good, s, nil)
	require.NoError(t, err)

	firstYAML, err := yaml.Marshal(first)
	require.NoError(t, err)
	secondYAML, err := yaml.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstYAML, secondYAML)

	bad := map[string]any{"a": " ", "d": "maybe"}
	_, err1 := Validate(bad, s, nil)
	_, err2 := Validate(bad, s, nil)
	assert.Equal(t, requireValidationError(t, err1).Messages(), requireValidationError(t, err2).Messages())
}

func TestValidate_InlineAndCustomValidators(t *testing.T) {
	t.Parallel()

	reg := validators.NewRegistry()
	reg.Register("even", func(value any, key string) error {
		if n, _ := value.(int); n%2 != 0 {
			return fmt.Errorf("%s must be even, got %v", key, value)
		}
		return nil
	})

	s := schema.New("custom").Add(
		schema.Required("count", schema.TypeInteger,
			validators.Named("even"),
			validators.Inline("", func(value any, key string) error {
				return fmt.Errorf("%s rejected", key)
			}),
			validators.Inline("port_check", func(any, string) error { return errors.New("closed") }),
		),
	)

	_, err := Validate(map[string]any{"count": 3}, s, reg)
	verr := requireValidationError(t, err)
	assert.Equal(t, []string{
		"[count] even: count must be even, got 3",
		"[count] inline: count rejected",
		"[count] port_check: closed",
	}, verr.Messages())

	// the same schema does not see "even" without its registry
	_, err = Validate(map[string]any{"count": 4}, s, nil)
	verr = requireValidationError(t, err)
	assert.Contains(t, verr.Messages()[0], "[count] even: unknown validator 'even'")
}

func TestValidate_AuthoringErrorsReportedAsValues(t *testing.T) {
	t.Parallel()

	s := schema.New("authoring").Add(
		schema.Required("a", schema.TypeString,
			validators.Named("does_not_exist"),
			validators.ParseSpec(42),
			validators.Parametrized("int_in_range", map[string]any{"min": 1}),
		),
	)

	_, err := Validate(map[string]any{"a": "x"}, s, nil)
	verr := requireValidationError(t, err)
	require.Len(t, verr.Errors, 3)
	assert.Contains(t, verr.Errors[0].Message, "unknown validator 'does_not_exist'")
	assert.Contains(t, verr.Errors[1].Message, "invalid validator specification: 42")
	assert.Contains(t, verr.Errors[2].Message, "cannot initialize validator 'int_in_range'")
}

func TestValidate_RecoversPanickingValidator(t *testing.T) {
	t.Parallel()

	s := schema.New("panic").Add(
		schema.Required("x", schema.TypeAny,
			validators.Inline("boom", func(any, string) error { panic("kaboom") }),
			validators.Named("is_non_empty_str"),
		),
	)

	_, err := Validate(map[string]any{"x": ""}, s, nil)
	verr := requireValidationError(t, err)
	assert.Equal(t, []string{
		"[x] boom: validator panicked: kaboom",
		"[x] is_non_empty_str: x cannot be an empty string",
	}, verr.Messages())
}

func TestValidate_NilSchemaPassesThrough(t *testing.T) {
	t.Parallel()

	got, err := Validate(map[string]any{"a": 1}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, got)
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	single := &Error{Errors: []FieldError{{Key: "a", Message: "bad"}}}
	assert.Equal(t, "config validation failed: [a] bad", single.Error())

	multi := &Error{}
	multi.Add("a", "bad %d", 1)
	multi.Add("b", "worse")
	assert.Equal(t, "config validation failed with 2 errors:\n  - [a] bad 1\n  - [b] worse", multi.Error())
	assert.NoError(t, (&Error{}).AsError())
}
