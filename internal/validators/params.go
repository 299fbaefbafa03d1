package validators

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// playground validates factory parameter structs and backs the built-ins
// that map onto go-playground tags (file, url).
var playground = newPlayground()

func newPlayground() *validator.Validate {
	v := validator.New()
	// Report argument names the way schema authors write them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeArgs fills params from a parametrized spec's arguments. Unknown
// argument names and missing required arguments are both rejected.
func decodeArgs(args map[string]any, params any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      params,
		ErrorUnused: true,
		TagName:     "mapstructure",
		DecodeHook:  wholeNumbersOnly,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	if err := playground.Struct(params); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArguments, describeParamErrors(err))
	}
	return nil
}

// wholeNumbersOnly stops the decoder from truncating a fractional or
// textual argument into an integer parameter.
func wholeNumbersOnly(from, to reflect.Type, data any) (any, error) {
	for to.Kind() == reflect.Pointer {
		to = to.Elem()
	}
	if !isIntegerKind(to.Kind()) {
		return data, nil
	}
	switch v := data.(type) {
	case float32:
		if float32(int64(v)) != v {
			return nil, fmt.Errorf("must be a whole number, got %v", v)
		}
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("must be a whole number, got %v", v)
		}
	case string:
		return nil, fmt.Errorf("must be a number, got string '%s'", v)
	}
	return data, nil
}

func describeParamErrors(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("missing argument '%s'", fe.Field()))
		case "gt", "gte", "min":
			msgs = append(msgs, fmt.Sprintf("argument '%s' must be >= %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("argument '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// playgroundVar runs a go-playground tag against a single value.
func playgroundVar(value any, tag string) bool {
	return playground.Var(value, tag) == nil
}
