package validators

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

const (
	// RequiredPlaceholder marks a value the user must supply.
	RequiredPlaceholder = "<REQUIRED>"
	// OptionalPlaceholder marks a value the user may supply.
	OptionalPlaceholder = "<OPTIONAL>"
)

// IsPlaceholder reports whether value is a string wrapped in angle brackets
// after trimming, such as "<REQUIRED>" or "<>".
func IsPlaceholder(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	return len(s) >= 2 && strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")
}

// LogLevels are the accepted log_level_valid values, compared upper-cased.
var LogLevels = []string{"CRITICAL", "DEBUG", "ERROR", "INFO", "WARNING"}

var builtins = map[string]Entry{}

func init() {
	for _, entry := range []Entry{
		{Name: "log_level_valid", Kind: KindCheck, Check: logLevelValid,
			Description: "one of DEBUG, INFO, WARNING, ERROR, CRITICAL (case-insensitive)"},
		{Name: "is_non_empty_str", Kind: KindCheck, Check: isNonEmptyStr,
			Description: "a string that is not blank"},
		{Name: "is_bool_str", Kind: KindCheck, Check: isBoolStr,
			Description: "the string 'true' or 'false' (case-insensitive)"},
		{Name: "not_placeholder", Kind: KindCheck, Check: notPlaceholder,
			Description: "not an unresolved <...> placeholder"},
		{Name: "valid_path_string", Kind: KindCheck, Check: validPathString,
			Description: "a string usable as a filesystem path"},
		{Name: "file_exists", Kind: KindCheck, Check: fileExists,
			Description: "path to an existing regular file"},
		{Name: "https_url_with_trailing_slash", Kind: KindCheck, Check: httpsURLWithTrailingSlash,
			Description: "an https:// URL ending in '/'"},
		{Name: "valid_filename", Kind: KindCheck, Check: validFilename,
			Description: "a single file name, not a reserved device name"},
		{Name: "valid_excel_tab_name", Kind: KindCheck, Check: validExcelTabName,
			Description: "an Excel sheet name (1-31 chars, none of :\\/?*[])"},
		{Name: "int_in_range", Kind: KindFactory, Factory: intInRange,
			Params: []string{"min_value", "max_value"}, Description: "an integer within [min_value, max_value]"},
		{Name: "string_in_string", Kind: KindFactory, Factory: stringInString,
			Params: []string{"input_str"}, Description: "a string containing input_str"},
		{Name: "dict_must_have_values", Kind: KindFactory, Factory: dictMustHaveValues,
			Params: []string{"required_values"}, Description: "a mapping whose values include every required value"},
		{Name: "int_no_leading_zero", Kind: KindFactory, Factory: intNoLeadingZero,
			Params: []string{"digits"}, Description: "a positive integer, optionally with exactly N digits"},
		{Name: "one_of", Kind: KindFactory, Factory: oneOf,
			Params: []string{"values"}, Description: "equal to one of values"},
		{Name: "matches_pattern", Kind: KindFactory, Factory: matchesPattern,
			Params: []string{"pattern"}, Description: "a string matching the regular expression pattern"},
	} {
		entry.Builtin = true
		builtins[entry.Name] = entry
	}
}

// BuiltinNames returns the names of all built-in validators, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func requireString(value any, key string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %s", key, TypeName(value))
	}
	return s, nil
}

// asInt accepts Go integer kinds only. Booleans and floats are rejected, as
// are unsigned values beyond the int64 range.
func asInt(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	default:
		return 0, false
	}
}

// isInteger reports whether value has a Go integer kind, whatever its size.
func isInteger(value any) bool {
	return value != nil && isIntegerKind(reflect.ValueOf(value).Kind())
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func logLevelValid(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	upper := strings.ToUpper(s)
	for _, level := range LogLevels {
		if upper == level {
			return nil
		}
	}
	return fmt.Errorf("%s='%s' is invalid, must be one of [%s]", key, s, strings.Join(LogLevels, ", "))
}

func isNonEmptyStr(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s cannot be an empty string", key)
	}
	return nil
}

func isBoolStr(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "true", "false":
		return nil
	}
	return fmt.Errorf("%s must be 'true' or 'false' (case-insensitive), got '%s'", key, s)
}

func notPlaceholder(value any, key string) error {
	if IsPlaceholder(value) {
		return fmt.Errorf("%s contains unresolved placeholder value: %v", key, value)
	}
	return nil
}

func validPathString(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is not a valid path string: path is empty", key)
	}
	if strings.ContainsRune(s, 0) {
		return fmt.Errorf("%s is not a valid path string: contains a NUL byte: %q", key, s)
	}
	if runtime.GOOS == "windows" {
		// drive letters are the only place a colon may appear
		rest := s
		if len(rest) >= 2 && rest[1] == ':' {
			rest = rest[2:]
		}
		if i := strings.IndexAny(rest, `<>:"|?*`); i >= 0 {
			return fmt.Errorf("%s is not a valid path string: invalid character %q in '%s'", key, rest[i], s)
		}
	}
	return nil
}

func fileExists(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	if !playgroundVar(s, "file") {
		return fmt.Errorf("%s must point to an existing file, got '%s'", key, s)
	}
	return nil
}

func httpsURLWithTrailingSlash(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(s, "https://") || !strings.HasSuffix(s, "/") || !playgroundVar(s, "url") {
		return fmt.Errorf("%s must start with 'https://' and end with '/', got '%s'", key, s)
	}
	return nil
}

var reservedFilenames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// validFilename applies the strictest common rules (Windows) on every
// platform so a config stays portable.
func validFilename(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(s) == "":
		return fmt.Errorf("%s cannot be an empty file name", key)
	case s == "." || s == "..":
		return fmt.Errorf("%s must be a file name, got '%s'", key, s)
	case len(s) > 255:
		return fmt.Errorf("%s exceeds the 255-character file name limit: '%s'", key, s)
	case strings.HasSuffix(s, " ") || strings.HasSuffix(s, "."):
		return fmt.Errorf("%s must not end with a space or a dot, got '%s'", key, s)
	}
	for _, r := range s {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return fmt.Errorf("%s contains invalid file name character %q, got '%s'", key, r, s)
		}
	}
	base := strings.ToUpper(strings.SplitN(s, ".", 2)[0])
	if reservedFilenames[strings.TrimSpace(base)] {
		return fmt.Errorf("%s uses the reserved device name '%s', got '%s'", key, base, s)
	}
	return nil
}

func validExcelTabName(value any, key string) error {
	s, err := requireString(value, key)
	if err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s cannot be empty or whitespace", key)
	}
	if len([]rune(s)) > 31 {
		return fmt.Errorf("%s exceeds 31-character limit: '%s'", key, s)
	}
	if i := strings.IndexAny(s, `:\/?*[]`); i >= 0 {
		return fmt.Errorf("%s contains invalid character %q (none of :\\/?*[] allowed), got '%s'", key, s[i], s)
	}
	return nil
}

type intRangeParams struct {
	MinValue *int64 `mapstructure:"min_value" validate:"required"`
	MaxValue *int64 `mapstructure:"max_value" validate:"required"`
}

func intInRange(args map[string]any) (Check, error) {
	var p intRangeParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	lo, hi := *p.MinValue, *p.MaxValue
	if lo > hi {
		return nil, fmt.Errorf("%w: min_value %d is greater than max_value %d", ErrInvalidArguments, lo, hi)
	}
	return func(value any, key string) error {
		n, ok := asInt(value)
		if !ok && isInteger(value) {
			return fmt.Errorf("%s=%v not in range [%d, %d]", key, value, lo, hi)
		}
		if !ok {
			return fmt.Errorf("%s must be an integer, got %s", key, TypeName(value))
		}
		if n < lo || n > hi {
			return fmt.Errorf("%s=%d not in range [%d, %d]", key, n, lo, hi)
		}
		return nil
	}, nil
}

type stringInStringParams struct {
	InputStr *string `mapstructure:"input_str" validate:"required"`
}

func stringInString(args map[string]any) (Check, error) {
	var p stringInStringParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	needle := *p.InputStr
	return func(value any, key string) error {
		s, err := requireString(value, key)
		if err != nil {
			return err
		}
		if !strings.Contains(s, needle) {
			return fmt.Errorf("%s must contain the substring '%s', got '%s'", key, needle, s)
		}
		return nil
	}, nil
}

type dictValuesParams struct {
	RequiredValues []any `mapstructure:"required_values" validate:"required"`
}

func dictMustHaveValues(args map[string]any) (Check, error) {
	var p dictValuesParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	return func(value any, key string) error {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map {
			return fmt.Errorf("%s must be a mapping, got %s", key, TypeName(value))
		}
		present := make([]any, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			present = append(present, iter.Value().Interface())
		}
		var missing []any
		for _, want := range p.RequiredValues {
			if !containsValue(present, want) {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s is missing required values: %v", key, missing)
		}
		return nil
	}, nil
}

type leadingZeroParams struct {
	Digits *int `mapstructure:"digits" validate:"omitempty,gt=0"`
}

func intNoLeadingZero(args map[string]any) (Check, error) {
	var p leadingZeroParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	return func(value any, key string) error {
		if !isInteger(value) {
			return fmt.Errorf("%s must be an integer, got %s", key, TypeName(value))
		}
		// unsigned values past int64 are positive, only their digits matter
		if n, ok := asInt(value); ok && n < 1 {
			return fmt.Errorf("%s must be a positive integer, got %d", key, n)
		}
		if p.Digits != nil {
			if got := len(fmt.Sprint(value)); got != *p.Digits {
				return fmt.Errorf("%s must be exactly %d digits long, got %v (%d digits)", key, *p.Digits, value, got)
			}
		}
		return nil
	}, nil
}

type oneOfParams struct {
	Values []any `mapstructure:"values" validate:"required,min=1"`
}

func oneOf(args map[string]any) (Check, error) {
	var p oneOfParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	return func(value any, key string) error {
		if containsValue(p.Values, value) {
			return nil
		}
		return fmt.Errorf("%s=%v is invalid, must be one of %v", key, value, p.Values)
	}, nil
}

type patternParams struct {
	Pattern string `mapstructure:"pattern" validate:"required"`
}

func matchesPattern(args map[string]any) (Check, error) {
	var p patternParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q does not compile: %v", ErrInvalidArguments, p.Pattern, err)
	}
	return func(value any, key string) error {
		s, err := requireString(value, key)
		if err != nil {
			return err
		}
		if !re.MatchString(s) {
			return fmt.Errorf("%s must match pattern '%s', got '%s'", key, p.Pattern, s)
		}
		return nil
	}, nil
}

func containsValue(haystack []any, needle any) bool {
	for _, candidate := range haystack {
		if valuesEqual(candidate, needle) {
			return true
		}
	}
	return false
}

// valuesEqual compares integers by value regardless of their Go width, so a
// schema's 1 matches a config's int64(1).
func valuesEqual(a, b any) bool {
	if ai, ok := asInt(a); ok {
		if bi, ok := asInt(b); ok {
			return ai == bi
		}
	}
	return reflect.DeepEqual(a, b)
}

// TypeName describes a config value using schema type vocabulary.
func TypeName(value any) string {
	if value == nil {
		return "null"
	}
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64:
		return "float"
	}
	if isInteger(value) {
		return "integer"
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map:
		return "mapping"
	case reflect.Slice, reflect.Array:
		return "list"
	}
	return fmt.Sprintf("%T", value)
}
