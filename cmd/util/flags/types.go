package flags

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
	"golang.org/x/exp/slices"

	"github.com/dsx-project/dsx/cmd/util/output"
	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/logger"
)

// A Parser is a function that can convert a string into a native object.
type Parser[T any] func(string) (T, error)

// A KeyValueParser is like a Parser except that it returns two values
// representing a key and a value.
type KeyValueParser[K comparable, V any] func(string) (K, V, error)

// A Stringer is a function that can convert a native object into a string.
type Stringer[T any] func(*T) string

// A KeyValueStringer is like a Stringer except that it converts native objects
// representing a key and a value into a string.
type KeyValueStringer[K comparable, V any] func(*K, *V) string

// A ValueFlag is a pflag.Value that knows how to take a command line value
// represented as a string and set it as a native object into a struct.
type ValueFlag[T any] struct {
	// A pointer to a variable that will be set by this flag.
	// This will be a pointer to some struct value we want to set.
	value *T

	// A Parser to turn the command line string into a native value.
	parser Parser[T]

	// A Stringer to turn the default value for the flag back into a native
	// string, to be printed as help.
	stringer Stringer[T]

	// How the value should be described in the help string. (e.g. string, int)
	typeStr string
}

// Set implements pflag.Value
func (s *ValueFlag[T]) Set(input string) error {
	value, err := s.parser(input)
	*s.value = value
	return err
}

// String implements pflag.Value
func (s *ValueFlag[T]) String() string {
	return s.stringer(s.value)
}

// Type implements pflag.Value
func (s *ValueFlag[T]) Type() string {
	return s.typeStr
}

var _ pflag.Value = (*ValueFlag[int])(nil)

// A MapValueFlag is like a ValueFlag except it will add the command line
// value into a map of values, and hence can be used for flags that are meant
// to appear multiple times and represent a key-value structure.
type MapValueFlag[K comparable, V any] struct {
	// A pointer to a variable that will be set by this flag.
	// This will be a pointer to some struct value we want to set.
	value *map[K]V

	// A Parser to turn the command line string into a native value.
	parser KeyValueParser[K, V]

	// A Stringer to turn the default value for the flag back into a native
	// string, to be printed as help.
	stringer KeyValueStringer[K, V]

	// How the value should be described in the help string. (e.g. string, int)
	typeStr string
}

// Set implements pflag.Value
func (s *MapValueFlag[K, V]) Set(input string) error {
	key, value, err := s.parser(input)
	if err != nil {
		return err
	}
	if *s.value == nil {
		*s.value = make(map[K]V)
	}
	(*s.value)[key] = value
	return nil
}

// String implements pflag.Value
func (s *MapValueFlag[K, V]) String() string {
	strs := make([]string, 0, len(*s.value))
	for key, value := range *s.value {
		key, value := key, value
		strs = append(strs, s.stringer(&key, &value))
	}
	sort.Strings(strs)
	return strings.Join(strs, ", ")
}

// Type implements pflag.Value
func (s *MapValueFlag[K, V]) Type() string {
	return s.typeStr
}

var _ pflag.Value = (*MapValueFlag[int, int])(nil)

func SeparatorParser(sep string) KeyValueParser[string, string] {
	return func(input string) (string, string, error) {
		key, value, found := strings.Cut(input, sep)
		if !found || key == "" {
			return "", "", fmt.Errorf("%q should look like key%svalue", input, sep)
		}
		return key, value, nil
	}
}

// AttributeParser reads key=value where value is JSON when it parses as
// JSON, e.g. age=36 or tags=["a","b"], and a plain string otherwise.
func AttributeParser(input string) (string, interface{}, error) {
	key, raw, err := SeparatorParser("=")(input)
	if err != nil {
		return "", nil, err
	}
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return key, raw, nil
	}
	return key, value, nil
}

// AttributesFlag collects repeated --set key=value flags.
func AttributesFlag(value *map[string]interface{}) *MapValueFlag[string, interface{}] {
	return &MapValueFlag[string, interface{}]{
		value:  value,
		parser: AttributeParser,
		stringer: func(k *string, v *interface{}) string {
			return fmt.Sprintf("%s=%v", *k, *v)
		},
		typeStr: "key=value",
	}
}

func LoggingFlag(value *logger.LogMode) *ValueFlag[logger.LogMode] {
	return &ValueFlag[logger.LogMode]{
		value:    value,
		parser:   logger.ParseLogMode,
		stringer: func(p *logger.LogMode) string { return string(*p) },
		typeStr:  "logging-mode",
	}
}

func StoreTypeFlag(value *types.StoreType) *ValueFlag[types.StoreType] {
	return &ValueFlag[types.StoreType]{
		value:    value,
		parser:   types.ParseStoreType,
		stringer: func(p *types.StoreType) string { return string(*p) },
		typeStr:  "store-type",
	}
}

func BusTypeFlag(value *types.BusType) *ValueFlag[types.BusType] {
	return &ValueFlag[types.BusType]{
		value:    value,
		parser:   types.ParseBusType,
		stringer: func(p *types.BusType) string { return string(*p) },
		typeStr:  "bus-type",
	}
}

func OutputFormatFlag(value *output.OutputFormat) *ValueFlag[output.OutputFormat] {
	return &ValueFlag[output.OutputFormat]{
		value: value,
		parser: func(s string) (output.OutputFormat, error) {
			o := output.OutputFormat(s)
			if !slices.Contains(output.AllFormats, o) {
				return "", fmt.Errorf("should be one of %q", output.AllFormats)
			}
			return o, nil
		},
		stringer: func(o *output.OutputFormat) string { return string(*o) },
		typeStr:  "format",
	}
}

// ParseSortBy reads a column name, optionally prefixed with - for descending
// order, e.g. UUID or -UUID.
func ParseSortBy(s string) ([]table.SortBy, error) {
	if s == "" {
		return nil, nil
	}
	var res []table.SortBy
	for _, column := range strings.Split(s, ",") {
		column = strings.TrimSpace(column)
		mode := table.Asc
		if strings.HasPrefix(column, "-") {
			mode = table.Dsc
			column = column[1:]
		}
		if column == "" {
			return nil, fmt.Errorf("%q should be a comma separated list of column names", s)
		}
		res = append(res, table.SortBy{Name: column, Mode: mode})
	}
	return res, nil
}

func SortByFlag(value *[]table.SortBy) *ValueFlag[[]table.SortBy] {
	return &ValueFlag[[]table.SortBy]{
		value:  value,
		parser: ParseSortBy,
		stringer: func(p *[]table.SortBy) string {
			columns := make([]string, 0, len(*p))
			for _, sortBy := range *p {
				if sortBy.Mode == table.Dsc {
					columns = append(columns, "-"+sortBy.Name)
				} else {
					columns = append(columns, sortBy.Name)
				}
			}
			return strings.Join(columns, ",")
		},
		typeStr: "columns",
	}
}
