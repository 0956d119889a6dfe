package dripper

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Chain composes converters left to right. The first error stops the chain.
func Chain(fns ...ConvertFunc) ConvertFunc {
	if len(fns) == 1 {
		return fns[0]
	}
	return func(value any) (any, error) {
		var err error
		for _, fn := range fns {
			value, err = fn(value)
			if err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

// StringConverter lifts a string function into a ConvertFunc.
// Non-string input fails with ErrConvert.
func StringConverter(name string, fn func(string) string) ConvertFunc {
	return func(value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrConvert, name, value)
		}
		return fn(s), nil
	}
}

func toString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case []byte:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return fmt.Sprint(value), nil
}

func toInteger(value any) (any, error) {
	if s, ok := value.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: int: %v", ErrConvert, err)
		}
		return int(n), nil
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		return int(rv.Int()), nil
	case rv.CanUint():
		return int(rv.Uint()), nil
	case rv.CanFloat():
		f := rv.Float()
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: int: %v has a fractional part", ErrConvert, f)
		}
		return int(f), nil
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	return nil, fmt.Errorf("%w: int: unsupported type %T", ErrConvert, value)
}

func toFloatValue(value any) (any, error) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: float: %v", ErrConvert, err)
		}
		return f, nil
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("%w: float: unsupported type %T", ErrConvert, value)
}

func toBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: bool: %v", ErrConvert, err)
		}
		return b, nil
	}

	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		return rv.Int() != 0, nil
	case rv.CanUint():
		return rv.Uint() != 0, nil
	case rv.CanFloat():
		return rv.Float() != 0, nil
	}
	return nil, fmt.Errorf("%w: bool: unsupported type %T", ErrConvert, value)
}

// builtinConverters returns the default converter registry.
func builtinConverters() map[string]ConvertFunc {
	converters := map[string]ConvertFunc{
		ConvertLower:  StringConverter(ConvertLower, strings.ToLower),
		ConvertUpper:  StringConverter(ConvertUpper, strings.ToUpper),
		ConvertTrim:   StringConverter(ConvertTrim, strings.TrimSpace),
		ConvertString: toString,
		ConvertInt:    toInteger,
		ConvertFloat:  toFloatValue,
		ConvertBool:   toBool,
	}
	for mt, m := range builtinMaskers() {
		converters[MaskConverter(mt)] = maskConverter(m)
	}
	for algo, h := range builtinHashers() {
		converters[HashConverter(algo)] = hashConverter(h)
	}
	return converters
}
