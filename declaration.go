package dripper

import (
	"fmt"
	"reflect"
	"strings"
)

// Reserved control keys recognized in map-form declarations.
// Keys wrapped in double underscores are never treated as output fields.
const (
	ReservedRoot    = "__source_root__"
	ReservedType    = "__type__"
	ReservedPath    = "__path__"
	ReservedDefault = "__default__"
	ReservedConvert = "__convert__"
	ReservedCombine = "__combine__"
	ReservedMerge   = "__merge__"
)

// Shape declares a nested record or sequence of records.
type Shape struct {
	// Root is descended before the fields are evaluated. Empty means no descent.
	Root Path

	// Kind selects object or sequence output. Empty means KindObject.
	Kind Kind

	// Fields maps output names to child declarations.
	Fields map[string]any
}

// Value declares a scalar with options in data form.
type Value struct {
	// Path is any path literal accepted by Compile.
	Path any

	// Default is returned when Path does not resolve, if HasDefault is set.
	Default    any
	HasDefault bool

	// Convert names registered converters, applied in order.
	Convert []string
}

// Combination declares a field synthesized from several declarations.
type Combination struct {
	// Members holds two or more declarations evaluated on the same input.
	Members []any

	// Merge names a registered merge operator. Empty means "add".
	Merge string
}

// ParseKind parses a shape kind. The aliases "dict" and "list" are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "object", "dict":
		return KindObject, nil
	case "sequence", "list":
		return KindSequence, nil
	}
	return "", fmt.Errorf("unknown shape kind %q", s)
}

// isReserved reports whether name uses the double-underscore control form.
func isReserved(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// declKind is the compile-time classification of a declaration.
type declKind int

const (
	declInvalid declKind = iota
	declCustom
	declScalar
	declValue
	declCombination
	declShape
)

func (k declKind) String() string {
	switch k {
	case declCustom:
		return "custom"
	case declScalar:
		return "scalar"
	case declValue:
		return "value"
	case declCombination:
		return "combination"
	case declShape:
		return "shape"
	}
	return "invalid"
}

// classify resolves which variant a declaration is. It runs once per
// declaration node at compile time.
func classify(decl any) declKind {
	switch d := decl.(type) {
	case nil:
		return declInvalid
	case Extractor, func(any) (any, error), func(any) any:
		return declCustom
	case Path, Step, string:
		return declScalar
	case Value, *Value:
		return declValue
	case Combination, *Combination:
		return declCombination
	case Shape, *Shape:
		return declShape
	case map[string]any:
		return classifyMap(d)
	}

	rv := reflect.ValueOf(decl)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return declScalar
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !isStepLiteral(rv.Index(i).Interface()) {
				return declInvalid
			}
		}
		return declScalar
	case reflect.Map:
		if m, ok := asMap(decl); ok {
			return classifyMap(m)
		}
	}
	return declInvalid
}

func classifyMap(m map[string]any) declKind {
	if _, ok := m[ReservedPath]; ok {
		return declValue
	}
	if _, ok := m[ReservedCombine]; ok {
		return declCombination
	}
	return declShape
}

func isStepLiteral(v any) bool {
	if _, ok := v.(Step); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// asMap views a string-keyed map of any named type as map[string]any.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return nil, false
		}
		out[k.String()] = iter.Value().Interface()
	}
	return out, true
}

// asList views any slice or array as []any.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// pathOf coerces a path literal into a Path.
func pathOf(decl any) (Path, error) {
	switch d := decl.(type) {
	case nil:
		return Path{}, nil
	case Path:
		return d, nil
	case Step:
		return Path{steps: []Step{d}}, nil
	case string:
		return Path{steps: []Step{Key(d)}}, nil
	}
	if list, ok := asList(decl); ok {
		return NewPath(list...)
	}
	return NewPath(decl)
}

// shapeFromMap splits a map declaration into control fields and output fields.
func shapeFromMap(m map[string]any, at string) (Shape, error) {
	s := Shape{Fields: make(map[string]any, len(m))}
	for name, child := range m {
		switch name {
		case ReservedRoot:
			root, err := pathOf(child)
			if err != nil {
				return Shape{}, newDeclarationError(ErrInvalidDeclaration, at, "%s: %v", ReservedRoot, err)
			}
			s.Root = root
		case ReservedType:
			str, ok := child.(string)
			if !ok {
				return Shape{}, newDeclarationError(ErrInvalidDeclaration, at, "%s must be a string, got %T", ReservedType, child)
			}
			kind, err := ParseKind(str)
			if err != nil {
				return Shape{}, newDeclarationError(ErrInvalidDeclaration, at, "%v", err)
			}
			s.Kind = kind
		default:
			if isReserved(name) {
				return Shape{}, newDeclarationError(ErrInvalidDeclaration, at, "unknown control key %q", name)
			}
			s.Fields[name] = child
		}
	}
	return s, nil
}

// valueFromMap reads the __path__ / __default__ / __convert__ form.
func valueFromMap(m map[string]any, at string) (Value, error) {
	v := Value{Path: m[ReservedPath]}
	for name, raw := range m {
		switch name {
		case ReservedPath:
		case ReservedDefault:
			v.Default = raw
			v.HasDefault = true
		case ReservedConvert:
			names, err := converterNames(raw)
			if err != nil {
				return Value{}, newDeclarationError(ErrInvalidDeclaration, at, "%s: %v", ReservedConvert, err)
			}
			v.Convert = names
		default:
			return Value{}, newDeclarationError(ErrInvalidDeclaration, at, "unexpected key %q in value declaration", name)
		}
	}
	return v, nil
}

// combinationFromMap reads the __combine__ / __merge__ form.
func combinationFromMap(m map[string]any, at string) (Combination, error) {
	var c Combination
	for name, raw := range m {
		switch name {
		case ReservedCombine:
			members, ok := asList(raw)
			if !ok {
				return Combination{}, newDeclarationError(ErrInvalidDeclaration, at, "%s must be a list, got %T", ReservedCombine, raw)
			}
			c.Members = members
		case ReservedMerge:
			str, ok := raw.(string)
			if !ok {
				return Combination{}, newDeclarationError(ErrInvalidDeclaration, at, "%s must be a string, got %T", ReservedMerge, raw)
			}
			c.Merge = str
		default:
			return Combination{}, newDeclarationError(ErrInvalidDeclaration, at, "unexpected key %q in combination", name)
		}
	}
	return c, nil
}

func converterNames(raw any) ([]string, error) {
	if s, ok := raw.(string); ok {
		return []string{s}, nil
	}
	list, ok := asList(raw)
	if !ok {
		return nil, fmt.Errorf("want a name or list of names, got %T", raw)
	}
	names := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("converter name must be a string, got %T", item)
		}
		names = append(names, s)
	}
	return names, nil
}

// fieldPath joins a parent location and a child name for error reporting.
func fieldPath(at, name string) string {
	if at == "" {
		return name
	}
	return at + "." + name
}
