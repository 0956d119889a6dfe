package dripper

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Step is a single move into a nested document: a key for mapping-like nodes
// or an index for sequence-like nodes.
type Step struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a step that looks up a mapping key or struct field name.
func Key(k string) Step {
	return Step{key: k}
}

// Index returns a step that looks up a position. Negative indices count from the end.
func Index(i int) Step {
	return Step{index: i, isIndex: true}
}

// IsIndex reports whether the step is positional.
func (s Step) IsIndex() bool { return s.isIndex }

// Key returns the key of a key step.
func (s Step) Key() string { return s.key }

// Index returns the position of an index step.
func (s Step) Index() int { return s.index }

func (s Step) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return strconv.Quote(s.key)
}

// Path is an immutable sequence of steps. The zero Path is empty and
// resolves to the document itself.
type Path struct {
	steps []Step
}

// NewPath builds a Path from keys and indices. Accepted step values are
// strings, integers of any width, integral floats (as produced by JSON
// decoding) and Step values.
func NewPath(steps ...any) (Path, error) {
	out := make([]Step, 0, len(steps))
	for i, raw := range steps {
		step, err := toStep(raw)
		if err != nil {
			return Path{}, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, step)
	}
	return Path{steps: out}, nil
}

// MustPath is NewPath for statically known steps. It panics on invalid input.
func MustPath(steps ...any) Path {
	p, err := NewPath(steps...)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePath parses the dotted text form of a path.
// Supports: "title", "published.date[0]", "[1].name", "items[-1]".
// The empty string is the empty path.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}

	var steps []Step
	for _, part := range strings.Split(s, ".") {
		name, rest, bracket := strings.Cut(part, "[")
		if name == "" && rest == "" {
			return Path{}, fmt.Errorf("invalid path %q: empty segment", s)
		}
		if bracket && rest == "" {
			return Path{}, fmt.Errorf("invalid path %q: unterminated index", s)
		}
		if name != "" {
			steps = append(steps, Key(name))
		}
		if rest == "" {
			continue
		}

		// rest holds "0]" or "0][1]"
		for _, idx := range strings.Split("["+rest, "[")[1:] {
			num, ok := strings.CutSuffix(idx, "]")
			if !ok {
				return Path{}, fmt.Errorf("invalid path %q: unterminated index", s)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return Path{}, fmt.Errorf("invalid path %q: bad index %q", s, num)
			}
			steps = append(steps, Index(n))
		}
	}

	return Path{steps: steps}, nil
}

// Len returns the number of steps.
func (p Path) Len() int { return len(p.steps) }

// IsEmpty reports whether the path has no steps.
func (p Path) IsEmpty() bool { return len(p.steps) == 0 }

// Steps returns a copy of the steps.
func (p Path) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Append returns a new path with the given steps added.
func (p Path) Append(steps ...Step) Path {
	out := make([]Step, 0, len(p.steps)+len(steps))
	out = append(out, p.steps...)
	out = append(out, steps...)
	return Path{steps: out}
}

// String renders the path in the ParsePath form.
func (p Path) String() string {
	if len(p.steps) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for i, s := range p.steps {
		if s.isIndex {
			b.WriteString("[" + strconv.Itoa(s.index) + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.key)
	}
	return b.String()
}

// toStep coerces a literal key or index into a Step.
func toStep(raw any) (Step, error) {
	switch v := raw.(type) {
	case Step:
		return v, nil
	case string:
		return Key(v), nil
	case int:
		return Index(v), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Index(int(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt32 {
			return Step{}, fmt.Errorf("index %d out of range", rv.Uint())
		}
		return Index(int(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return Step{}, fmt.Errorf("index %v is not an integer", f)
		}
		return Index(int(f)), nil
	case reflect.String:
		return Key(rv.String()), nil
	}

	return Step{}, fmt.Errorf("unsupported step type %T", raw)
}

// Descend follows path into doc and returns a deep copy of the value found.
// Any unresolvable step fails the whole descent with a *DescentError.
func Descend(doc any, path Path) (any, error) {
	current := doc
	for i, step := range path.steps {
		next, reason := stepInto(current, step)
		if reason != "" {
			return nil, &DescentError{Path: path, Depth: i, Reason: reason}
		}
		current = next
	}
	return cloneValue(current), nil
}

// stepInto resolves one step. A non-empty reason reports failure.
func stepInto(node any, step Step) (any, string) {
	switch n := node.(type) {
	case map[string]any:
		if step.isIndex {
			return nil, reasonMissingKey
		}
		v, ok := n[step.key]
		if !ok {
			return nil, reasonMissingKey
		}
		return v, ""
	case []any:
		if !step.isIndex {
			return nil, reasonNotIndexable
		}
		i, ok := normalizeIndex(step.index, len(n))
		if !ok {
			return nil, reasonOutOfRange
		}
		return n[i], ""
	case Keyed:
		if step.isIndex {
			if idx, ok := node.(Indexed); ok {
				return indexedAt(idx, step.index)
			}
			return nil, reasonMissingKey
		}
		v, ok := n.Lookup(step.key)
		if !ok {
			return nil, reasonMissingKey
		}
		return v, ""
	case Indexed:
		if !step.isIndex {
			return nil, reasonNotIndexable
		}
		return indexedAt(n, step.index)
	case string, nil:
		return nil, reasonNotIndexable
	}

	return stepReflect(reflect.ValueOf(node), step)
}

func indexedAt(n Indexed, index int) (any, string) {
	i, ok := normalizeIndex(index, n.Len())
	if !ok {
		return nil, reasonOutOfRange
	}
	return n.At(i), ""
}

// stepReflect resolves a step against named maps, typed slices, arrays and structs.
func stepReflect(rv reflect.Value, step Step) (any, string) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, reasonNotIndexable
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		key, ok := mapKey(rv.Type().Key(), step)
		if !ok {
			return nil, reasonMissingKey
		}
		v := rv.MapIndex(key)
		if !v.IsValid() {
			return nil, reasonMissingKey
		}
		return v.Interface(), ""

	case reflect.Slice, reflect.Array:
		if !step.isIndex {
			return nil, reasonNotIndexable
		}
		i, ok := normalizeIndex(step.index, rv.Len())
		if !ok {
			return nil, reasonOutOfRange
		}
		return rv.Index(i).Interface(), ""

	case reflect.Struct:
		if step.isIndex {
			i, ok := normalizeIndex(step.index, rv.NumField())
			if !ok {
				return nil, reasonOutOfRange
			}
			if !rv.Type().Field(i).IsExported() {
				return nil, reasonUnexportedPos
			}
			return rv.Field(i).Interface(), ""
		}
		sf, ok := rv.Type().FieldByName(step.key)
		if !ok || !sf.IsExported() {
			return nil, reasonMissingKey
		}
		return rv.FieldByIndex(sf.Index).Interface(), ""
	}

	return nil, reasonNotIndexable
}

// mapKey converts a step into a key of the map's key type.
func mapKey(kt reflect.Type, step Step) (reflect.Value, bool) {
	switch kt.Kind() {
	case reflect.String:
		if step.isIndex {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(step.key).Convert(kt), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !step.isIndex {
			return reflect.Value{}, false
		}
		if reflect.Zero(kt).OverflowInt(int64(step.index)) {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(int64(step.index)).Convert(kt), true
	case reflect.Interface:
		if kt.NumMethod() != 0 {
			return reflect.Value{}, false
		}
		if step.isIndex {
			return reflect.ValueOf(step.index), true
		}
		return reflect.ValueOf(step.key), true
	}
	return reflect.Value{}, false
}

func normalizeIndex(i, n int) (int, bool) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
