package dripper

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Kind selects whether a shape produces a single record or a sequence of records.
type Kind string

const (
	// KindObject produces one record (map[string]any).
	KindObject Kind = "object"

	// KindSequence produces a record per element of an iterable root ([]any).
	KindSequence Kind = "sequence"
)

// field binds an output name to the extractor producing it.
type field struct {
	name      string
	extractor Extractor
}

// Object evaluates named child extractors against a sub-document.
type Object struct {
	root   Path
	fields []field
}

// NewObject creates an object-shape extractor. An empty root evaluates the
// fields against the input itself.
func NewObject(root Path, fields map[string]Extractor) *Object {
	return &Object{root: root, fields: sortedFields(fields)}
}

// Fields returns the declared output names in evaluation order.
func (o *Object) Fields() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.name
	}
	return names
}

// Extract returns a map[string]any holding every field that produced a value.
// A root that does not resolve yields an empty record.
func (o *Object) Extract(doc any) (any, error) {
	sub, err := Descend(doc, o.root)
	if err != nil {
		return map[string]any{}, nil
	}
	return o.fill(sub)
}

// fill evaluates the fields against an already descended sub-document.
func (o *Object) fill(sub any) (map[string]any, error) {
	out := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		v, err := f.extractor.Extract(sub)
		if err != nil {
			if errors.Is(err, ErrDescent) {
				continue
			}
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		if IsAbsent(v) {
			continue
		}
		out[f.name] = v
	}
	return out, nil
}

// Sequence applies an object shape to every element of an iterable root.
type Sequence struct {
	root    Path
	element *Object
}

// NewSequence creates a sequence-shape extractor. The root must resolve to a
// slice, array or Indexed value; each element is shaped with fields.
func NewSequence(root Path, fields map[string]Extractor) *Sequence {
	return &Sequence{
		root:    root,
		element: NewObject(Path{}, fields),
	}
}

// Fields returns the declared per-element output names.
func (s *Sequence) Fields() []string {
	return s.element.Fields()
}

// Extract returns a []any of records in input order. A root that does not
// resolve, or is not iterable, yields an empty sequence.
func (s *Sequence) Extract(doc any) (any, error) {
	sub, err := Descend(doc, s.root)
	if err != nil {
		return []any{}, nil
	}

	items, ok := elements(sub)
	if !ok {
		return []any{}, nil
	}

	out := make([]any, 0, len(items))
	for i, item := range items {
		rec, err := s.element.fill(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// elements lists the members of an iterable value.
func elements(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case Indexed:
		out := make([]any, t.Len())
		for i := range out {
			out[i] = t.At(i)
		}
		return out, true
	case nil, string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sortedFields(fields map[string]Extractor) []field {
	out := make([]field, 0, len(fields))
	for name, ex := range fields {
		out = append(out, field{name: name, extractor: ex})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
