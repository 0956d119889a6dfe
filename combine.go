package dripper

import (
	"fmt"
	"reflect"
	"strings"
)

// MergeFunc folds two extracted values into one.
type MergeFunc func(acc, next any) (any, error)

// Combined runs several extractors on the same input and folds their results
// left to right through a merge operator.
type Combined struct {
	members []Extractor
	merge   MergeFunc
}

// Combine creates a combining extractor over at least two members.
// A nil merge uses Add.
func Combine(merge MergeFunc, first, second Extractor, rest ...Extractor) *Combined {
	if merge == nil {
		merge = Add
	}
	members := make([]Extractor, 0, 2+len(rest))
	members = append(members, first, second)
	members = append(members, rest...)
	return &Combined{members: members, merge: merge}
}

// Len returns the number of member extractors.
func (c *Combined) Len() int { return len(c.members) }

// Extract evaluates every member and folds the results. Member and merge
// errors propagate unchanged.
func (c *Combined) Extract(doc any) (any, error) {
	acc, err := c.members[0].Extract(doc)
	if err != nil {
		return nil, err
	}
	for _, m := range c.members[1:] {
		next, err := m.Extract(doc)
		if err != nil {
			return nil, err
		}
		acc, err = c.merge(acc, next)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Add is the default merge: numeric addition, string concatenation and
// slice concatenation. Mixed or unsupported operands fail with ErrMerge.
func Add(acc, next any) (any, error) {
	if IsAbsent(acc) || IsAbsent(next) {
		return nil, fmt.Errorf("%w: cannot add absent value", ErrMerge)
	}

	switch a := acc.(type) {
	case string:
		if b, ok := next.(string); ok {
			return a + b, nil
		}
	case []any:
		if b, ok := next.([]any); ok {
			out := make([]any, 0, len(a)+len(b))
			out = append(out, a...)
			return append(out, b...), nil
		}
	}

	if sum, ok := addNumbers(acc, next); ok {
		return sum, nil
	}

	av, bv := reflect.ValueOf(acc), reflect.ValueOf(next)
	if av.IsValid() && bv.IsValid() && av.Type() == bv.Type() {
		switch av.Kind() {
		case reflect.String:
			return reflect.ValueOf(av.String() + bv.String()).Convert(av.Type()).Interface(), nil
		case reflect.Slice:
			out := reflect.MakeSlice(av.Type(), 0, av.Len()+bv.Len())
			out = reflect.AppendSlice(out, av)
			return reflect.AppendSlice(out, bv).Interface(), nil
		}
	}

	return nil, fmt.Errorf("%w: cannot add %T and %T", ErrMerge, acc, next)
}

// addNumbers sums two numeric values. Integers stay integers; any float
// operand makes the result float64.
func addNumbers(a, b any) (any, bool) {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if !isNumber(av) || !isNumber(bv) {
		return nil, false
	}

	if isFloat(av) || isFloat(bv) {
		return toFloat(av) + toFloat(bv), true
	}

	sum := toInt(av) + toInt(bv)
	if av.Kind() == reflect.Int && bv.Kind() == reflect.Int {
		return int(sum), true
	}
	return sum, true
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v):
		return v.Float()
	case v.CanInt():
		return float64(v.Int())
	default:
		return float64(v.Uint())
	}
}

func toInt(v reflect.Value) int64 {
	if v.CanInt() {
		return v.Int()
	}
	return int64(v.Uint())
}

// Coalesce keeps the first present, non-nil value.
func Coalesce(acc, next any) (any, error) {
	if acc == nil || IsAbsent(acc) {
		return next, nil
	}
	return acc, nil
}

// Join returns a merge that joins the string forms of present values with sep.
func Join(sep string) MergeFunc {
	return func(acc, next any) (any, error) {
		switch {
		case IsAbsent(next) || next == nil:
			return acc, nil
		case IsAbsent(acc) || acc == nil:
			return fmt.Sprint(next), nil
		}
		return strings.Join([]string{fmt.Sprint(acc), fmt.Sprint(next)}, sep), nil
	}
}
