package dripper

import (
	"errors"
	"reflect"
	"testing"
)

func TestObject_Extract(t *testing.T) {
	doc := map[string]any{
		"meta": map[string]any{"author": "Ada", "year": 1843},
	}
	o := NewObject(MustPath("meta"), map[string]Extractor{
		"author":  NewScalar(MustPath("author")),
		"year":    NewScalar(MustPath("year")),
		"missing": NewScalar(MustPath("nope")),
	})

	got, err := o.Extract(doc)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := map[string]any{"author": "Ada", "year": 1843}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestObject_MissingRoot(t *testing.T) {
	o := NewObject(MustPath("nope"), map[string]Extractor{
		"a": NewScalar(MustPath("a"), WithDefault(1)),
	})

	got, err := o.Extract(map[string]any{})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{}) {
		t.Errorf("Extract() = %#v, want empty record", got)
	}
}

func TestObject_Fields(t *testing.T) {
	o := NewObject(Path{}, map[string]Extractor{
		"b": NewScalar(MustPath("b")),
		"a": NewScalar(MustPath("a")),
	})
	if got := o.Fields(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Fields() = %v, want [a b]", got)
	}
}

func TestObject_ChildDescentErrorOmitsField(t *testing.T) {
	o := NewObject(Path{}, map[string]Extractor{
		"raw": ExtractorFunc(func(doc any) (any, error) {
			return Descend(doc, MustPath("deep", "missing"))
		}),
		"ok": NewScalar(MustPath("ok")),
	})

	got, err := o.Extract(map[string]any{"ok": true})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"ok": true}) {
		t.Errorf("Extract() = %#v, want only ok", got)
	}
}

func TestObject_ChildErrorPropagates(t *testing.T) {
	boom := errors.New("bad type")
	o := NewObject(Path{}, map[string]Extractor{
		"broken": ExtractorFunc(func(any) (any, error) { return nil, boom }),
	})

	_, err := o.Extract(map[string]any{})
	if !errors.Is(err, boom) {
		t.Fatalf("Extract() error = %v, want %v", err, boom)
	}
	if err.Error() != "field broken: bad type" {
		t.Errorf("Error() = %q, want %q", err.Error(), "field broken: bad type")
	}
}

func TestSequence_Extract(t *testing.T) {
	doc := map[string]any{
		"meta": []any{
			map[string]any{"a": 1},
			map[string]any{"a": 2},
			map[string]any{"b": 3},
		},
	}
	s := NewSequence(MustPath("meta"), map[string]Extractor{
		"a": NewScalar(MustPath("a")),
	})

	got, err := s.Extract(doc)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := []any{
		map[string]any{"a": 1},
		map[string]any{"a": 2},
		map[string]any{},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestSequence_Empty(t *testing.T) {
	s := NewSequence(MustPath("items"), map[string]Extractor{
		"a": NewScalar(MustPath("a")),
	})

	tests := []struct {
		name string
		doc  any
	}{
		{"missing root", map[string]any{}},
		{"scalar root", map[string]any{"items": 5}},
		{"string root", map[string]any{"items": "abc"}},
		{"mapping root", map[string]any{"items": map[string]any{"a": 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Extract(tt.doc)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if !reflect.DeepEqual(got, []any{}) {
				t.Errorf("Extract() = %#v, want []any{}", got)
			}
		})
	}
}

func TestSequence_TypedSlice(t *testing.T) {
	type item struct{ SKU string }
	doc := map[string]any{"items": []item{{"a1"}, {"b2"}}}

	s := NewSequence(MustPath("items"), map[string]Extractor{
		"sku": NewScalar(MustPath("SKU")),
	})

	got, err := s.Extract(doc)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := []any{map[string]any{"sku": "a1"}, map[string]any{"sku": "b2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestSequence_ElementErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	s := NewSequence(Path{}, map[string]Extractor{
		"x": ExtractorFunc(func(any) (any, error) { return nil, boom }),
	})

	_, err := s.Extract([]any{map[string]any{}})
	if !errors.Is(err, boom) {
		t.Fatalf("Extract() error = %v, want %v", err, boom)
	}
	if err.Error() != "element 0: field x: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
