package dripper_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/zoobzio/dripper"
)

func mustExtract(t *testing.T, decl, doc any) any {
	t.Helper()
	ex, err := dripper.Compile(decl)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	out, err := ex.Extract(doc)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	return out
}

func TestCompile_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		decl any
		doc  any
		want any
	}{
		{
			name: "flat fields",
			decl: map[string]any{
				"title":     []any{"title"},
				"published": []any{"published", "date", 0},
			},
			doc: map[string]any{
				"title":     "Title",
				"published": map[string]any{"date": []any{"2014-11-05"}},
			},
			want: map[string]any{"title": "Title", "published": "2014-11-05"},
		},
		{
			name: "missing field omitted",
			decl: map[string]any{"x": []any{"missing"}},
			doc:  map[string]any{},
			want: map[string]any{},
		},
		{
			name: "sequence shape",
			decl: map[string]any{
				"__source_root__": []any{"meta"},
				"__type__":        "sequence",
				"a":               []any{"a"},
			},
			doc: map[string]any{"meta": []any{
				map[string]any{"a": 1},
				map[string]any{"a": 2},
			}},
			want: []any{map[string]any{"a": 1}, map[string]any{"a": 2}},
		},
		{
			name: "bad path omitted",
			decl: map[string]any{"asset": []any{"meta", "bad", "path"}},
			doc:  map[string]any{"meta": map[string]any{}},
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustExtract(t, tt.decl, tt.doc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCompile_ArticleFeed(t *testing.T) {
	source := map[string]any{
		"body": map[string]any{
			"articles": []any{
				map[string]any{
					"title":     "Title",
					"published": map[string]any{"date": []any{"2014-11-05"}},
				},
			},
		},
		"meta": map[string]any{
			"meta1": map[string]any{
				"meta3": []any{map[string]any{"author": "Author name"}},
			},
			"meta4": map[string]any{"assetType": 1},
		},
	}
	decl := map[string]any{
		"articles": map[string]any{
			"__type__":        "list",
			"__source_root__": []any{"body", "articles"},
			"title":           []any{"title"},
			"title_lower": func(d any) (any, error) {
				return strings.ToLower(d.(map[string]any)["title"].(string)), nil
			},
			"published": []any{"published", "date", 0},
		},
		"meta": map[string]any{
			"__source_root__": []any{"meta", "meta1", "meta3", 0},
			"author":          []any{"author"},
		},
		"asset_type": []any{"meta", "meta4", "assetType"},
	}

	want := map[string]any{
		"articles": []any{
			map[string]any{
				"title":       "Title",
				"title_lower": "title",
				"published":   "2014-11-05",
			},
		},
		"meta":       map[string]any{"author": "Author name"},
		"asset_type": 1,
	}

	if got := mustExtract(t, decl, source); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestCompile_PathLiterals(t *testing.T) {
	doc := map[string]any{"a": []any{"x", "y"}}

	tests := []struct {
		name string
		decl any
		want any
	}{
		{"lone key", "a", []any{"x", "y"}},
		{"string list", []string{"a"}, []any{"x", "y"}},
		{"mixed list", []any{"a", 1}, "y"},
		{"float index", []any{"a", float64(0)}, "x"},
		{"path value", dripper.MustPath("a", -1), "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustExtract(t, tt.decl, doc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if got := mustExtract(t, 1, []any{"a", "b"}); got != "b" {
		t.Errorf("lone index Extract() = %v, want b", got)
	}
}

func TestCompile_CustomPassthrough(t *testing.T) {
	fn := dripper.ExtractorFunc(func(doc any) (any, error) { return "custom", nil })

	ex, err := dripper.Compile(fn)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	got, _ := ex.Extract(nil)
	if got != "custom" {
		t.Errorf("Extract() = %v, want custom", got)
	}

	plain := func(doc any) any { return doc }
	ex, err = dripper.Compile(plain)
	if err != nil {
		t.Fatalf("Compile(func(any) any) error: %v", err)
	}
	if got, _ := ex.Extract(7); got != 7 {
		t.Errorf("Extract() = %v, want 7", got)
	}
}

func TestCompile_CustomErrorPropagates(t *testing.T) {
	decl := map[string]any{
		"upper": func(d any) (any, error) {
			s, ok := d.(map[string]any)["n"].(string)
			if !ok {
				return nil, errors.New("n is not a string")
			}
			return strings.ToUpper(s), nil
		},
		"n": []any{"n"},
	}

	ex := dripper.MustCompile(decl)
	_, err := ex.Extract(map[string]any{"n": 5})
	if err == nil {
		t.Fatal("Extract() should propagate non-descent errors from custom functions")
	}
	if !strings.Contains(err.Error(), "field upper") {
		t.Errorf("Error() = %q, want field context", err.Error())
	}
}

func TestCompile_CustomDescentFailureOmitsField(t *testing.T) {
	decl := map[string]any{
		"deep": func(d any) (any, error) {
			return dripper.Descend(d, dripper.MustPath("x", "y"))
		},
		"n": []any{"n"},
	}

	got := mustExtract(t, decl, map[string]any{"n": 5})
	if !reflect.DeepEqual(got, map[string]any{"n": 5}) {
		t.Errorf("Extract() = %#v, want only n", got)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	decl := map[string]any{
		"name": []any{"user", "name"},
		"tags": map[string]any{
			"__type__":        "sequence",
			"__source_root__": []any{"user", "tags"},
			"label":           []any{"label"},
		},
	}
	docs := []any{
		map[string]any{},
		map[string]any{"user": map[string]any{"name": "Ada"}},
		map[string]any{"user": map[string]any{"tags": []any{map[string]any{"label": "x"}}}},
	}

	first := dripper.MustCompile(decl)
	second := dripper.MustCompile(decl)
	for i, doc := range docs {
		a, errA := first.Extract(doc)
		b, errB := second.Extract(doc)
		if errA != nil || errB != nil {
			t.Fatalf("doc %d: Extract() errors: %v, %v", i, errA, errB)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("doc %d: compiled twice, got %#v and %#v", i, a, b)
		}
	}
}

func TestCompile_DoesNotMutateDocument(t *testing.T) {
	doc := map[string]any{
		"items": []any{map[string]any{"k": "v"}},
	}
	decl := map[string]any{
		"items": map[string]any{
			"__type__":        "sequence",
			"__source_root__": []any{"items"},
			"all": func(d any) (any, error) {
				d.(map[string]any)["k"] = "mutated"
				return d, nil
			},
		},
	}

	mustExtract(t, decl, doc)
	if doc["items"].([]any)[0].(map[string]any)["k"] != "v" {
		t.Error("custom function mutation leaked into the source document")
	}
}

func TestCompile_DataForm(t *testing.T) {
	doc := map[string]any{
		"user":  map[string]any{"first": "ada", "last": "lovelace", "email": "ada@example.com", "age": "36"},
		"score": 4.0,
	}
	decl := map[string]any{
		"name": map[string]any{
			"__combine__": []any{[]any{"user", "first"}, []any{"user", "last"}},
			"__merge__":   "join",
		},
		"email": map[string]any{"__path__": []any{"user", "email"}, "__convert__": "mask:email"},
		"age":   map[string]any{"__path__": []any{"user", "age"}, "__convert__": "int"},
		"nick":  map[string]any{"__path__": []any{"user", "nick"}, "__default__": "none"},
		"loud":  map[string]any{"__path__": []any{"user", "first"}, "__convert__": []any{"trim", "upper"}},
		"total": map[string]any{"__combine__": []any{[]any{"score"}, []any{"score"}}},
	}

	want := map[string]any{
		"name":  "ada lovelace",
		"email": "a***@example.com",
		"age":   36,
		"nick":  "none",
		"loud":  "ADA",
		"total": 8.0,
	}
	if got := mustExtract(t, decl, doc); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}
}

func TestCompile_TypedDeclarations(t *testing.T) {
	decl := dripper.Shape{
		Root: dripper.MustPath("user"),
		Fields: map[string]any{
			"email": dripper.Value{Path: "email", Convert: []string{"hash:sha256"}},
			"full": dripper.Combination{
				Members: []any{"first", "last"},
				Merge:   dripper.MergeCoalesce,
			},
		},
	}

	got := mustExtract(t, decl, map[string]any{
		"user": map[string]any{"email": "abc", "last": "Lovelace"},
	}).(map[string]any)

	if got["full"] != "Lovelace" {
		t.Errorf("full = %v, want Lovelace", got["full"])
	}
	if got["email"] != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("email = %v, want sha256 of abc", got["email"])
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		decl any
		want error
	}{
		{"nil", nil, dripper.ErrInvalidDeclaration},
		{"bool", true, dripper.ErrInvalidDeclaration},
		{"list with bool", []any{"a", true}, dripper.ErrInvalidDeclaration},
		{"bad kind", map[string]any{"__type__": "tree"}, dripper.ErrInvalidDeclaration},
		{"kind not string", map[string]any{"__type__": 1}, dripper.ErrInvalidDeclaration},
		{"bad root", map[string]any{"__source_root__": []any{"a", 1.5}}, dripper.ErrInvalidDeclaration},
		{"unknown control key", map[string]any{"__sorce_root__": []any{"a"}}, dripper.ErrInvalidDeclaration},
		{"nested invalid field", map[string]any{"a": map[string]any{"b": struct{}{}}}, dripper.ErrInvalidDeclaration},
		{"unknown converter", map[string]any{"__path__": "a", "__convert__": "rot13"}, dripper.ErrUnknownConverter},
		{"value without path", dripper.Value{}, dripper.ErrInvalidDeclaration},
		{"value extra key", map[string]any{"__path__": "a", "x": 1}, dripper.ErrInvalidDeclaration},
		{"short combination", map[string]any{"__combine__": []any{"a"}}, dripper.ErrInvalidDeclaration},
		{"unknown merger", map[string]any{"__combine__": []any{"a", "b"}, "__merge__": "xor"}, dripper.ErrUnknownMerger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dripper.Compile(tt.decl)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compile() error = %v, want %v", err, tt.want)
			}
			var de *dripper.DeclarationError
			if !errors.As(err, &de) {
				t.Errorf("Compile() error should be *DeclarationError, got %T", err)
			}
		})
	}
}

func TestCompile_ErrorLocation(t *testing.T) {
	decl := map[string]any{
		"outer": map[string]any{
			"inner": map[string]any{"__path__": "x", "__convert__": "nope"},
		},
	}

	_, err := dripper.Compile(decl)
	var de *dripper.DeclarationError
	if !errors.As(err, &de) {
		t.Fatalf("Compile() error = %v, want *DeclarationError", err)
	}
	if de.Field != "outer.inner" {
		t.Errorf("Field = %q, want outer.inner", de.Field)
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile() should panic on invalid declaration")
		}
	}()
	dripper.MustCompile(true)
}

func TestCompiler_Registries(t *testing.T) {
	c := dripper.NewCompiler().
		SetConverter("double", func(v any) (any, error) {
			n, ok := v.(int)
			if !ok {
				return nil, dripper.ErrConvert
			}
			return n * 2, nil
		}).
		SetMerger("max", func(a, b any) (any, error) {
			if a.(int) >= b.(int) {
				return a, nil
			}
			return b, nil
		})

	ex, err := c.Compile(map[string]any{
		"doubled": map[string]any{"__path__": "n", "__convert__": "double"},
		"max":     map[string]any{"__combine__": []any{"n", "m"}, "__merge__": "max"},
	})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	got, err := ex.Extract(map[string]any{"n": 3, "m": 9})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	want := map[string]any{"doubled": 6, "max": 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %#v, want %#v", got, want)
	}

	if _, err := dripper.Compile(map[string]any{"__path__": "n", "__convert__": "double"}); !errors.Is(err, dripper.ErrUnknownConverter) {
		t.Errorf("default compiler should not see converters registered elsewhere, got %v", err)
	}
	if _, ok := c.Converter("double"); !ok {
		t.Error("Converter(double) not found")
	}
}

func TestCompile_ConverterErrorPropagates(t *testing.T) {
	ex := dripper.MustCompile(map[string]any{
		"age": map[string]any{"__path__": "age", "__convert__": "int"},
	})

	_, err := ex.Extract(map[string]any{"age": "old"})
	if !errors.Is(err, dripper.ErrConvert) {
		t.Errorf("Extract() error = %v, want ErrConvert", err)
	}
}
