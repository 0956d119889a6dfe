// Package dripper reshapes loosely structured, deeply nested documents into a
// fixed output shape described by a declaration.
//
// A declaration is authored once, compiled once into an Extractor, and then
// applied to as many documents as needed. Compilation never touches data;
// only running the compiled Extractor does.
//
// # Declarations
//
// A declaration is one of:
//
//   - a path literal: a key, an index, or a flat list of them
//     ("title", 0, []any{"published", "date", 0}, MustPath(...))
//   - a custom function: an Extractor or func(any) (any, error), passed through
//   - a shape: a Shape value or a map[string]any whose fields are declarations
//
// Shapes written as maps carry two reserved control keys:
//
//	__source_root__  path to descend before evaluating fields (default: none)
//	__type__         "object" or "sequence" (default: "object")
//
// # Basic Usage
//
//	decl := map[string]any{
//	    "articles": map[string]any{
//	        "__type__":        "sequence",
//	        "__source_root__": []any{"body", "articles"},
//	        "title":           []any{"title"},
//	        "published":       []any{"published", "date", 0},
//	    },
//	    "author": []any{"meta", "author", "name"},
//	}
//
//	ex, err := dripper.Compile(decl)
//	out, err := ex.Extract(doc)
//
// # Leniency
//
// Missing data is not an error:
//
//   - a scalar whose path does not resolve yields its default, or Absent
//   - an object whose root does not resolve yields an empty record
//   - an object omits fields that yield Absent or fail descent
//   - a sequence whose root does not resolve yields an empty sequence
//
// Errors from converters, merge operators and custom functions propagate.
//
// # Data-form Declarations
//
// Declarations loaded from JSON or YAML cannot hold functions, so scalar
// options and combinations also have reserved-key forms:
//
//	{"__path__": ["email"], "__convert__": "mask:email", "__default__": ""}
//	{"__combine__": [["first"], ["last"]], "__merge__": "join"}
//
// # Struct Bindings
//
// Output shapes can be declared with struct tags:
//
//	type Article struct {
//	    Title     string `json:"title" drip:"title" drip.convert:"trim"`
//	    Published string `json:"published" drip:"published.date[0]"`
//	}
//
//	b, _ := dripper.Use[Article]()
//	article, _ := b.Decode(doc)
//
// # Codec Providers
//
// The following codec implementations are available as subpackages and plug
// into Processor and Catalog:
//
//   - json - JSON encoding (application/json)
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
package dripper

// Extractor derives a value from a source document.
//
// Implementations must not mutate doc and must return the same output for the
// same input. Extractors produced by Compile are immutable and safe for
// concurrent use.
type Extractor interface {
	Extract(doc any) (any, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(doc any) (any, error)

// Extract calls f(doc).
func (f ExtractorFunc) Extract(doc any) (any, error) {
	return f(doc)
}

// absentValue marks an extraction that found nothing.
type absentValue struct{}

func (absentValue) String() string { return "<absent>" }

// Absent is returned by scalar extractors whose path does not resolve and
// that have no default. Object shapes omit fields holding it.
var Absent any = absentValue{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absentValue)
	return ok
}
