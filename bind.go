package dripper

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
	"gopkg.in/yaml.v3"
)

// Struct tags read by bindings.
const (
	TagPath    = "drip"
	TagConvert = "drip.convert"
	TagDefault = "drip.default"
)

func init() {
	sentinel.Tag(TagPath)
	sentinel.Tag(TagConvert)
	sentinel.Tag(TagDefault)
}

// Binding derives a declaration from the struct tags of T and decodes
// extraction results into T.
//
// Scalar fields need a drip tag naming their source path. Nested struct
// fields become object shapes rooted at their drip path, or at the current
// node when untagged. Slices of structs become sequence shapes and need a
// drip tag. Output names follow the json tag so Decode can fill T.
type Binding[T any] struct {
	typeName  string
	shape     Shape
	extractor Extractor
}

// NewBinding builds a binding for T using compiler c. A nil c uses the
// default compiler.
func NewBinding[T any](c *Compiler) (*Binding[T], error) {
	if c == nil {
		c = defaultCompiler
	}

	rt := reflect.TypeFor[T]()
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: binding type %s is not a struct", ErrInvalidTag, rt)
	}

	meta := sentinel.Scan[T]()
	fields, err := bindFields(rt, meta, "", map[reflect.Type]bool{rt: true})
	if err != nil {
		return nil, err
	}

	shape := Shape{Kind: KindObject, Fields: fields}
	ex, err := c.Compile(shape)
	if err != nil {
		return nil, err
	}

	emitBindingRegistered(context.Background(), meta.TypeName, len(fields))
	return &Binding[T]{
		typeName:  meta.TypeName,
		shape:     shape,
		extractor: ex,
	}, nil
}

// TypeName returns the bound struct's type name.
func (b *Binding[T]) TypeName() string {
	return b.typeName
}

// Shape returns the declaration derived from T.
func (b *Binding[T]) Shape() Shape {
	return b.shape
}

// Extractor returns the compiled extractor.
func (b *Binding[T]) Extractor() Extractor {
	return b.extractor
}

// Extract runs the binding's extractor against doc.
func (b *Binding[T]) Extract(doc any) (any, error) {
	return b.extractor.Extract(doc)
}

// Decode extracts from doc and fills a new T with the result.
func (b *Binding[T]) Decode(doc any) (*T, error) {
	out, err := b.extractor.Extract(doc)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return &v, nil
}

// bindFields turns struct metadata into shape fields. expanding holds the
// struct types on the current nesting path; a repeat is a recursive type.
func bindFields(rt reflect.Type, meta sentinel.Metadata, prefix string, expanding map[reflect.Type]bool) (map[string]any, error) {
	fields := make(map[string]any, len(meta.Fields))

	for _, field := range meta.Fields {
		sf := rt.FieldByIndex(field.Index)
		name, ok := outputName(sf)
		if !ok {
			continue
		}
		loc := fieldPath(prefix, field.Name)
		rawPath, tagged := field.Tags[TagPath]
		if rawPath == "-" {
			continue
		}

		var root Path
		if tagged {
			p, err := ParsePath(rawPath)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidTag, loc, err)
			}
			root = p
		}

		if elem, isSeq := structElem(sf.Type); elem != nil {
			if isSeq && !tagged {
				continue
			}
			if expanding[elem] {
				return nil, fmt.Errorf("%w: field %s: recursive type %s", ErrInvalidTag, loc, elem)
			}
			expanding[elem] = true
			nested, err := bindFields(elem, scanNestedType(elem), loc, expanding)
			delete(expanding, elem)
			if err != nil {
				return nil, err
			}
			kind := KindObject
			if isSeq {
				kind = KindSequence
			}
			fields[name] = Shape{Root: root, Kind: kind, Fields: nested}
			continue
		}

		if !tagged {
			continue
		}
		v := Value{Path: root}
		if conv, ok := field.Tags[TagConvert]; ok && conv != "" {
			for _, n := range strings.Split(conv, ",") {
				v.Convert = append(v.Convert, strings.TrimSpace(n))
			}
		}
		if def, ok := field.Tags[TagDefault]; ok {
			var parsed any
			if err := yaml.Unmarshal([]byte(def), &parsed); err != nil {
				return nil, fmt.Errorf("%w: field %s: %s: %v", ErrInvalidTag, loc, TagDefault, err)
			}
			v.Default = parsed
			v.HasDefault = true
		}
		fields[name] = v
	}

	return fields, nil
}

// outputName returns the json name for a field, or false when json skips it.
func outputName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, true
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return "", false
	case "":
		return sf.Name, true
	}
	return name, true
}

// structElem reports the struct type behind a field: T or *T for an object,
// []T or []*T for a sequence. time.Time and other opaque structs without
// exported fields are treated as scalars.
func structElem(t reflect.Type) (elem reflect.Type, isSeq bool) {
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		isSeq = true
		t = t.Elem()
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || !hasExportedFields(t) {
		return nil, false
	}
	return t, isSeq
}

func hasExportedFields(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

// scanNestedType returns metadata for a nested struct type, preferring the
// sentinel cache and falling back to reading the tags directly.
func scanNestedType(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		meta.Fields = append(meta.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        dripTags(sf.Tag),
		})
	}
	return meta
}

// dripTags extracts the binding tags from a struct tag.
func dripTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range []string{TagPath, TagConvert, TagDefault} {
		if v, ok := tag.Lookup(key); ok {
			tags[key] = v
		}
	}
	return tags
}
