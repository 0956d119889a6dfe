package dripper

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Compiler turns declarations into extractors.
//
// A Compiler owns the converter and merge registries that data-form
// declarations refer to by name. Registries may be updated at any time;
// names are resolved during Compile, so extractors compiled earlier keep the
// functions they were built with. Compilers are safe for concurrent use.
type Compiler struct {
	mu         sync.RWMutex
	converters map[string]ConvertFunc
	mergers    map[string]MergeFunc
}

// NewCompiler creates a Compiler with the builtin converters and mergers.
func NewCompiler() *Compiler {
	return &Compiler{
		converters: builtinConverters(),
		mergers:    builtinMergers(),
	}
}

var defaultCompiler = NewCompiler()

// DefaultCompiler returns the Compiler used by the package-level Compile.
func DefaultCompiler() *Compiler {
	return defaultCompiler
}

// Compile compiles decl with the default compiler.
func Compile(decl any) (Extractor, error) {
	return defaultCompiler.Compile(decl)
}

// MustCompile is Compile for statically known declarations. It panics on error.
func MustCompile(decl any) Extractor {
	ex, err := defaultCompiler.Compile(decl)
	if err != nil {
		panic(err)
	}
	return ex
}

// SetConverter registers a named converter.
// Returns the compiler for chaining. Safe for concurrent use.
func (c *Compiler) SetConverter(name string, fn ConvertFunc) *Compiler {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.converters[name] = fn
	return c
}

// SetMerger registers a named merge operator.
// Returns the compiler for chaining. Safe for concurrent use.
func (c *Compiler) SetMerger(name string, fn MergeFunc) *Compiler {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergers[name] = fn
	return c
}

// Converter returns the converter registered under name.
func (c *Compiler) Converter(name string) (ConvertFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.converters[name]
	return fn, ok
}

// Compile turns decl into an Extractor. Malformed declarations fail here,
// never while extracting, with a *DeclarationError.
func (c *Compiler) Compile(decl any) (Extractor, error) {
	start := time.Now()

	c.mu.RLock()
	ex, err := c.compile(decl, "")
	c.mu.RUnlock()

	emitCompiled(context.Background(), classify(decl).String(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// compile dispatches on the declaration variant. at is the dotted location
// of decl, used in error messages. Callers hold c.mu.
func (c *Compiler) compile(decl any, at string) (Extractor, error) {
	switch classify(decl) {
	case declCustom:
		return asExtractor(decl), nil

	case declScalar:
		path, err := pathOf(decl)
		if err != nil {
			return nil, newDeclarationError(ErrInvalidDeclaration, at, "%v", err)
		}
		return NewScalar(path), nil

	case declValue:
		v, err := c.valueOf(decl, at)
		if err != nil {
			return nil, err
		}
		return c.compileValue(v, at)

	case declCombination:
		comb, err := c.combinationOf(decl, at)
		if err != nil {
			return nil, err
		}
		return c.compileCombination(comb, at)

	case declShape:
		shape, err := c.shapeOf(decl, at)
		if err != nil {
			return nil, err
		}
		return c.compileShape(shape, at)
	}

	if decl == nil {
		return nil, newDeclarationError(ErrInvalidDeclaration, at, "nil declaration")
	}
	return nil, newDeclarationError(ErrInvalidDeclaration, at, "unsupported declaration type %T", decl)
}

func asExtractor(decl any) Extractor {
	switch d := decl.(type) {
	case Extractor:
		return d
	case func(any) (any, error):
		return ExtractorFunc(d)
	case func(any) any:
		return ExtractorFunc(func(doc any) (any, error) {
			return d(doc), nil
		})
	}
	return nil
}

func (c *Compiler) shapeOf(decl any, at string) (Shape, error) {
	switch d := decl.(type) {
	case Shape:
		return d, nil
	case *Shape:
		if d == nil {
			return Shape{}, newDeclarationError(ErrInvalidDeclaration, at, "nil shape")
		}
		return *d, nil
	}
	m, _ := asMap(decl)
	return shapeFromMap(m, at)
}

func (c *Compiler) valueOf(decl any, at string) (Value, error) {
	switch d := decl.(type) {
	case Value:
		return d, nil
	case *Value:
		if d == nil {
			return Value{}, newDeclarationError(ErrInvalidDeclaration, at, "nil value")
		}
		return *d, nil
	}
	m, _ := asMap(decl)
	return valueFromMap(m, at)
}

func (c *Compiler) combinationOf(decl any, at string) (Combination, error) {
	switch d := decl.(type) {
	case Combination:
		return d, nil
	case *Combination:
		if d == nil {
			return Combination{}, newDeclarationError(ErrInvalidDeclaration, at, "nil combination")
		}
		return *d, nil
	}
	m, _ := asMap(decl)
	return combinationFromMap(m, at)
}

func (c *Compiler) compileShape(s Shape, at string) (Extractor, error) {
	kind, err := ParseKind(string(s.Kind))
	if err != nil {
		return nil, newDeclarationError(ErrInvalidDeclaration, at, "%v", err)
	}

	fields := make(map[string]Extractor, len(s.Fields))
	for name, child := range s.Fields {
		loc := fieldPath(at, name)
		if isReserved(name) {
			return nil, newDeclarationError(ErrInvalidDeclaration, loc, "reserved name used as field")
		}
		ex, err := c.compile(child, loc)
		if err != nil {
			return nil, err
		}
		fields[name] = ex
	}

	if kind == KindSequence {
		return NewSequence(s.Root, fields), nil
	}
	return NewObject(s.Root, fields), nil
}

func (c *Compiler) compileValue(v Value, at string) (Extractor, error) {
	if v.Path == nil {
		return nil, newDeclarationError(ErrInvalidDeclaration, at, "value declaration without a path")
	}
	if classify(v.Path) != declScalar {
		return nil, newDeclarationError(ErrInvalidDeclaration, at, "value path must be a path literal, got %T", v.Path)
	}
	path, err := pathOf(v.Path)
	if err != nil {
		return nil, newDeclarationError(ErrInvalidDeclaration, at, "%v", err)
	}

	var opts []ScalarOption
	if len(v.Convert) > 0 {
		fns := make([]ConvertFunc, 0, len(v.Convert))
		for _, name := range v.Convert {
			fn, ok := c.converters[name]
			if !ok {
				return nil, newDeclarationError(ErrUnknownConverter, at, "%q", name)
			}
			fns = append(fns, fn)
		}
		opts = append(opts, WithConverter(Chain(fns...)))
	}
	if v.HasDefault {
		opts = append(opts, WithDefault(v.Default))
	}
	return NewScalar(path, opts...), nil
}

func (c *Compiler) compileCombination(comb Combination, at string) (Extractor, error) {
	if len(comb.Members) < 2 {
		return nil, newDeclarationError(ErrInvalidDeclaration, at, "combination needs at least 2 members, got %d", len(comb.Members))
	}

	name := comb.Merge
	if name == "" {
		name = MergeAdd
	}
	merge, ok := c.mergers[name]
	if !ok {
		return nil, newDeclarationError(ErrUnknownMerger, at, "%q", name)
	}

	members := make([]Extractor, len(comb.Members))
	for i, m := range comb.Members {
		ex, err := c.compile(m, at+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		members[i] = ex
	}
	return Combine(merge, members[0], members[1], members[2:]...), nil
}

// builtinMergers returns the default merge registry.
func builtinMergers() map[string]MergeFunc {
	return map[string]MergeFunc{
		MergeAdd:      Add,
		MergeCoalesce: Coalesce,
		MergeJoin:     Join(" "),
	}
}
