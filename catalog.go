package dripper

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCatalogSize is the number of compiled declarations a Catalog keeps
// when NewCatalog is given a non-positive size.
const DefaultCatalogSize = 128

// Catalog compiles declarations authored as encoded bytes and keeps the
// resulting extractors in a bounded LRU cache. Identical bytes in the same
// content type compile once.
//
// Catalogs are safe for concurrent use.
type Catalog struct {
	codec    Codec
	compiler *Compiler
	cache    *lru.Cache[string, Extractor]
}

// NewCatalog creates a catalog that decodes declarations with codec and
// compiles them with compiler. A nil compiler uses the default compiler.
func NewCatalog(codec Codec, size int, compiler *Compiler) (*Catalog, error) {
	if size <= 0 {
		size = DefaultCatalogSize
	}
	if compiler == nil {
		compiler = defaultCompiler
	}
	cache, err := lru.New[string, Extractor](size)
	if err != nil {
		return nil, fmt.Errorf("catalog cache: %w", err)
	}
	return &Catalog{
		codec:    codec,
		compiler: compiler,
		cache:    cache,
	}, nil
}

// Load returns the extractor for an encoded declaration, compiling it on
// first use. Declarations that fail to decode or compile are not cached and
// emit no catalog signal.
func (c *Catalog) Load(ctx context.Context, data []byte) (Extractor, error) {
	key := c.key(data)
	ex, hit, err := c.load(key, data)
	if err != nil {
		return nil, err
	}
	emitCatalogLookup(ctx, c.codec.ContentType(), key, hit)
	return ex, nil
}

// key digests data together with the codec's content type.
func (c *Catalog) key(data []byte) string {
	return digest([]byte(c.codec.ContentType()), []byte{0}, data)
}

// load serves key from the cache or decodes, compiles and caches data.
// hit reports whether the cache served it.
func (c *Catalog) load(key string, data []byte) (ex Extractor, hit bool, err error) {
	if ex, ok := c.cache.Get(key); ok {
		return ex, true, nil
	}

	var decl any
	if err := c.codec.Unmarshal(data, &decl); err != nil {
		return nil, false, newCodecError(ErrUnmarshal, err)
	}
	ex, err = c.compiler.Compile(decl)
	if err != nil {
		return nil, false, err
	}

	c.cache.Add(key, ex)
	return ex, false, nil
}

// Len returns the number of cached extractors.
func (c *Catalog) Len() int {
	return c.cache.Len()
}

// Purge drops every cached extractor.
func (c *Catalog) Purge() {
	c.cache.Purge()
}
