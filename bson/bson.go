// Package bson provides a BSON codec implementation.
package bson

import (
	"github.com/zoobzio/dripper"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements dripper.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() dripper.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON. v must encode to a document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v. Generic documents (*any) decode as
// bson.M so keyed descent works; nested documents follow the same type.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	if p, ok := v.(*any); ok {
		var doc bson.M
		if err := bson.Unmarshal(data, &doc); err != nil {
			return err
		}
		*p = normalize(doc)
		return nil
	}
	return bson.Unmarshal(data, v)
}

// normalize rewrites ordered documents (bson.D) nested in a generic document
// as bson.M so every level supports keyed lookup.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.A:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	}
	return v
}
