package msgpack

import (
	"testing"

	"github.com/zoobzio/dripper"
)

func TestContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/msgpack" {
		t.Errorf("ContentType() = %q, want %q", got, "application/msgpack")
	}
}

func TestExtractFromDecoded(t *testing.T) {
	c := New()

	data, err := c.Marshal(map[string]any{
		"meta": map[string]any{"author": map[string]any{"name": "Ada"}},
		"tags": []any{"go", "drip"},
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var doc any
	if err := c.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	ex := dripper.MustCompile(map[string]any{
		"author":  []any{"meta", "author", "name"},
		"lastTag": []any{"tags", -1},
	})
	out, err := ex.Extract(doc)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	got := out.(map[string]any)
	if got["author"] != "Ada" {
		t.Errorf("author = %v, want %q", got["author"], "Ada")
	}
	if got["lastTag"] != "drip" {
		t.Errorf("lastTag = %v, want %q", got["lastTag"], "drip")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var v map[string]any
	if err := New().Unmarshal([]byte{0xc1}, &v); err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}
