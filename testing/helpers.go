// Package testing provides test utilities for dripper.
package testing

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// AssertDocument fails t when got and want are not deeply equal, printing
// both documents with sorted keys.
func AssertDocument(t testing.TB, got, want any) {
	t.Helper()
	if reflect.DeepEqual(got, want) {
		return
	}
	t.Errorf("document mismatch\n--- got:\n%s--- want:\n%s", dumper.Sdump(got), dumper.Sdump(want))
}

// Dump renders v the way AssertDocument reports it.
func Dump(v any) string {
	return dumper.Sdump(v)
}

// FeedDocument returns a nested news-feed document. Each call returns a
// fresh copy.
func FeedDocument() map[string]any {
	return map[string]any{
		"body": map[string]any{
			"articles": []any{
				map[string]any{
					"title":     "Title",
					"published": map[string]any{"date": []any{"2014-11-05"}},
				},
				map[string]any{
					"title":     "Second",
					"published": map[string]any{"date": []any{}},
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
}

// FeedDeclaration returns a data-form declaration for FeedDocument. It holds
// no functions, so every codec can encode it.
func FeedDeclaration() map[string]any {
	return map[string]any{
		"articles": map[string]any{
			"__type__":        "sequence",
			"__source_root__": []any{"body", "articles"},
			"title":           []any{"title"},
			"title_lower":     map[string]any{"__path__": []any{"title"}, "__convert__": "lower"},
			"published":       []any{"published", "date", 0},
		},
		"meta": map[string]any{
			"__source_root__": []any{"meta", "meta1", "meta3", 0},
			"author":          []any{"author"},
		},
		"asset_type": []any{"meta", "meta4", "assetType"},
	}
}

// FeedExpected returns the result of applying FeedDeclaration to FeedDocument.
func FeedExpected() map[string]any {
	return map[string]any{
		"articles": []any{
			map[string]any{"title": "Title", "title_lower": "title", "published": "2014-11-05"},
			map[string]any{"title": "Second", "title_lower": "second"},
		},
		"meta":       map[string]any{"author": "Author name"},
		"asset_type": 1,
	}
}

// FeedArticle binds one article of FeedDocument.
type FeedArticle struct {
	Title     string `json:"title" drip:"title"`
	Lower     string `json:"title_lower" drip:"title" drip.convert:"lower"`
	Published string `json:"published" drip:"published.date[0]" drip.default:"unknown"`
}

// Feed binds FeedDocument.
type Feed struct {
	Articles  []FeedArticle `json:"articles" drip:"body.articles"`
	Author    string        `json:"author" drip:"meta.meta1.meta3[0].author"`
	AssetType int           `json:"asset_type" drip:"meta.meta4.assetType"`
}
