package dripper

// Override interfaces let document types bypass reflection during descent.
// When a node implements one of these interfaces, Descend calls the
// interface method instead of inspecting the value with reflect.
//
// They suit documents backed by custom containers (ordered maps, lazily
// decoded records, database rows) that are neither plain maps nor slices.

// Keyed resolves key steps.
type Keyed interface {
	// Lookup returns the child stored under key and whether it exists.
	Lookup(key string) (any, bool)
}

// Indexed resolves index steps and exposes its elements to sequence shapes.
type Indexed interface {
	// Len returns the number of elements.
	Len() int

	// At returns the element at position i, where 0 <= i < Len().
	At(i int) any
}

// Cloner lets a document type provide its own deep copy.
// Descend clones every value it returns; types that hold state reflection
// cannot copy (unexported fields, handles) should implement Cloner so that
// callers can mutate results without touching the source document.
type Cloner interface {
	// Clone returns a deep copy of the receiver.
	Clone() any
}
