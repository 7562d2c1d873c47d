package document

import (
	"strings"

	"github.com/razeghi71/docq/value"
)

// Document is a single query unit: a parsed value (normally an object)
// paired with a stable identity.
//
// ID is assigned once, at load time, and survives filtering and joining; join
// bookkeeping tracks matched documents by ID rather than by value equality,
// so duplicate-valued documents are accounted for independently.
type Document struct {
	ID  int
	Val value.Value
}

// Collection is an ordered sequence of documents. Query operations never
// mutate a collection; they build new ones.
type Collection struct {
	docs []Document
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{}
}

// FromValues wraps parsed values into a collection, assigning IDs by
// position.
func FromValues(vals []value.Value) *Collection {
	docs := make([]Document, len(vals))
	for i, v := range vals {
		docs[i] = Document{ID: i, Val: v}
	}
	return &Collection{docs: docs}
}

// FromDocs wraps pre-identified documents into a collection. Used by loaders
// that assign IDs across chunk boundaries.
func FromDocs(docs []Document) *Collection {
	return &Collection{docs: docs}
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	return len(c.docs)
}

// Docs returns the documents in order. The slice is shared; callers must not
// modify it.
func (c *Collection) Docs() []Document {
	return c.docs
}

// At returns the document at position i.
func (c *Collection) At(i int) Document {
	return c.docs[i]
}

// Add appends an existing document, keeping its identity.
func (c *Collection) Add(d Document) {
	c.docs = append(c.docs, d)
}

// AddValue appends a new document wrapping v, assigning the next positional
// ID.
func (c *Collection) AddValue(v value.Value) {
	c.docs = append(c.docs, Document{ID: len(c.docs), Val: v})
}

// Extract resolves a dot-separated field path against a value by sequential
// key lookup. An absent key, or a traversal step that lands on a non-object,
// yields the Missing sentinel rather than an error: absence is data.
func Extract(v value.Value, path string) value.Value {
	cur := v
	for _, key := range strings.Split(path, ".") {
		if cur.Type != value.TypeObject {
			return value.Missing()
		}
		next, ok := cur.Obj.Get(key)
		if !ok {
			return value.Missing()
		}
		cur = next
	}
	return cur
}

// Fields enumerates the dot-paths present across the collection's documents
// in first-seen order. Arrays are descended through their first element under
// the same prefix. If sample > 0, only the first sample documents are
// scanned.
func (c *Collection) Fields(sample int) []string {
	n := len(c.docs)
	if sample > 0 && sample < n {
		n = sample
	}
	seen := make(map[string]bool)
	var paths []string
	var walk func(v value.Value, prefix string)
	walk = func(v value.Value, prefix string) {
		switch v.Type {
		case value.TypeObject:
			for _, f := range v.Obj.Fields() {
				full := f.Key
				if prefix != "" {
					full = prefix + "." + f.Key
				}
				if !seen[full] {
					seen[full] = true
					paths = append(paths, full)
				}
				walk(f.Val, full)
			}
		case value.TypeArray:
			if len(v.Arr) > 0 {
				walk(v.Arr[0], prefix)
			}
		}
	}
	for i := 0; i < n; i++ {
		walk(c.docs[i].Val, "")
	}
	return paths
}
