// Package engine implements query operations over in-memory document
// collections: equality find, field projection, grouping, aggregation,
// hash join, and pipeline composition. All operations are pure: the input
// collection is never mutated.
package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/value"
)

// Query maps dot-separated field paths to expected values. A document
// matches when every pair matches by structural equality after path
// extraction; there are no range or comparison operators.
type Query map[string]value.Value

// Find returns the ordered subsequence of documents matching the query.
// A nil or empty query returns all documents unchanged.
//
// A missing path yields the Missing sentinel, which equals only itself, so
// missing fields never match a literal expected value.
func Find(c *document.Collection, q Query) *document.Collection {
	if len(q) == 0 {
		// Copy the backing slice: the result must not share append slots
		// with the input.
		return document.FromDocs(append([]document.Document(nil), c.Docs()...))
	}
	out := document.New()
	for _, d := range c.Docs() {
		if matches(d, q) {
			out.Add(d)
		}
	}
	return out
}

func matches(d document.Document, q Query) bool {
	for path, expected := range q {
		if !document.Extract(d.Val, path).Equal(expected) {
			return false
		}
	}
	return true
}

// Project builds, for every document, a new flat document whose keys are the
// requested paths (not re-nested) in the requested order. A missing path
// becomes an explicit null. Output document order matches input order.
func Project(c *document.Collection, paths []string) *document.Collection {
	out := document.New()
	for _, d := range c.Docs() {
		obj := value.NewObject()
		for _, p := range paths {
			v := document.Extract(d.Val, p)
			if v.IsMissing() {
				v = value.Null()
			}
			obj.Set(p, v)
		}
		out.AddValue(value.ObjVal(obj))
	}
	return out
}

// Group is one partition of a grouped collection: the extracted key and the
// ordered documents sharing it.
type Group struct {
	Key  value.Value
	Docs *document.Collection
}

// GroupBy partitions documents by the value extracted at path. The partition
// is exhaustive and disjoint: every document lands in exactly one group.
// Documents whose path cannot be resolved share the Missing-key group, which
// is distinct from the null-key group. Groups are returned in order of first
// appearance.
func GroupBy(c *document.Collection, path string) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, d := range c.Docs() {
		key := document.Extract(d.Val, path)
		ck := canonicalKey(key)
		gi, ok := index[ck]
		if !ok {
			gi = len(groups)
			groups = append(groups, Group{Key: key, Docs: document.New()})
			index[ck] = gi
		}
		groups[gi].Docs.Add(d)
	}
	return groups
}

// canonicalKey encodes a key value for map lookup and hashing. The encoding
// is a congruence for Equal: two values encode identically exactly when Equal
// reports them equal. That means object fields are encoded in sorted key
// order (Equal ignores field order) and numeric encodings carry a type
// marker (Int(1) is not equal to Float(1.0), so "i1" vs "d..."). The Missing
// sentinel gets a marker no other encoding starts with.
func canonicalKey(v value.Value) string {
	var sb strings.Builder
	appendKey(&sb, v)
	return sb.String()
}

func appendKey(sb *strings.Builder, v value.Value) {
	switch v.Type {
	case value.TypeMissing:
		sb.WriteString("\x00missing")
	case value.TypeNull:
		sb.WriteString("null")
	case value.TypeBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case value.TypeInt:
		sb.WriteByte('i')
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case value.TypeFloat:
		f := v.Float
		if f == 0 {
			f = math.Abs(f) // -0 and 0 compare equal
		}
		sb.WriteByte('d')
		sb.WriteString(strconv.FormatFloat(f, 'b', -1, 64))
	case value.TypeString:
		sb.WriteString(strconv.Quote(v.Str))
	case value.TypeArray:
		sb.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendKey(sb, e)
		}
		sb.WriteByte(']')
	case value.TypeObject:
		keys := v.Obj.Keys()
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			fv, _ := v.Obj.Get(k)
			appendKey(sb, fv)
		}
		sb.WriteByte('}')
	}
}
