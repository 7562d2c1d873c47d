package engine

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/value"
)

// JoinMode selects which unmatched documents survive a join.
type JoinMode int

const (
	JoinInner JoinMode = iota
	JoinLeft
	JoinRight
	JoinFull
)

var joinModeNames = map[JoinMode]string{
	JoinInner: "inner", JoinLeft: "left", JoinRight: "right", JoinFull: "full",
}

func (m JoinMode) String() string {
	if s, ok := joinModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("JoinMode(%d)", int(m))
}

// ParseJoinMode parses "inner", "left", "right" or "full".
func ParseJoinMode(s string) (JoinMode, error) {
	for m, name := range joinModeNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown join mode %q (want inner, left, right or full)", s)
}

// Pair is one joined row. Either side may be nil when the mode keeps
// unmatched documents.
type Pair struct {
	Left  *document.Document
	Right *document.Document
}

type bucketEntry struct {
	key value.Value
	doc document.Document
}

// HashJoin joins two collections on the values extracted at leftPath and
// rightPath. The right side is built into a hash table keyed by the 64-bit
// xxhash of the canonical key encoding; probes confirm equality against the
// stored key, so hash collisions cannot produce false matches.
//
// Duplicate keys cross-product, preserving the matched right documents'
// relative order. Unmatched right documents are tracked by document ID, not
// value equality, so duplicate-valued documents are accounted for
// independently. Output order is all matched and left-unmatched pairs in
// left-document order, then right-unmatched pairs in right-document order.
func HashJoin(left, right *document.Collection, leftPath, rightPath string, mode JoinMode) []Pair {
	buckets := make(map[uint64][]bucketEntry)
	for _, d := range right.Docs() {
		key := document.Extract(d.Val, rightPath)
		h := xxhash.Sum64String(canonicalKey(key))
		buckets[h] = append(buckets[h], bucketEntry{key: key, doc: d})
	}

	var pairs []Pair
	matched := make(map[int]bool) // right document IDs already emitted

	for i := range left.Docs() {
		ld := left.At(i)
		key := document.Extract(ld.Val, leftPath)
		h := xxhash.Sum64String(canonicalKey(key))

		found := false
		for j := range buckets[h] {
			e := &buckets[h][j]
			if !e.key.Equal(key) {
				continue
			}
			found = true
			matched[e.doc.ID] = true
			l, r := ld, e.doc
			pairs = append(pairs, Pair{Left: &l, Right: &r})
		}
		if !found && (mode == JoinLeft || mode == JoinFull) {
			l := ld
			pairs = append(pairs, Pair{Left: &l})
		}
	}

	if mode == JoinRight || mode == JoinFull {
		for i := range right.Docs() {
			rd := right.At(i)
			if !matched[rd.ID] {
				r := rd
				pairs = append(pairs, Pair{Right: &r})
			}
		}
	}
	return pairs
}

// FlattenPairs converts join pairs into flat documents with keys prefixed
// "left." and "right.", the convention expected by downstream tabular
// consumers. A nil side contributes no keys; a non-object side is stored
// under the bare "left"/"right" key.
func FlattenPairs(pairs []Pair) *document.Collection {
	out := document.New()
	for _, p := range pairs {
		obj := value.NewObject()
		flattenSide(obj, "left", p.Left)
		flattenSide(obj, "right", p.Right)
		out.AddValue(value.ObjVal(obj))
	}
	return out
}

func flattenSide(obj *value.Object, prefix string, d *document.Document) {
	if d == nil {
		return
	}
	if d.Val.Type != value.TypeObject {
		obj.Set(prefix, d.Val)
		return
	}
	for _, f := range d.Val.Obj.Fields() {
		obj.Set(prefix+"."+f.Key, f.Val)
	}
}
