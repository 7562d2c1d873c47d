package engine

import (
	"testing"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/value"
)

func joinFixtures(t *testing.T) (left, right *document.Collection) {
	t.Helper()
	left = coll(t,
		`{"uid": 1, "name": "ann"}`,
		`{"uid": 2, "name": "bob"}`,
		`{"uid": 3, "name": "cat"}`,
	)
	right = coll(t,
		`{"user": 1, "post": "p1"}`,
		`{"user": 1, "post": "p2"}`,
		`{"user": 2, "post": "p3"}`,
		`{"user": 9, "post": "p4"}`,
	)
	return left, right
}

func countSides(pairs []Pair) (both, leftOnly, rightOnly int) {
	for _, p := range pairs {
		switch {
		case p.Left != nil && p.Right != nil:
			both++
		case p.Left != nil:
			leftOnly++
		default:
			rightOnly++
		}
	}
	return both, leftOnly, rightOnly
}

func TestHashJoinModes(t *testing.T) {
	left, right := joinFixtures(t)
	cases := []struct {
		mode                      JoinMode
		both, leftOnly, rightOnly int
	}{
		{JoinInner, 3, 0, 0},
		{JoinLeft, 3, 1, 0},
		{JoinRight, 3, 0, 1},
		{JoinFull, 3, 1, 1},
	}
	for _, c := range cases {
		pairs := HashJoin(left, right, "uid", "user", c.mode)
		both, lo, ro := countSides(pairs)
		if both != c.both || lo != c.leftOnly || ro != c.rightOnly {
			t.Errorf("%s: expected %d/%d/%d, got %d/%d/%d",
				c.mode, c.both, c.leftOnly, c.rightOnly, both, lo, ro)
		}
	}
}

func TestHashJoinOrder(t *testing.T) {
	left, right := joinFixtures(t)
	pairs := HashJoin(left, right, "uid", "user", JoinFull)
	// Left-order pairs first (ann twice, bob, unmatched cat), then the
	// unmatched right document.
	wantPosts := []string{"p1", "p2", "p3"}
	for i, want := range wantPosts {
		post := document.Extract(pairs[i].Right.Val, "post")
		if !post.Equal(value.StrVal(want)) {
			t.Errorf("pair %d: expected post %s, got %s", i, want, post)
		}
	}
	if pairs[3].Right != nil || !document.Extract(pairs[3].Left.Val, "name").Equal(value.StrVal("cat")) {
		t.Errorf("expected unmatched cat at position 3")
	}
	if pairs[4].Left != nil || !document.Extract(pairs[4].Right.Val, "post").Equal(value.StrVal("p4")) {
		t.Errorf("expected unmatched p4 last")
	}
}

func TestHashJoinDuplicateValuedRights(t *testing.T) {
	left := coll(t, `{"k": 1}`)
	// Two identical right documents: both must match and neither may be
	// reported unmatched.
	right := coll(t, `{"k": 1, "v": "same"}`, `{"k": 1, "v": "same"}`)
	pairs := HashJoin(left, right, "k", "k", JoinFull)
	both, lo, ro := countSides(pairs)
	if both != 2 || lo != 0 || ro != 0 {
		t.Errorf("expected 2 matches and no unmatched, got %d/%d/%d", both, lo, ro)
	}
}

func TestHashJoinNoCoercion(t *testing.T) {
	left := coll(t, `{"k": 1}`)
	right := coll(t, `{"k": 1.0}`, `{"k": "1"}`)
	pairs := HashJoin(left, right, "k", "k", JoinInner)
	if len(pairs) != 0 {
		t.Errorf("int 1 should not join float or string keys, got %d pairs", len(pairs))
	}
}

func TestHashJoinObjectKeyFieldOrderIgnored(t *testing.T) {
	// Object keys that Equal reports equal must land in the same bucket, no
	// matter their field order.
	left := coll(t, `{"k": {"a": 1, "b": 2}}`)
	right := coll(t, `{"k": {"b": 2, "a": 1}, "v": "hit"}`)
	pairs := HashJoin(left, right, "k", "k", JoinInner)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if !document.Extract(pairs[0].Right.Val, "v").Equal(value.StrVal("hit")) {
		t.Errorf("joined the wrong document: %s", pairs[0].Right.Val)
	}
}

func TestHashJoinMissingKeys(t *testing.T) {
	left := coll(t, `{"k": 1}`, `{}`)
	right := coll(t, `{}`, `{"k": 1}`)
	pairs := HashJoin(left, right, "k", "k", JoinInner)
	// Absent keys join other absent keys; absence is data.
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
}

func TestFlattenPairs(t *testing.T) {
	left, right := joinFixtures(t)
	flat := FlattenPairs(HashJoin(left, right, "uid", "user", JoinLeft))
	first := flat.At(0).Val
	if first.String() != `{"left.uid":1,"left.name":"ann","right.user":1,"right.post":"p1"}` {
		t.Errorf("unexpected flattened row: %s", first)
	}
	// cat is unmatched under a left join: no right.* keys at all.
	cat := flat.At(3).Val
	if cat.String() != `{"left.uid":3,"left.name":"cat"}` {
		t.Errorf("unmatched left row should carry only left keys: %s", cat)
	}
}

func TestFlattenNonObjectSide(t *testing.T) {
	d := document.Document{ID: 0, Val: value.IntVal(7)}
	flat := FlattenPairs([]Pair{{Left: &d}})
	v, ok := flat.At(0).Val.Obj.Get("left")
	if !ok || !v.Equal(value.IntVal(7)) {
		t.Errorf("non-object side should land under the bare prefix, got %s", flat.At(0).Val)
	}
}

func TestParseJoinMode(t *testing.T) {
	for _, name := range []string{"inner", "left", "right", "full"} {
		m, err := ParseJoinMode(name)
		if err != nil || m.String() != name {
			t.Errorf("round trip for %s failed: %s, %v", name, m, err)
		}
	}
	if _, err := ParseJoinMode("outer"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
