package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/razeghi71/docq/lexer"
	"github.com/razeghi71/docq/value"
)

func mustParse(t *testing.T, input string) value.Value {
	t.Helper()
	v, err := Parse(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return v
}

func parseErr(t *testing.T, input string) *lexer.SyntaxError {
	t.Helper()
	_, err := Parse(input)
	if err == nil {
		t.Fatalf("expected parse error for %q", input)
	}
	var se *lexer.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *lexer.SyntaxError, got %T: %v", err, err)
	}
	return se
}

func TestParseScalars(t *testing.T) {
	cases := []struct {
		input string
		want  value.Value
	}{
		{"null", value.Null()},
		{"true", value.BoolVal(true)},
		{"false", value.BoolVal(false)},
		{"42", value.IntVal(42)},
		{"-7", value.IntVal(-7)},
		{"3.5", value.FloatVal(3.5)},
		{`"hi"`, value.StrVal("hi")},
	}
	for _, c := range cases {
		got := mustParse(t, c.input)
		if !got.Equal(c.want) {
			t.Errorf("%q: expected %s, got %s", c.input, c.want, got)
		}
	}
}

func TestParseIntFloatClassification(t *testing.T) {
	if v := mustParse(t, "1"); v.Type != value.TypeInt {
		t.Errorf("parsing 1: expected int, got %s", v.Type)
	}
	if v := mustParse(t, "1.0"); v.Type != value.TypeFloat {
		t.Errorf("parsing 1.0: expected float, got %s", v.Type)
	}
}

func TestParseNested(t *testing.T) {
	v := mustParse(t, `{"user": {"name": "ann", "stats": {"likes": 3}}, "tags": ["a", "b"]}`)
	if v.Type != value.TypeObject {
		t.Fatalf("expected object, got %s", v.Type)
	}
	user, ok := v.Obj.Get("user")
	if !ok || user.Type != value.TypeObject {
		t.Fatal("missing nested user object")
	}
	stats, _ := user.Obj.Get("stats")
	likes, _ := stats.Obj.Get("likes")
	if !likes.Equal(value.IntVal(3)) {
		t.Errorf("expected likes=3, got %s", likes)
	}
	tags, _ := v.Obj.Get("tags")
	if tags.Type != value.TypeArray || len(tags.Arr) != 2 {
		t.Fatalf("expected 2-element array, got %s", tags)
	}
}

func TestParseEmptyContainers(t *testing.T) {
	if v := mustParse(t, "{}"); v.Type != value.TypeObject || v.Obj.Len() != 0 {
		t.Errorf("expected empty object, got %s", v)
	}
	if v := mustParse(t, "[]"); v.Type != value.TypeArray || len(v.Arr) != 0 {
		t.Errorf("expected empty array, got %s", v)
	}
}

func TestParseKeyOrderPreserved(t *testing.T) {
	v := mustParse(t, `{"z": 1, "a": 2, "m": 3}`)
	keys := v.Obj.Keys()
	want := []string{"z", "a", "m"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("expected key order %v, got %v", want, keys)
		}
	}
	if v.String() != `{"z":1,"a":2,"m":3}` {
		t.Errorf("canonical encoding lost key order: %s", v.String())
	}
}

func TestParseDuplicateKeyLastWins(t *testing.T) {
	v := mustParse(t, `{"a": 1, "b": 2, "a": 3}`)
	if v.Obj.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", v.Obj.Len())
	}
	a, _ := v.Obj.Get("a")
	if !a.Equal(value.IntVal(3)) {
		t.Errorf("expected last write to win, got %s", a)
	}
	// The key keeps its original position.
	if v.Obj.Keys()[0] != "a" {
		t.Errorf("expected a to stay first, got %v", v.Obj.Keys())
	}
}

func TestParseTrailingComma(t *testing.T) {
	parseErr(t, `{"a":1,}`)
	parseErr(t, `[1,2,]`)
}

func TestParseTrailingContent(t *testing.T) {
	se := parseErr(t, `[1,2] 3`)
	if !strings.Contains(se.Msg, "trailing content") {
		t.Errorf("expected trailing-content error, got %q", se.Msg)
	}
	if se.Pos != 6 {
		t.Errorf("expected error at position 6, got %d", se.Pos)
	}
}

func TestParseExpectedVsFound(t *testing.T) {
	se := parseErr(t, `{"a" 1}`)
	if se.Expected != ":" || se.Found != "INT" {
		t.Errorf("expected \":\"/INT, got %q/%q", se.Expected, se.Found)
	}
	if se.Pos != 5 {
		t.Errorf("expected error at position 5, got %d", se.Pos)
	}
}

func TestParseMissingValue(t *testing.T) {
	parseErr(t, `{"a":}`)
	parseErr(t, `[1,]`)
	parseErr(t, ``)
}

func TestParseDeterministic(t *testing.T) {
	input := `{"a": [1, 2.5, {"b": null}], "c": "x"}`
	v1 := mustParse(t, input)
	v2 := mustParse(t, input)
	if !v1.Equal(v2) || v1.String() != v2.String() {
		t.Error("identical input did not yield an identical value tree")
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	se := parseErr(t, deep)
	if !strings.Contains(se.Msg, "nesting") {
		t.Errorf("expected nesting-depth error, got %q", se.Msg)
	}

	ok := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	if _, err := Parse(ok); err != nil {
		t.Errorf("depth at the limit should parse: %v", err)
	}
}

func TestParseLexErrorPropagates(t *testing.T) {
	parseErr(t, `{"a": 01}`)
	parseErr(t, `{"a": "unterminated`)
}
