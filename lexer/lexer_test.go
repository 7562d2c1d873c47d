package lexer

import (
	"errors"
	"testing"
)

func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func lexErr(t *testing.T, input string) *SyntaxError {
	t.Helper()
	l := New(input)
	for {
		tok, err := l.Next()
		if err != nil {
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}
			return se
		}
		if tok.Type == TokenEOF {
			t.Fatalf("expected lex error for %q, got none", input)
		}
	}
}

func TestLexObject(t *testing.T) {
	tokens := lexAll(t, `{"a": 1, "b": [true, null]}`)
	expected := []TokenType{
		TokenLBrace, TokenString, TokenColon, TokenInt, TokenComma,
		TokenString, TokenColon, TokenLBracket, TokenTrue, TokenComma,
		TokenNull, TokenRBracket, TokenRBrace, TokenEOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tt := range expected {
		if tokens[i].Type != tt {
			t.Errorf("token %d: expected %s, got %s (%q)", i, tt, tokens[i].Type, tokens[i].Val)
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	tokens := lexAll(t, `"a\"b\\c\/d\n\t\r\b\f"`)
	if tokens[0].Type != TokenString {
		t.Fatalf("expected STRING, got %s", tokens[0].Type)
	}
	if tokens[0].Val != "a\"b\\c/d\n\t\r\b\f" {
		t.Errorf("unexpected string value %q", tokens[0].Val)
	}
}

func TestLexStringUTF8(t *testing.T) {
	tokens := lexAll(t, `"北京"`)
	if tokens[0].Val != "北京" {
		t.Errorf("expected UTF-8 passthrough, got %q", tokens[0].Val)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	se := lexErr(t, `  "abc`)
	if se.Pos != 2 {
		t.Errorf("expected error at position 2, got %d", se.Pos)
	}
}

func TestLexUnknownEscape(t *testing.T) {
	lexErr(t, `"a\x"`)
}

func TestLexNumbers(t *testing.T) {
	cases := []struct {
		input string
		typ   TokenType
	}{
		{"0", TokenInt},
		{"-0", TokenInt},
		{"42", TokenInt},
		{"-17", TokenInt},
		{"3.14", TokenFloat},
		{"-0.5", TokenFloat},
		{"1.0", TokenFloat},
	}
	for _, c := range cases {
		tokens := lexAll(t, c.input)
		if tokens[0].Type != c.typ {
			t.Errorf("%q: expected %s, got %s", c.input, c.typ, tokens[0].Type)
		}
		if tokens[0].Val != c.input {
			t.Errorf("%q: expected literal text, got %q", c.input, tokens[0].Val)
		}
	}
}

func TestLexBadNumbers(t *testing.T) {
	for _, input := range []string{"01", "1.", "-", "-.5", ".5"} {
		l := New(input)
		var failed bool
		for i := 0; i < 4; i++ {
			tok, err := l.Next()
			if err != nil {
				failed = true
				break
			}
			if tok.Type == TokenEOF {
				break
			}
		}
		if !failed {
			t.Errorf("%q: expected lex error", input)
		}
	}
}

func TestLexNoExponent(t *testing.T) {
	// Exponent notation is outside the grammar: "1e5" lexes as the integer
	// 1 followed by an unrecognized literal.
	l := New("1e5")
	tok, err := l.Next()
	if err != nil || tok.Type != TokenInt {
		t.Fatalf("expected INT, got %v (%v)", tok, err)
	}
	if _, err := l.Next(); err == nil {
		t.Fatal("expected unrecognized literal error after exponent")
	}
}

func TestLexKeywords(t *testing.T) {
	tokens := lexAll(t, "true false null")
	expected := []TokenType{TokenTrue, TokenFalse, TokenNull, TokenEOF}
	for i, tt := range expected {
		if tokens[i].Type != tt {
			t.Errorf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
}

func TestLexUnknownLiteral(t *testing.T) {
	se := lexErr(t, "  truthy")
	if se.Pos != 2 {
		t.Errorf("expected error at position 2, got %d", se.Pos)
	}
	lexErr(t, "nul")
}

func TestLexEOFIdempotent(t *testing.T) {
	l := New("  null  ")
	if tok, _ := l.Next(); tok.Type != TokenNull {
		t.Fatalf("expected null, got %s", tok.Type)
	}
	for i := 0; i < 3; i++ {
		tok, err := l.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Type != TokenEOF {
			t.Fatalf("call %d: expected EOF, got %s", i, tok.Type)
		}
		if tok.Pos != 8 {
			t.Errorf("call %d: expected EOF at position 8, got %d", i, tok.Pos)
		}
	}
}

func TestLexPositions(t *testing.T) {
	tokens := lexAll(t, ` {  "a" : 12 }`)
	positions := []int{1, 4, 8, 10, 13, 14}
	for i, pos := range positions {
		if tokens[i].Pos != pos {
			t.Errorf("token %d (%s): expected position %d, got %d", i, tokens[i].Type, pos, tokens[i].Pos)
		}
	}
}
