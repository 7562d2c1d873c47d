package lexer

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	// Structural
	TokenLBrace   TokenType = iota // {
	TokenRBrace                    // }
	TokenLBracket                  // [
	TokenRBracket                  // ]
	TokenColon                     // :
	TokenComma                     // ,

	// Literals
	TokenInt    // integer literal (no fractional part)
	TokenFloat  // float literal
	TokenString // "string literal"

	// Keywords
	TokenTrue  // true
	TokenFalse // false
	TokenNull  // null

	// End
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenLBrace: "{", TokenRBrace: "}", TokenLBracket: "[", TokenRBracket: "]",
	TokenColon: ":", TokenComma: ",",
	TokenInt: "INT", TokenFloat: "FLOAT", TokenString: "STRING",
	TokenTrue: "true", TokenFalse: "false", TokenNull: "null",
	TokenEOF: "EOF",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Token represents a single lexical token.
type Token struct {
	Type TokenType
	Val  string
	Pos  int // byte offset in original input
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Val, t.Pos)
}

// SyntaxError reports malformed input. It carries the byte offset of the
// offending token and, for unexpected-token failures, the expected and found
// token kinds.
type SyntaxError struct {
	Pos      int
	Expected string
	Found    string
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("syntax error at position %d: expected %s, got %s", e.Pos, e.Expected, e.Found)
}

func errorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Lexer tokenizes a JSON input string one token at a time.
//
// The grammar is a strict subset of JSON: string escapes are limited to
// \" \\ \/ \b \f \n \r \t, and numbers have no exponent notation.
type Lexer struct {
	input string
	pos   int
}

// New creates a Lexer over the given input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Next consumes and returns exactly one token. Once the input is exhausted it
// returns the EOF token on every call.
func (l *Lexer) Next() (Token, error) {
	l.skipWS()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: len(l.input)}, nil
	}

	ch := l.input[l.pos]
	pos := l.pos

	switch ch {
	case '{':
		l.pos++
		return Token{TokenLBrace, "{", pos}, nil
	case '}':
		l.pos++
		return Token{TokenRBrace, "}", pos}, nil
	case '[':
		l.pos++
		return Token{TokenLBracket, "[", pos}, nil
	case ']':
		l.pos++
		return Token{TokenRBracket, "]", pos}, nil
	case ':':
		l.pos++
		return Token{TokenColon, ":", pos}, nil
	case ',':
		l.pos++
		return Token{TokenComma, ",", pos}, nil
	}

	if ch == '"' {
		return l.lexString()
	}
	if ch == '-' || isDigit(ch) {
		return l.lexNumber()
	}
	return l.lexKeyword()
}

func (l *Lexer) skipWS() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) lexString() (Token, error) {
	start := l.pos
	l.pos++ // skip opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			l.pos++
			return Token{TokenString, sb.String(), start}, nil
		}
		if ch == '\\' {
			if l.pos+1 >= len(l.input) {
				return Token{}, errorf(start, "unterminated string")
			}
			esc := l.input[l.pos+1]
			switch esc {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '/':
				sb.WriteByte('/')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				return Token{}, errorf(l.pos, "unknown escape \\%c", esc)
			}
			l.pos += 2
			continue
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return Token{}, errorf(start, "unterminated string")
}

func (l *Lexer) lexNumber() (Token, error) {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}

	// Integer part: a bare 0, or a nonzero digit followed by digits.
	if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
		return Token{}, errorf(start, "malformed number")
	}
	if l.input[l.pos] == '0' {
		l.pos++
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			return Token{}, errorf(start, "malformed number: leading zero")
		}
	} else {
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	// Optional fractional part. Exponent notation is not recognized.
	isFloat := false
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return Token{}, errorf(start, "malformed number: no digits after decimal point")
		}
		isFloat = true
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	val := l.input[start:l.pos]
	if isFloat {
		return Token{TokenFloat, val, start}, nil
	}
	return Token{TokenInt, val, start}, nil
}

var keywords = []struct {
	lit string
	typ TokenType
}{
	{"true", TokenTrue},
	{"false", TokenFalse},
	{"null", TokenNull},
}

func (l *Lexer) lexKeyword() (Token, error) {
	start := l.pos
	for _, kw := range keywords {
		if strings.HasPrefix(l.input[l.pos:], kw.lit) {
			l.pos += len(kw.lit)
			return Token{kw.typ, kw.lit, start}, nil
		}
	}
	return Token{}, errorf(start, "unrecognized literal")
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
