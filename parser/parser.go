package parser

import (
	"fmt"
	"strconv"

	"github.com/razeghi71/docq/lexer"
	"github.com/razeghi71/docq/value"
)

// MaxDepth bounds the nesting of arrays and objects. Input nested deeper
// fails with a SyntaxError instead of exhausting the stack.
const MaxDepth = 200

// Parser converts a token stream into a value tree using one-token lookahead.
type Parser struct {
	lex    *lexer.Lexer
	buf    lexer.Token
	buffed bool
	depth  int
}

// Parse parses a single JSON value from text. Trailing non-whitespace content
// after the value is an error.
func Parse(text string) (value.Value, error) {
	p := &Parser{lex: lexer.New(text)}
	v, err := p.parseValue()
	if err != nil {
		return value.Value{}, err
	}
	tok, err := p.peek()
	if err != nil {
		return value.Value{}, err
	}
	if tok.Type != lexer.TokenEOF {
		return value.Value{}, &lexer.SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("trailing content after top-level value (%s)", tok.Type)}
	}
	return v, nil
}

func (p *Parser) peek() (lexer.Token, error) {
	if !p.buffed {
		tok, err := p.lex.Next()
		if err != nil {
			return lexer.Token{}, err
		}
		p.buf = tok
		p.buffed = true
	}
	return p.buf, nil
}

func (p *Parser) advance() (lexer.Token, error) {
	tok, err := p.peek()
	if err != nil {
		return lexer.Token{}, err
	}
	p.buffed = false
	return tok, nil
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	tok, err := p.advance()
	if err != nil {
		return lexer.Token{}, err
	}
	if tok.Type != tt {
		return tok, &lexer.SyntaxError{Pos: tok.Pos, Expected: tt.String(), Found: tok.Type.String()}
	}
	return tok, nil
}

func (p *Parser) parseValue() (value.Value, error) {
	tok, err := p.peek()
	if err != nil {
		return value.Value{}, err
	}

	switch tok.Type {
	case lexer.TokenLBrace:
		return p.parseObject()
	case lexer.TokenLBracket:
		return p.parseArray()
	case lexer.TokenString:
		p.buffed = false
		return value.StrVal(tok.Val), nil
	case lexer.TokenInt:
		p.buffed = false
		n, err := strconv.ParseInt(tok.Val, 10, 64)
		if err != nil {
			return value.Value{}, &lexer.SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("integer literal %q out of range", tok.Val)}
		}
		return value.IntVal(n), nil
	case lexer.TokenFloat:
		p.buffed = false
		f, err := strconv.ParseFloat(tok.Val, 64)
		if err != nil {
			return value.Value{}, &lexer.SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid float literal %q", tok.Val)}
		}
		return value.FloatVal(f), nil
	case lexer.TokenTrue:
		p.buffed = false
		return value.BoolVal(true), nil
	case lexer.TokenFalse:
		p.buffed = false
		return value.BoolVal(false), nil
	case lexer.TokenNull:
		p.buffed = false
		return value.Null(), nil
	default:
		return value.Value{}, &lexer.SyntaxError{Pos: tok.Pos, Expected: "value", Found: tok.Type.String()}
	}
}

func (p *Parser) push(pos int) error {
	p.depth++
	if p.depth > MaxDepth {
		return &lexer.SyntaxError{Pos: pos, Msg: fmt.Sprintf("value nesting exceeds %d levels", MaxDepth)}
	}
	return nil
}

func (p *Parser) parseObject() (value.Value, error) {
	open, err := p.expect(lexer.TokenLBrace)
	if err != nil {
		return value.Value{}, err
	}
	if err := p.push(open.Pos); err != nil {
		return value.Value{}, err
	}
	defer func() { p.depth-- }()

	obj := value.NewObject()

	tok, err := p.peek()
	if err != nil {
		return value.Value{}, err
	}
	if tok.Type == lexer.TokenRBrace {
		p.buffed = false
		return value.ObjVal(obj), nil
	}

	for {
		key, err := p.expect(lexer.TokenString)
		if err != nil {
			return value.Value{}, err
		}
		if _, err := p.expect(lexer.TokenColon); err != nil {
			return value.Value{}, err
		}
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		// Re-inserted keys overwrite in place: last write wins.
		obj.Set(key.Val, v)

		tok, err := p.advance()
		if err != nil {
			return value.Value{}, err
		}
		switch tok.Type {
		case lexer.TokenComma:
			continue
		case lexer.TokenRBrace:
			return value.ObjVal(obj), nil
		default:
			return value.Value{}, &lexer.SyntaxError{Pos: tok.Pos, Expected: ", or }", Found: tok.Type.String()}
		}
	}
}

func (p *Parser) parseArray() (value.Value, error) {
	open, err := p.expect(lexer.TokenLBracket)
	if err != nil {
		return value.Value{}, err
	}
	if err := p.push(open.Pos); err != nil {
		return value.Value{}, err
	}
	defer func() { p.depth-- }()

	var elems []value.Value

	tok, err := p.peek()
	if err != nil {
		return value.Value{}, err
	}
	if tok.Type == lexer.TokenRBracket {
		p.buffed = false
		return value.ArrVal(elems), nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)

		tok, err := p.advance()
		if err != nil {
			return value.Value{}, err
		}
		switch tok.Type {
		case lexer.TokenComma:
			continue
		case lexer.TokenRBracket:
			return value.ArrVal(elems), nil
		default:
			return value.Value{}, &lexer.SyntaxError{Pos: tok.Pos, Expected: ", or ]", Found: tok.Type.String()}
		}
	}
}
