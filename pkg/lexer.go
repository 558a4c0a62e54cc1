package kscope

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TokenType is either one of the negative control tags below or, for
// punctuation and operators, the code point of the character itself.
type TokenType int

const (
	EOF rune = -1

	TokenEOF        TokenType = -1
	TokenDef        TokenType = -2
	TokenExtern     TokenType = -3
	TokenIdentifier TokenType = -4
	TokenNumber     TokenType = -5
	TokenError      TokenType = -6
)

var keywordTable = map[string]TokenType{
	"def":    TokenDef,
	"extern": TokenExtern,
}

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenDef:
		return "Def"
	case TokenExtern:
		return "Extern"
	case TokenIdentifier:
		return "Identifier"
	case TokenNumber:
		return "Number"
	case TokenError:
		return "Error"
	}

	if t < 0 {
		return "TokenType(" + strconv.Itoa(int(t)) + ")"
	}

	return strconv.QuoteRune(rune(t))
}

type Location struct {
	Line int
	Col  int
}

func (l *Location) String() string {
	if l == nil {
		return "?:?"
	}

	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

type Token struct {
	Typ   TokenType
	Value string
	Num   float64
	Loc   *Location
}

func (t Token) isValid() bool {
	return t.Typ != TokenEOF && t.Typ != TokenError
}

// Tokenizer is the token source the parser pulls from.
type Tokenizer interface {
	SetInput(text string)
	Next() (Token, error)
}

type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{}
	l.SetInput(input)

	return l
}

// SetInput replaces the buffered source and rewinds to its start.
func (l *Lexer) SetInput(text string) {
	l.src = []rune(text)
	l.pos = 0
	l.line = 1
	l.col = 1
}

// Next scans the next token. Once the input is exhausted it keeps returning
// TokenEOF. A malformed number yields a *LexError along with a TokenError
// token; the lexer stays usable afterwards.
func (l *Lexer) Next() (Token, error) {
	for {
		for unicode.IsSpace(l.peek()) {
			l.next()
		}

		start := l.loc()
		switch r := l.peek(); {
		case r == EOF:
			return Token{Typ: TokenEOF, Loc: start}, nil
		case unicode.IsLetter(r):
			return l.identifier(start), nil
		case isDigit(r) || r == '.':
			return l.number(start)
		case r == '#':
			l.skipComment()
			continue
		default:
			l.next()
			return Token{Typ: TokenType(r), Value: string(r), Loc: start}, nil
		}
	}
}

func (l *Lexer) identifier(start *Location) Token {
	var id strings.Builder
	for r := l.peek(); unicode.IsLetter(r) || isDigit(r); r = l.peek() {
		id.WriteRune(l.next())
	}

	if t, ok := keywordTable[id.String()]; ok {
		return Token{Typ: t, Value: id.String(), Loc: start}
	}

	return Token{Typ: TokenIdentifier, Value: id.String(), Loc: start}
}

func (l *Lexer) number(start *Location) (Token, error) {
	var num strings.Builder
	dots := 0
	for r := l.peek(); isDigit(r) || r == '.'; r = l.peek() {
		if r == '.' {
			dots++
		}

		num.WriteRune(l.next())
	}

	text := num.String()
	if dots > 1 {
		return l.errorf(start, text, "wrong number format")
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return l.errorf(start, text, "invalid number")
	}

	return Token{Typ: TokenNumber, Value: text, Num: v, Loc: start}, nil
}

// isDigit accepts ASCII digits only; numbers are parsed by strconv.
func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func (l *Lexer) skipComment() {
	for r := l.peek(); r != '\n' && r != '\r' && r != EOF; r = l.peek() {
		l.next()
	}
}

func (l *Lexer) errorf(start *Location, text, msg string) (Token, error) {
	err := &LexError{Loc: *start, Text: text, Msg: msg}
	return Token{Typ: TokenError, Value: text, Loc: start}, err
}

func (l *Lexer) loc() *Location {
	return &Location{Line: l.line, Col: l.col}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return EOF
	}

	return l.src[l.pos]
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.src) {
		return EOF
	}

	r := l.src[l.pos]
	l.pos++

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}
