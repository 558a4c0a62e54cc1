package kscope

import "fmt"

// Handler receives each top-level construct as soon as it has been parsed.
type Handler interface {
	HandleDefinition(f *FuncDecl)
	HandleExtern(p *Prototype)
	HandleTopLevelExpr(f *FuncDecl)
}

// binopPrecedence is read-only after init. Higher binds tighter.
var binopPrecedence = map[TokenType]int{
	'<': 1,
	'>': 1,
	'+': 2,
	'-': 2,
	'*': 3,
	'/': 4,
}

type Parser struct {
	tokenizer Tokenizer
	diag      DiagnosticSink
	tok       Token
	lexErr    error
}

func NewParser(tokenizer Tokenizer, diag DiagnosticSink) *Parser {
	if diag == nil {
		diag = DiscardSink
	}

	p := &Parser{
		tokenizer: tokenizer,
		diag:      diag,
	}
	p.next()

	return p
}

// SetInput replaces the source being parsed. Nothing from the previous input
// is kept.
func (p *Parser) SetInput(text string) {
	p.tokenizer.SetInput(text)
	p.next()
}

// Parse runs the top-level loop until the input is exhausted, handing every
// construct to h. A construct that fails to parse is reported and its
// offending token discarded before parsing resumes.
func (p *Parser) Parse(h Handler) {
	for {
		switch p.tok.Typ {
		case TokenEOF:
			return
		case ';':
			p.next() // Top-level separators carry no meaning
		case TokenDef:
			if f, err := p.ParseDefinition(); err != nil {
				p.skip(err)
			} else {
				h.HandleDefinition(f)
			}
		case TokenExtern:
			if proto, err := p.ParseExtern(); err != nil {
				p.skip(err)
			} else {
				h.HandleExtern(proto)
			}
		default:
			if f, err := p.ParseTopLevelExpr(); err != nil {
				p.skip(err)
			} else {
				h.HandleTopLevelExpr(f)
			}
		}
	}
}

func (p *Parser) skip(err error) {
	p.diag.Report(SeverityError, err.Error())
	p.next()
}

func (p *Parser) next() Token {
	tok, err := p.tokenizer.Next()
	p.lexErr = err
	if err != nil {
		tok.Typ = TokenError
	}

	p.tok = tok
	return tok
}

func (p *Parser) check(typ TokenType) bool {
	return p.tok.Typ == typ
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	if p.tok.Typ == TokenError && p.lexErr != nil {
		// The lexer already explained what went wrong here
		return p.lexErr
	}

	loc := Location{}
	if p.tok.Loc != nil {
		loc = *p.tok.Loc
	}

	return &ParseError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// ParseDefinition parses `def` prototype expression.
func (p *Parser) ParseDefinition() (*FuncDecl, error) {
	if !p.check(TokenDef) {
		return nil, p.errorf("expected 'def'")
	}
	p.next()

	proto, err := p.prototype()
	if err != nil {
		return nil, err
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &FuncDecl{Proto: proto, Body: body}, nil
}

// ParseExtern parses `extern` prototype.
func (p *Parser) ParseExtern() (*Prototype, error) {
	if !p.check(TokenExtern) {
		return nil, p.errorf("expected 'extern'")
	}
	p.next()

	return p.prototype()
}

// ParseTopLevelExpr wraps a bare expression in an anonymous, parameterless
// function.
func (p *Parser) ParseTopLevelExpr() (*FuncDecl, error) {
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &FuncDecl{Proto: &Prototype{}, Body: body}, nil
}

// prototype parses IDENT '(' IDENT* ')'. Parameters are separated by
// whitespace only.
func (p *Parser) prototype() (*Prototype, error) {
	if !p.check(TokenIdentifier) {
		return nil, p.errorf("expected function name in prototype")
	}

	name := p.tok.Value
	p.next()

	if !p.check('(') {
		return nil, p.errorf("expected '(' in prototype")
	}

	var params []string
	for p.next(); p.check(TokenIdentifier); p.next() {
		params = append(params, p.tok.Value)
	}

	if !p.check(')') {
		return nil, p.errorf("expected ')' in prototype")
	}
	p.next() // Skip ')'

	return &Prototype{Name: name, Params: params}, nil
}

func (p *Parser) ParseExpression() (Expr, error) {
	lhs, err := p.primary()
	if err != nil {
		return nil, err
	}

	return p.binOpRHS(0, lhs)
}

func (p *Parser) precedence() int {
	if prec, ok := binopPrecedence[p.tok.Typ]; ok {
		return prec
	}

	return -1
}

// binOpRHS folds (op primary)* into lhs for every operator binding at least
// as tightly as minPrec. Equal precedence associates to the left.
func (p *Parser) binOpRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		prec := p.precedence()
		if prec < minPrec {
			return lhs, nil
		}

		op := BinaryOp(p.tok.Typ)
		p.next()

		rhs, err := p.primary()
		if err != nil {
			return nil, err
		}

		if prec < p.precedence() {
			// The next operator takes rhs as its own left operand
			rhs, err = p.binOpRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &BinaryExpr{
			Operation: op,
			Op1:       lhs,
			Op2:       rhs,
		}
	}
}

func (p *Parser) primary() (Expr, error) {
	switch p.tok.Typ {
	case TokenIdentifier:
		return p.identifier()
	case TokenNumber:
		return p.literal(), nil
	case '(':
		return p.parenthesisedExpression()
	default:
		return nil, p.errorf("unknown token %s when expecting an expression", p.tok.Typ)
	}
}

func (p *Parser) literal() Expr {
	lit := &LiteralExpr{Value: p.tok.Num}
	p.next()

	return lit
}

func (p *Parser) parenthesisedExpression() (Expr, error) {
	p.next() // Skip '('

	exp, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if !p.check(')') {
		return nil, p.errorf("expected ')'")
	}
	p.next()

	return exp, nil
}

func (p *Parser) identifier() (Expr, error) {
	name := p.tok.Value
	p.next()

	if !p.check('(') {
		return &Identifier{Name: name}, nil
	}

	return p.funcCall(name)
}

func (p *Parser) funcCall(name string) (Expr, error) {
	p.next() // Skip '('

	var args []Expr
	if !p.check(')') {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.check(',') {
				break
			}
			p.next() // Every comma is followed by an argument
		}

		if !p.check(')') {
			return nil, p.errorf("expected ')' or ',' in argument list")
		}
	}
	p.next() // Skip ')'

	return &FuncCall{
		Name: name,
		Args: args,
	}, nil
}
