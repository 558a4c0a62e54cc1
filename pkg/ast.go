package kscope

// Node is implemented by every AST node kind. The set is closed: only the
// types in this file satisfy it.
type Node interface {
	node()
}

// Expr is the subset of nodes that produce a value.
type Expr interface {
	Node
	expr()
}

type LiteralExpr struct {
	Value float64
}

type Identifier struct {
	Name string
}

type BinaryOp rune

const (
	BinaryLess           BinaryOp = '<'
	BinaryGreater        BinaryOp = '>'
	BinaryAddition       BinaryOp = '+'
	BinarySubtraction    BinaryOp = '-'
	BinaryMultiplication BinaryOp = '*'
	BinaryDivision       BinaryOp = '/'
)

func (op BinaryOp) String() string {
	return string(op)
}

type BinaryExpr struct {
	Operation BinaryOp
	Op1       Expr
	Op2       Expr
}

type FuncCall struct {
	Name string
	Args []Expr
}

// Prototype is the signature shared by definitions and extern declarations.
// An empty Name marks the wrapper of a top-level expression.
type Prototype struct {
	Name   string
	Params []string
}

func (p *Prototype) IsAnonymous() bool {
	return p.Name == ""
}

type FuncDecl struct {
	Proto *Prototype
	Body  Expr
}

func (*LiteralExpr) node() {}
func (*Identifier) node()  {}
func (*BinaryExpr) node()  {}
func (*FuncCall) node()    {}
func (*Prototype) node()   {}
func (*FuncDecl) node()    {}

func (*LiteralExpr) expr() {}
func (*Identifier) expr()  {}
func (*BinaryExpr) expr()  {}
func (*FuncCall) expr()    {}
