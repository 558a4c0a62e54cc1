package kscope

import "github.com/pkg/errors"

// Visitor computes a backend specific result of type T for each node kind.
// A handler that cannot produce a result returns a non-nil error; the partial
// result, if any, is discarded.
//
// Handlers lower children through the pass they are given so that the
// results are recorded in the pass side table.
type Visitor[T any] interface {
	VisitLiteral(p *Pass[T], e *LiteralExpr) (T, error)
	VisitIdentifier(p *Pass[T], e *Identifier) (T, error)
	VisitBinary(p *Pass[T], e *BinaryExpr) (T, error)
	VisitCall(p *Pass[T], e *FuncCall) (T, error)
	VisitPrototype(p *Pass[T], e *Prototype) (T, error)
	VisitFunction(p *Pass[T], e *FuncDecl) (T, error)
}

// Pass is a single lowering pass of one visitor over one tree. Results are
// kept in a side table keyed by node identity, so the AST carries nothing
// backend specific and several backends can lower the same tree one after
// another. A Pass is not safe for concurrent use.
type Pass[T any] struct {
	visitor Visitor[T]
	results map[Node]T
	depth   int
}

func NewPass[T any](v Visitor[T]) *Pass[T] {
	return &Pass[T]{
		visitor: v,
		results: make(map[Node]T),
	}
}

// Lower dispatches n to the visitor handler for its kind. Each node is
// lowered at most once per pass; later calls return the recorded result.
func (p *Pass[T]) Lower(n Node) (res T, err error) {
	if n == nil {
		return res, errors.New("cannot lower a nil node")
	}

	if cached, ok := p.results[n]; ok {
		return cached, nil
	}

	if p.depth == 0 {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				p.depth = 0
				res, err = zero, errors.Errorf("lowering aborted: %v", r)
			}
		}()
	}

	p.depth++
	defer func() { p.depth-- }()

	switch e := n.(type) {
	case *LiteralExpr:
		res, err = p.visitor.VisitLiteral(p, e)
	case *Identifier:
		res, err = p.visitor.VisitIdentifier(p, e)
	case *BinaryExpr:
		res, err = p.visitor.VisitBinary(p, e)
	case *FuncCall:
		res, err = p.visitor.VisitCall(p, e)
	case *Prototype:
		res, err = p.visitor.VisitPrototype(p, e)
	case *FuncDecl:
		res, err = p.visitor.VisitFunction(p, e)
	default:
		err = errors.Errorf("unknown node %T", n)
	}

	if err != nil {
		var zero T
		return zero, err
	}

	p.results[n] = res
	return res, nil
}

// Result returns the handle recorded for n during this pass.
func (p *Pass[T]) Result(n Node) (T, bool) {
	res, ok := p.results[n]
	return res, ok
}

// Len reports how many nodes were lowered successfully.
func (p *Pass[T]) Len() int {
	return len(p.results)
}
