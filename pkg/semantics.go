package kscope

import (
	"strings"
)

// ContextAnalyzer checks a construct against everything declared before it:
// unknown names, call arity and redefinitions. It records declarations in a
// global symbol table that outlives the individual passes.
type ContextAnalyzer struct {
	global *SymbolTable
	scope  *SymbolTable
}

func NewContextAnalyser() *ContextAnalyzer {
	return &ContextAnalyzer{
		global: NewGlobalSymbolTable(),
	}
}

func (c *ContextAnalyzer) Global() *SymbolTable {
	return c.global
}

func (c *ContextAnalyzer) VisitLiteral(_ *Pass[Type], _ *LiteralExpr) (Type, error) {
	return doubleType, nil
}

func (c *ContextAnalyzer) VisitIdentifier(_ *Pass[Type], e *Identifier) (Type, error) {
	if c.scope != nil {
		if t := c.scope.Get(e.Name); t != nil {
			return t, nil
		}
	}

	return nil, &UndefinedError{Kind: UndefinedVariable, Name: e.Name}
}

func (c *ContextAnalyzer) VisitBinary(p *Pass[Type], e *BinaryExpr) (Type, error) {
	t1, err := p.Lower(e.Op1)
	if err != nil {
		return nil, err
	}

	t2, err := p.Lower(e.Op2)
	if err != nil {
		return nil, err
	}

	if _, ok := binopPrecedence[TokenType(e.Operation)]; !ok {
		return nil, &UndefinedOperationError{Op: e.Operation}
	}

	if !t1.Equals(doubleType) || !t2.Equals(doubleType) {
		return nil, &UndefinedOperationError{Op: e.Operation}
	}

	return doubleType, nil
}

func (c *ContextAnalyzer) VisitCall(p *Pass[Type], e *FuncCall) (Type, error) {
	f, ok := c.global.Get(e.Name).(*FuncType)
	if !ok {
		return nil, &UndefinedError{Kind: UndefinedFunction, Name: e.Name}
	}

	if len(f.Params) != len(e.Args) {
		return nil, &ArityError{Name: e.Name, Want: len(f.Params), Got: len(e.Args)}
	}

	for _, arg := range e.Args {
		if _, err := p.Lower(arg); err != nil {
			return nil, err
		}
	}

	return doubleType, nil
}

func (c *ContextAnalyzer) VisitPrototype(_ *Pass[Type], e *Prototype) (Type, error) {
	if err := checkPrototype(e); err != nil {
		return nil, err
	}

	if e.IsAnonymous() {
		return &FuncType{}, nil
	}

	if f, ok := c.global.Get(e.Name).(*FuncType); ok {
		if len(f.Params) != len(e.Params) {
			return nil, &ArityError{Name: e.Name, Want: len(f.Params), Got: len(e.Params)}
		}

		return f, nil
	}

	f := &FuncType{Params: e.Params}
	c.global.Add(e.Name, f)

	return f, nil
}

func (c *ContextAnalyzer) VisitFunction(p *Pass[Type], e *FuncDecl) (Type, error) {
	proto := e.Proto
	if err := checkPrototype(proto); err != nil {
		return nil, err
	}

	existing, declared := c.global.Get(proto.Name).(*FuncType)
	if declared && !proto.IsAnonymous() {
		if existing.Defined {
			return nil, &RedefinitionError{Name: proto.Name}
		}

		if len(existing.Params) != len(proto.Params) {
			return nil, &ArityError{Name: proto.Name, Want: len(existing.Params), Got: len(proto.Params)}
		}
	}

	t, err := p.Lower(proto)
	if err != nil {
		return nil, err
	}
	f := t.(*FuncType)

	prevScope := c.scope
	c.scope = NewSymbolTable()
	defer func() {
		c.scope = prevScope
	}()

	for _, param := range proto.Params {
		c.scope.Add(param, doubleType)
	}

	if _, err := p.Lower(e.Body); err != nil {
		if !declared && !proto.IsAnonymous() {
			c.global.Remove(proto.Name)
		}

		return nil, err
	}

	f.Defined = true
	return f, nil
}

type Type interface {
	String() string
	Equals(t2 Type) bool
}

var doubleType = &BasicType{"double"}

type BasicType struct {
	Typ string
}

func (t *BasicType) String() string {
	return t.Typ
}

func (t *BasicType) Equals(t2 Type) bool {
	if typ, ok := t2.(*BasicType); ok {
		return t.Typ == typ.Typ
	}

	return false
}

// FuncType describes a function taking len(Params) doubles and returning a
// double. Defined is set once a body has been checked.
type FuncType struct {
	Params  []string
	Defined bool
}

func (t *FuncType) String() string {
	var str strings.Builder
	str.WriteString("func(")

	for i := range t.Params {
		str.WriteString(doubleType.String())

		if i != len(t.Params)-1 {
			str.WriteString(", ")
		}
	}
	str.WriteString(") ")
	str.WriteString(doubleType.String())

	return str.String()
}

func (t *FuncType) Equals(t2 Type) bool {
	if typ, ok := t2.(*FuncType); ok {
		return len(t.Params) == len(typ.Params)
	}

	return false
}

type SymbolTable struct {
	Entries map[string]Type
}

func NewGlobalSymbolTable() *SymbolTable {
	return &SymbolTable{
		Entries: map[string]Type{
			"printd": &FuncType{
				Params:  []string{"x"},
				Defined: true,
			},
			"putchard": &FuncType{
				Params:  []string{"c"},
				Defined: true,
			},
		},
	}
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Entries: make(map[string]Type),
	}
}

func (t *SymbolTable) Add(name string, typ Type) {
	t.Entries[name] = typ
}

func (t *SymbolTable) Get(name string) Type {
	typ, contains := t.Entries[name]
	if !contains {
		return nil
	}

	return typ
}

func (t *SymbolTable) Remove(name string) {
	delete(t.Entries, name)
}
