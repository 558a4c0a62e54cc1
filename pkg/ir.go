package kscope

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

var errNoBlock = errors.New("expression lowered outside of a function body")

type ValueLookup struct {
	vals map[string]value.Value
}

func NewValueLookup() *ValueLookup {
	return &ValueLookup{
		vals: make(map[string]value.Value),
	}
}

func (l *ValueLookup) Get(id string) (value.Value, bool) {
	val, ok := l.vals[id]
	return val, ok
}

func (l *ValueLookup) Set(id string, val value.Value) {
	l.vals[id] = val
}

// LLVMIRBuilder lowers trees into a single LLVM module. Every value is a
// double and every function returns one. The module grows with each
// top-level construct lowered through the builder.
type LLVMIRBuilder struct {
	mod    *ir.Module
	block  *ir.Block
	values *ValueLookup
	funcs  map[string]*ir.Func
	anon   int
}

func NewLLVMIRBuilder() *LLVMIRBuilder {
	builder := &LLVMIRBuilder{
		mod:    ir.NewModule(),
		values: NewValueLookup(),
		funcs:  make(map[string]*ir.Func),
	}

	defineBuiltins(builder)
	return builder
}

func (b *LLVMIRBuilder) Module() *ir.Module {
	return b.mod
}

// Func returns the function visible to programs under name.
func (b *LLVMIRBuilder) Func(name string) (*ir.Func, bool) {
	f, ok := b.funcs[name]
	return f, ok
}

func (b *LLVMIRBuilder) VisitLiteral(_ *Pass[value.Value], e *LiteralExpr) (value.Value, error) {
	return constant.NewFloat(types.Double, e.Value), nil
}

func (b *LLVMIRBuilder) VisitIdentifier(_ *Pass[value.Value], e *Identifier) (value.Value, error) {
	v, ok := b.values.Get(e.Name)
	if !ok {
		return nil, &UndefinedError{Kind: UndefinedVariable, Name: e.Name}
	}

	return v, nil
}

func (b *LLVMIRBuilder) VisitBinary(p *Pass[value.Value], e *BinaryExpr) (value.Value, error) {
	v1, err := p.Lower(e.Op1)
	if err != nil {
		return nil, err
	}

	v2, err := p.Lower(e.Op2)
	if err != nil {
		return nil, err
	}

	if b.block == nil {
		return nil, errNoBlock
	}

	switch e.Operation {
	case BinaryAddition:
		return b.block.NewFAdd(v1, v2), nil
	case BinarySubtraction:
		return b.block.NewFSub(v1, v2), nil
	case BinaryMultiplication:
		return b.block.NewFMul(v1, v2), nil
	case BinaryDivision:
		return b.block.NewFDiv(v1, v2), nil
	case BinaryLess:
		cmp := b.block.NewFCmp(enum.FPredULT, v1, v2)
		return b.block.NewUIToFP(cmp, types.Double), nil
	case BinaryGreater:
		cmp := b.block.NewFCmp(enum.FPredUGT, v1, v2)
		return b.block.NewUIToFP(cmp, types.Double), nil
	default:
		return nil, &UndefinedOperationError{Op: e.Operation}
	}
}

func (b *LLVMIRBuilder) VisitCall(p *Pass[value.Value], e *FuncCall) (value.Value, error) {
	callee, ok := b.funcs[e.Name]
	if !ok {
		return nil, &UndefinedError{Kind: UndefinedFunction, Name: e.Name}
	}

	if len(callee.Params) != len(e.Args) {
		return nil, &ArityError{Name: e.Name, Want: len(callee.Params), Got: len(e.Args)}
	}

	args := make([]value.Value, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := p.Lower(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, v)
	}

	if b.block == nil {
		return nil, errNoBlock
	}

	return b.block.NewCall(callee, args...), nil
}

// VisitPrototype declares `double name(double, ...)`. Declaring a known
// function again with the same arity yields the existing declaration.
func (b *LLVMIRBuilder) VisitPrototype(_ *Pass[value.Value], e *Prototype) (value.Value, error) {
	if err := checkPrototype(e); err != nil {
		return nil, err
	}

	if f, ok := b.funcs[e.Name]; ok && !e.IsAnonymous() {
		if len(f.Params) != len(e.Params) {
			return nil, &ArityError{Name: e.Name, Want: len(f.Params), Got: len(e.Params)}
		}

		return f, nil
	}

	name := e.Name
	if e.IsAnonymous() {
		name = fmt.Sprintf("__anon_expr%d", b.anon)
		b.anon++
	}

	params := make([]*ir.Param, len(e.Params))
	for i, param := range e.Params {
		params[i] = ir.NewParam(param, types.Double)
	}

	f := b.mod.NewFunc(name, types.Double, params...)
	b.funcs[name] = f

	return f, nil
}

func (b *LLVMIRBuilder) VisitFunction(p *Pass[value.Value], e *FuncDecl) (value.Value, error) {
	proto := e.Proto
	if err := checkPrototype(proto); err != nil {
		return nil, err
	}

	// A previous extern may already have declared the function
	var f *ir.Func
	if !proto.IsAnonymous() {
		f = b.funcs[proto.Name]
	}

	created := f == nil
	if created {
		v, err := p.Lower(proto)
		if err != nil {
			return nil, err
		}

		f = v.(*ir.Func)
	} else {
		if len(f.Blocks) != 0 {
			return nil, &RedefinitionError{Name: proto.Name}
		}

		if len(f.Params) != len(proto.Params) {
			return nil, &ArityError{Name: proto.Name, Want: len(f.Params), Got: len(proto.Params)}
		}
	}

	prevBlock := b.block
	b.block = f.NewBlock("entry")

	prevVals := b.values
	b.values = NewValueLookup()

	defer func() {
		b.block = prevBlock
		b.values = prevVals
	}()

	for i, param := range f.Params {
		param.SetName(proto.Params[i])
		b.values.Set(proto.Params[i], param)
	}

	ret, err := p.Lower(e.Body)
	if err != nil {
		if created {
			b.removeFunc(f)
		} else {
			f.Blocks = nil
		}

		return nil, err
	}

	b.block.NewRet(ret)
	return f, nil
}

func (b *LLVMIRBuilder) removeFunc(f *ir.Func) {
	delete(b.funcs, f.Name())

	for i, g := range b.mod.Funcs {
		if g == f {
			b.mod.Funcs = append(b.mod.Funcs[:i], b.mod.Funcs[i+1:]...)
			return
		}
	}
}

// checkPrototype rejects prototypes naming a reserved runtime function or
// the same parameter twice.
func checkPrototype(proto *Prototype) error {
	if reservedNames[proto.Name] {
		return &ReservedNameError{Name: proto.Name}
	}

	seen := make(map[string]bool, len(proto.Params))
	for _, param := range proto.Params {
		if seen[param] {
			return &DuplicateParamError{Func: proto.Name, Param: param}
		}

		seen[param] = true
	}

	return nil
}
