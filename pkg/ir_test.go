package kscope

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/stretchr/testify/assert"
)

// parseOne parses src, which must hold exactly one top-level construct.
func parseOne(t *testing.T, src string) Node {
	t.Helper()

	got := &NodeRecorder{}
	diags := &DiagnosticRecorder{}
	NewParser(NewLexer(src), diags).Parse(got)

	assert.Empty(t, diags.errors(), src)
	if !assert.Len(t, got.nodes, 1, src) {
		t.FailNow()
	}

	return got.nodes[0]
}

func lowerIR(t *testing.T, b *LLVMIRBuilder, src string) (*ir.Func, error) {
	t.Helper()

	v, err := NewPass[value.Value](b).Lower(parseOne(t, src))
	if err != nil {
		return nil, err
	}

	f, ok := v.(*ir.Func)
	assert.True(t, ok, "expected a function, got %T", v)

	return f, nil
}

func moduleHas(b *LLVMIRBuilder, name string) bool {
	for _, f := range b.Module().Funcs {
		if f.Name() == name {
			return true
		}
	}

	return false
}

func TestValueLookup(t *testing.T) {
	vals := NewValueLookup()

	val1 := constant.NewFloat(types.Double, 1)
	val2 := constant.NewFloat(types.Double, 2)

	vals.Set("id1", val1)
	vals.Set("id2", val2)

	got, ok := vals.Get("id1")
	assert.True(t, ok)
	assert.Equal(t, val1, got)

	got, ok = vals.Get("id2")
	assert.True(t, ok)
	assert.Equal(t, val2, got)

	_, ok = vals.Get("id3")
	assert.False(t, ok)
}

func TestLLVMIRBuilderFunction(t *testing.T) {
	b := NewLLVMIRBuilder()

	f, err := lowerIR(t, b, "def f(a b) a + b * 2")
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, "f", f.Name())
	assert.Equal(t, types.Double, f.Sig.RetType)
	assert.Len(t, f.Params, 2)
	assert.Equal(t, "a", f.Params[0].Name())
	assert.Equal(t, "b", f.Params[1].Name())

	if assert.Len(t, f.Blocks, 1) {
		block := f.Blocks[0]
		if assert.Len(t, block.Insts, 2) {
			mul, ok := block.Insts[0].(*ir.InstFMul)
			assert.True(t, ok)
			add, ok := block.Insts[1].(*ir.InstFAdd)
			assert.True(t, ok)

			if mul != nil && add != nil {
				assert.Equal(t, f.Params[1], mul.X)
				assert.Equal(t, f.Params[0], add.X)
				assert.Equal(t, mul, add.Y)
			}
		}

		ret, ok := block.Term.(*ir.TermRet)
		if assert.True(t, ok) {
			assert.Equal(t, block.Insts[len(block.Insts)-1], ret.X)
		}
	}

	got, ok := b.Func("f")
	assert.True(t, ok)
	assert.Same(t, f, got)
}

func TestLLVMIRBuilderComparison(t *testing.T) {
	cases := []struct {
		data string
		pred enum.FPred
	}{
		{"def lt(a b) a < b", enum.FPredULT},
		{"def gt(a b) a > b", enum.FPredUGT},
	}

	for _, c := range cases {
		b := NewLLVMIRBuilder()

		f, err := lowerIR(t, b, c.data)
		if !assert.NoError(t, err, c.data) {
			continue
		}

		insts := f.Blocks[0].Insts
		if !assert.Len(t, insts, 2, c.data) {
			continue
		}

		cmp, ok := insts[0].(*ir.InstFCmp)
		if assert.True(t, ok, c.data) {
			assert.Equal(t, c.pred, cmp.Pred, c.data)
		}

		conv, ok := insts[1].(*ir.InstUIToFP)
		if assert.True(t, ok, c.data) {
			assert.Equal(t, types.Double, conv.To)
		}
	}
}

func TestLLVMIRBuilderCalls(t *testing.T) {
	b := NewLLVMIRBuilder()

	proto, err := lowerIR(t, b, "extern f(a b c)")
	assert.NoError(t, err)
	assert.Empty(t, proto.Blocks)

	g, err := lowerIR(t, b, "def g(x) f(x, x, 1)")
	if assert.NoError(t, err) {
		call, ok := g.Blocks[0].Insts[0].(*ir.InstCall)
		if assert.True(t, ok) {
			assert.Equal(t, proto, call.Callee)
			assert.Len(t, call.Args, 3)
		}
	}

	_, err = lowerIR(t, b, "f(1, 2)")
	assert.Equal(t, &ArityError{Name: "f", Want: 3, Got: 2}, err)

	_, err = lowerIR(t, b, "nope(1)")
	assert.Equal(t, &UndefinedError{Kind: UndefinedFunction, Name: "nope"}, err)

	// Failed top-level expressions leave nothing behind
	assert.False(t, moduleHas(b, "__anon_expr0"))
	assert.False(t, moduleHas(b, "__anon_expr1"))
}

func TestLLVMIRBuilderUnknownVariable(t *testing.T) {
	b := NewLLVMIRBuilder()

	_, err := lowerIR(t, b, "def h(x) x + y")
	assert.Equal(t, &UndefinedError{Kind: UndefinedVariable, Name: "y"}, err)

	_, ok := b.Func("h")
	assert.False(t, ok)
	assert.False(t, moduleHas(b, "h"))

	// The name is free again
	_, err = lowerIR(t, b, "def h(x) x")
	assert.NoError(t, err)
}

func TestLLVMIRBuilderExternThenDefinition(t *testing.T) {
	b := NewLLVMIRBuilder()

	decl, err := lowerIR(t, b, "extern k(a)")
	assert.NoError(t, err)

	again, err := lowerIR(t, b, "extern k(z)")
	assert.NoError(t, err)
	assert.Same(t, decl, again)

	_, err = lowerIR(t, b, "extern k(a b)")
	assert.Equal(t, &ArityError{Name: "k", Want: 1, Got: 2}, err)

	def, err := lowerIR(t, b, "def k(b) b * 2")
	if assert.NoError(t, err) {
		assert.Same(t, decl, def)
		assert.Equal(t, "b", def.Params[0].Name())
		assert.Len(t, def.Blocks, 1)
	}

	_, err = lowerIR(t, b, "def k(c) c")
	assert.Equal(t, &RedefinitionError{Name: "k"}, err)
	assert.Len(t, decl.Blocks, 1)
}

func TestLLVMIRBuilderFailedDefinitionKeepsDeclaration(t *testing.T) {
	b := NewLLVMIRBuilder()

	decl, err := lowerIR(t, b, "extern m(a)")
	assert.NoError(t, err)

	_, err = lowerIR(t, b, "def m(a) zz")
	assert.Error(t, err)

	got, ok := b.Func("m")
	assert.True(t, ok)
	assert.Same(t, decl, got)
	assert.Empty(t, got.Blocks)
}

func TestLLVMIRBuilderDuplicateParams(t *testing.T) {
	b := NewLLVMIRBuilder()

	_, err := lowerIR(t, b, "def d(x x) x")
	assert.Equal(t, &DuplicateParamError{Func: "d", Param: "x"}, err)
	assert.False(t, moduleHas(b, "d"))
}

func TestLLVMIRBuilderAnonymousFunctions(t *testing.T) {
	b := NewLLVMIRBuilder()

	f0, err := lowerIR(t, b, "1 + 2")
	assert.NoError(t, err)
	f1, err := lowerIR(t, b, "3")
	assert.NoError(t, err)

	assert.Equal(t, "__anon_expr0", f0.Name())
	assert.Equal(t, "__anon_expr1", f1.Name())
	assert.Empty(t, f1.Params)
}

func TestLLVMIRBuilderRecursion(t *testing.T) {
	b := NewLLVMIRBuilder()

	f, err := lowerIR(t, b, "def fib(x) fib(x - 1) + fib(x - 2)")
	if assert.NoError(t, err) {
		call, ok := f.Blocks[0].Insts[1].(*ir.InstCall)
		if assert.True(t, ok) {
			assert.Equal(t, f, call.Callee)
		}
	}
}

func TestLLVMIRBuilderBuiltins(t *testing.T) {
	b := NewLLVMIRBuilder()

	printd, ok := b.Func("printd")
	assert.True(t, ok)
	assert.NotEmpty(t, printd.Blocks)

	_, ok = b.Func("putchard")
	assert.True(t, ok)

	// Helpers used by the builtins are not callable from programs
	_, ok = b.Func("printf")
	assert.False(t, ok)

	_, err := lowerIR(t, b, "printd(1) + putchard(65)")
	assert.NoError(t, err)

	decl, err := lowerIR(t, b, "extern printd(v)")
	assert.NoError(t, err)
	assert.Same(t, printd, decl)

	_, err = lowerIR(t, b, "def printd(x) x")
	assert.Equal(t, &RedefinitionError{Name: "printd"}, err)
}

func TestLLVMIRBuilderReservedNames(t *testing.T) {
	b := NewLLVMIRBuilder()

	cases := []struct {
		data   string
		expect error
	}{
		{"extern putchar(c)", &ReservedNameError{Name: "putchar"}},
		{"def printf(x) x", &ReservedNameError{Name: "printf"}},
		{"def putchar(c) c", &ReservedNameError{Name: "putchar"}},
		{"putchar(65)", &UndefinedError{Kind: UndefinedFunction, Name: "putchar"}},
	}

	for _, c := range cases {
		_, err := lowerIR(t, b, c.data)
		assert.Equal(t, c.expect, err, c.data)
	}

	count := map[string]int{}
	for _, f := range b.Module().Funcs {
		count[f.Name()]++
	}

	assert.Equal(t, 1, count["printf"])
	assert.Equal(t, 1, count["putchar"])
}

func TestLLVMIRBuilderOutsideFunction(t *testing.T) {
	b := NewLLVMIRBuilder()
	pass := NewPass[value.Value](b)

	v, err := pass.Lower(num(1))
	assert.NoError(t, err)
	assert.Equal(t, constant.NewFloat(types.Double, 1), v)

	_, err = pass.Lower(&BinaryExpr{Operation: BinaryAddition, Op1: num(1), Op2: num(2)})
	assert.Error(t, err)

	_, err = pass.Lower(&BinaryExpr{Operation: '%', Op1: num(1), Op2: num(2)})
	assert.Error(t, err)
}

func TestLLVMIRBuilderUnsupportedOperator(t *testing.T) {
	b := NewLLVMIRBuilder()

	tree := &FuncDecl{
		Proto: &Prototype{Name: "mod", Params: []string{"a"}},
		Body:  &BinaryExpr{Operation: '%', Op1: &Identifier{"a"}, Op2: num(2)},
	}

	_, err := NewPass[value.Value](b).Lower(tree)
	assert.Equal(t, &UndefinedOperationError{Op: '%'}, err)
	assert.False(t, moduleHas(b, "mod"))
}
