package kscope

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

const (
	runtimePrintf  = "printf"
	runtimePutchar = "putchar"
)

// reservedNames are C functions the builtins call. They live in the module
// with C signatures, so programs can neither declare nor define them.
var reservedNames = map[string]bool{
	runtimePrintf:  true,
	runtimePutchar: true,
}

func defineBuiltins(b *LLVMIRBuilder) {
	defineBuiltinFunc(b, "printd", builtinPrintd)
	defineBuiltinFunc(b, "putchard", builtinPutchard)
}

type funcDefinition = func(mod *ir.Module) *ir.Func

func defineBuiltinFunc(b *LLVMIRBuilder, name string, definition funcDefinition) {
	f := definition(b.mod)
	f.SetName(name)
	b.funcs[name] = f
}

// builtinPrintd prints its argument followed by a newline and returns 0.
func builtinPrintd(mod *ir.Module) *ir.Func {
	f := mod.NewFunc("", types.Double, ir.NewParam("x", types.Double))
	b := f.NewBlock("entry")

	printf := mod.NewFunc(runtimePrintf, types.I32, ir.NewParam("format", types.I8Ptr))
	printf.Sig.Variadic = true

	zero := constant.NewInt(types.I32, 0)

	format := constant.NewCharArrayFromString("%f\n\x00")
	formatGlob := mod.NewGlobalDef("._printd_fmt", format)
	formatGlob.Immutable = true

	fmtAddr := constant.NewGetElementPtr(format.Typ, formatGlob, zero, zero)

	b.NewCall(printf, fmtAddr, f.Params[0])
	b.NewRet(constant.NewFloat(types.Double, 0))

	return f
}

// builtinPutchard writes its argument as a single byte and returns 0.
func builtinPutchard(mod *ir.Module) *ir.Func {
	f := mod.NewFunc("", types.Double, ir.NewParam("c", types.Double))
	b := f.NewBlock("entry")

	putchar := mod.NewFunc(runtimePutchar, types.I32, ir.NewParam("c", types.I32))

	c := b.NewFPToUI(f.Params[0], types.I32)
	b.NewCall(putchar, c)
	b.NewRet(constant.NewFloat(types.Double, 0))

	return f
}
