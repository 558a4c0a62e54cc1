package kscope

import (
	"fmt"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
)

type EmitMode int

const (
	EmitIR EmitMode = iota
	EmitAST
)

type Option func(c *Compiler)

// WithOutput sets where lowered constructs are written.
func WithOutput(w io.Writer) Option {
	return func(c *Compiler) {
		c.out = w
	}
}

func WithDiagnostics(sink DiagnosticSink) Option {
	return func(c *Compiler) {
		c.diag = sink
	}
}

func WithEmitMode(mode EmitMode) Option {
	return func(c *Compiler) {
		c.emit = mode
	}
}

// Compiler is a long lived session: every input it is fed is parsed from
// scratch, while declarations and the LLVM module accumulate across inputs.
type Compiler struct {
	parser   *Parser
	analyzer *ContextAnalyzer
	builder  *LLVMIRBuilder
	diag     DiagnosticSink
	out      io.Writer
	emit     EmitMode
}

func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		analyzer: NewContextAnalyser(),
		builder:  NewLLVMIRBuilder(),
		diag:     DiscardSink,
		out:      io.Discard,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.parser = NewParser(NewLexer(""), c.diag)
	return c
}

func (c *Compiler) Compile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "reading %s", filename)
	}

	c.Eval(string(data))
	return nil
}

func (c *Compiler) CompileFromReader(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return errors.Wrap(err, "reading source")
	}

	c.Eval(string(data))
	return nil
}

// Eval parses and lowers every top-level construct in src.
func (c *Compiler) Eval(src string) {
	c.parser.SetInput(src)
	c.parser.Parse(c)
}

// Module returns the LLVM module built so far.
func (c *Compiler) Module() *ir.Module {
	return c.builder.Module()
}

func (c *Compiler) HandleDefinition(f *FuncDecl) {
	c.lower(f, "parsed a function definition")
}

func (c *Compiler) HandleExtern(p *Prototype) {
	c.lower(p, "parsed an extern")
}

func (c *Compiler) HandleTopLevelExpr(f *FuncDecl) {
	c.lower(f, "parsed a top-level expression")
}

// lower checks n and then runs the emitting backend over it, each in a
// pass of its own.
func (c *Compiler) lower(n Node, what string) {
	if _, err := NewPass[Type](c.analyzer).Lower(n); err != nil {
		c.diag.Report(severityOf(err), err.Error())
		return
	}

	text, err := c.emitNode(n)
	if err != nil {
		c.diag.Report(severityOf(err), err.Error())
		return
	}

	c.diag.Report(SeverityInfo, what)
	fmt.Fprintln(c.out, text)
}

// severityOf reports mistakes in the program as errors and anything else,
// such as an aborted pass, as fatal.
func severityOf(err error) Severity {
	var ce CompileError
	if errors.As(err, &ce) {
		return SeverityError
	}

	return SeverityFatal
}

func (c *Compiler) emitNode(n Node) (string, error) {
	if c.emit == EmitAST {
		if proto, ok := n.(*Prototype); ok {
			return SprintExtern(proto), nil
		}

		return Sprint(n), nil
	}

	v, err := NewPass[value.Value](c.builder).Lower(n)
	if err != nil {
		return "", err
	}

	f, ok := v.(*ir.Func)
	if !ok {
		return "", errors.Errorf("expected a function, got %T", v)
	}

	if err := f.AssignIDs(); err != nil {
		return "", errors.Wrapf(err, "numbering %s", f.Name())
	}

	return f.LLString(), nil
}
