package kscope

import (
	"strconv"
	"strings"
)

// Printer renders trees as S-expressions, e.g. (+ 1 (* 2 3)).
type Printer struct{}

// Sprint renders n with a fresh pass. It returns the empty string for trees
// the printer cannot lower.
func Sprint(n Node) string {
	s, err := NewPass[string](Printer{}).Lower(n)
	if err != nil {
		return ""
	}

	return s
}

// SprintExtern renders an extern declaration.
func SprintExtern(proto *Prototype) string {
	return "(extern " + Sprint(proto) + ")"
}

func (Printer) VisitLiteral(_ *Pass[string], e *LiteralExpr) (string, error) {
	return strconv.FormatFloat(e.Value, 'g', -1, 64), nil
}

func (Printer) VisitIdentifier(_ *Pass[string], e *Identifier) (string, error) {
	return e.Name, nil
}

func (Printer) VisitBinary(p *Pass[string], e *BinaryExpr) (string, error) {
	op1, err := p.Lower(e.Op1)
	if err != nil {
		return "", err
	}

	op2, err := p.Lower(e.Op2)
	if err != nil {
		return "", err
	}

	return "(" + e.Operation.String() + " " + op1 + " " + op2 + ")", nil
}

func (Printer) VisitCall(p *Pass[string], e *FuncCall) (string, error) {
	var str strings.Builder
	str.WriteString("(call ")
	str.WriteString(e.Name)

	for _, arg := range e.Args {
		s, err := p.Lower(arg)
		if err != nil {
			return "", err
		}

		str.WriteString(" ")
		str.WriteString(s)
	}
	str.WriteString(")")

	return str.String(), nil
}

func (Printer) VisitPrototype(_ *Pass[string], e *Prototype) (string, error) {
	return e.Name + "(" + strings.Join(e.Params, " ") + ")", nil
}

// VisitFunction prints anonymous wrappers as their bare body.
func (Printer) VisitFunction(p *Pass[string], e *FuncDecl) (string, error) {
	body, err := p.Lower(e.Body)
	if err != nil {
		return "", err
	}

	if e.Proto.IsAnonymous() {
		return body, nil
	}

	proto, err := p.Lower(e.Proto)
	if err != nil {
		return "", err
	}

	return "(def " + proto + " " + body + ")", nil
}
