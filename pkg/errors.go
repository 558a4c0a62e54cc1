package kscope

import "fmt"

// CompileError is a problem with the program being compiled, as opposed to a
// failure of the compiler itself.
type CompileError interface {
	error
	compileError()
}

func (*LexError) compileError()                {}
func (*ParseError) compileError()              {}
func (*UndefinedError) compileError()          {}
func (*ArityError) compileError()              {}
func (*UndefinedOperationError) compileError() {}
func (*RedefinitionError) compileError()       {}
func (*DuplicateParamError) compileError()     {}
func (*ReservedNameError) compileError()       {}

// LexError reports a token the lexer could not scan, such as a number with
// two decimal points.
type LexError struct {
	Loc  Location
	Text string
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s %s: '%s'", &e.Loc, e.Msg, e.Text)
}

type ParseError struct {
	Loc Location
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %s", &e.Loc, e.Msg)
}

const (
	UndefinedVariable = "variable"
	UndefinedFunction = "function"
)

type UndefinedError struct {
	Kind string
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined %s: %s", e.Kind, e.Name)
}

type ArityError struct {
	Name string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("incorrect number of arguments for '%s': want %d, got %d", e.Name, e.Want, e.Got)
}

type UndefinedOperationError struct {
	Op BinaryOp
}

func (e *UndefinedOperationError) Error() string {
	return fmt.Sprintf("undefined operation: '%s'", e.Op)
}

type RedefinitionError struct {
	Name string
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("function cannot be redefined: %s", e.Name)
}

type DuplicateParamError struct {
	Func  string
	Param string
}

func (e *DuplicateParamError) Error() string {
	return fmt.Sprintf("duplicate parameter '%s' in '%s'", e.Param, e.Func)
}

type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("name is reserved by the runtime: %s", e.Name)
}
