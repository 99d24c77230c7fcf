package formula

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain is returned for arguments outside a function's domain, e.g. sqrt(-1).
	ErrDomain = errors.New("math domain error")
	// ErrZeroDivision is returned for division or modulo by zero.
	ErrZeroDivision = errors.New("division by zero")
	// ErrRange is returned when a result overflows.
	ErrRange = errors.New("math range error")
)

// SyntaxError reports an expression that does not match the grammar.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Expr, e.Msg)
}

// EvalError reports a failure while evaluating a well-formed expression.
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// SubstitutionError reports a placeholder that cannot be resolved.
type SubstitutionError struct {
	Formula     string
	Placeholder string
	Reason      string
}

func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("placeholder %s in %q: %s", e.Placeholder, e.Formula, e.Reason)
}
