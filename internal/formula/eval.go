// Package formula evaluates the small per-column formulas used to derive output
// cells from a measurement-log row.
//
// A formula is plain text with positional placeholders ({1}, {2}, ...) for the
// source cells and named placeholders ({i}, {I}) for row counters. Placeholders
// are replaced in a single token-anchored pass, then the resulting text is
// parsed by a restricted arithmetic/boolean grammar and evaluated against an
// allow-listed function table. Nothing outside that table can be reached from a
// formula.
package formula

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Func is a function callable from a formula.
type Func func(args []Value) (Value, error)

// Evaluator holds the function and constant tables formulas resolve against.
// It keeps no per-call state and may be shared.
type Evaluator struct {
	funcs  map[string]Func
	consts map[string]Value
}

// Option customizes an Evaluator.
type Option func(*Evaluator)

// WithFunction registers or replaces a callable function.
func WithFunction(name string, fn Func) Option {
	return func(e *Evaluator) { e.funcs[name] = fn }
}

// WithConstant registers or replaces a named constant.
func WithConstant(name string, v Value) Option {
	return func(e *Evaluator) { e.consts[name] = v }
}

// NewEvaluator returns an evaluator with the math table and built-ins installed.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{funcs: defaultFunctions(), consts: defaultConstants()}
	for _, o := range opts {
		o(e)
	}
	return e
}

var placeholderRE = regexp.MustCompile(`\{([0-9]+|[A-Za-z_][A-Za-z0-9_]*)\}`)

// Substitute replaces every placeholder in formula. {k} becomes the normalized
// k-th cell (1-based); {name} becomes symbols[name]. Each placeholder is matched
// as a whole token, so {10} is never read as {1} followed by "0", and replaced
// text is not scanned again.
func Substitute(formula string, cells []string, symbols map[string]string) (string, error) {
	var subErr error
	out := placeholderRE.ReplaceAllStringFunc(formula, func(m string) string {
		if subErr != nil {
			return m
		}
		tok := m[1 : len(m)-1]
		if isDigit(tok[0]) {
			k, err := strconv.Atoi(tok)
			if err != nil || k < 1 || k > len(cells) {
				subErr = &SubstitutionError{
					Formula:     formula,
					Placeholder: m,
					Reason:      fmt.Sprintf("row has %d cells", len(cells)),
				}
				return m
			}
			return Normalize(cells[k-1])
		}
		v, ok := symbols[tok]
		if !ok {
			subErr = &SubstitutionError{Formula: formula, Placeholder: m, Reason: "unknown symbol"}
			return m
		}
		return v
	})
	if subErr != nil {
		return "", subErr
	}
	return out, nil
}

// Compute parses and evaluates an expression that has no placeholders left.
func (e *Evaluator) Compute(expr string) (Value, error) {
	n, err := parse(expr)
	if err != nil {
		return Value{}, err
	}
	v, err := n.eval(e)
	if err != nil {
		return Value{}, &EvalError{Expr: expr, Err: err}
	}
	return v, nil
}

// Eval substitutes placeholders in formula and returns the stringified result.
func (e *Evaluator) Eval(formula string, cells []string, symbols map[string]string) (string, error) {
	expr, err := Substitute(formula, cells, symbols)
	if err != nil {
		return "", err
	}
	v, err := e.Compute(expr)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// EvalOr is Eval with failures mapped to def.
func (e *Evaluator) EvalOr(formula string, cells []string, symbols map[string]string, def string) string {
	s, err := e.Eval(formula, cells, symbols)
	if err != nil {
		return def
	}
	return s
}

// Truthy evaluates a guard formula as the comparison (guard) == True, so only
// True or a number equal to 1 passes.
func (e *Evaluator) Truthy(formula string, cells []string, symbols map[string]string) (bool, error) {
	expr, err := Substitute(formula, cells, symbols)
	if err != nil {
		return false, err
	}
	v, err := e.Compute(expr)
	if err != nil {
		return false, err
	}
	return compare("==", v, Bool(true))
}

func (n *literalNode) eval(*Evaluator) (Value, error) { return n.v, nil }

func (n *nameNode) eval(e *Evaluator) (Value, error) {
	if v, ok := e.consts[n.name]; ok {
		return v, nil
	}
	if v, ok := e.consts[strings.TrimPrefix(n.name, "math.")]; ok {
		return v, nil
	}
	return Value{}, fmt.Errorf("name %q is not defined", n.name)
}

func (n *unaryNode) eval(e *Evaluator) (Value, error) {
	x, err := n.x.eval(e)
	if err != nil {
		return Value{}, err
	}
	if n.op == "-" {
		return negate(x), nil
	}
	if x.IsBool() {
		return Int(x.i), nil
	}
	return x, nil
}

func (n *binaryNode) eval(e *Evaluator) (Value, error) {
	l, err := n.l.eval(e)
	if err != nil {
		return Value{}, err
	}
	r, err := n.r.eval(e)
	if err != nil {
		return Value{}, err
	}
	return arith(n.op, l, r)
}

func (n *compareNode) eval(e *Evaluator) (Value, error) {
	l, err := n.operands[0].eval(e)
	if err != nil {
		return Value{}, err
	}
	for i, op := range n.ops {
		r, err := n.operands[i+1].eval(e)
		if err != nil {
			return Value{}, err
		}
		ok, err := compare(op, l, r)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Bool(false), nil
		}
		l = r
	}
	return Bool(true), nil
}

func (n *logicNode) eval(e *Evaluator) (Value, error) {
	l, err := n.l.eval(e)
	if err != nil {
		return Value{}, err
	}
	if n.op == "and" && !l.Truthy() {
		return l, nil
	}
	if n.op == "or" && l.Truthy() {
		return l, nil
	}
	return n.r.eval(e)
}

func (n *notNode) eval(e *Evaluator) (Value, error) {
	x, err := n.x.eval(e)
	if err != nil {
		return Value{}, err
	}
	return Bool(!x.Truthy()), nil
}

func (n *callNode) eval(e *Evaluator) (Value, error) {
	fn, ok := e.funcs[n.name]
	if !ok {
		fn, ok = e.funcs[strings.TrimPrefix(n.name, "math.")]
	}
	if !ok {
		return Value{}, fmt.Errorf("function %q is not defined", n.name)
	}
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(e)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	v, err := fn(args)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", n.name, err)
	}
	return v, nil
}

// Placeholders returns the placeholder tokens of formula in order of
// appearance, without braces.
func Placeholders(formula string) []string {
	var out []string
	for _, m := range placeholderRE.FindAllStringSubmatch(formula, -1) {
		out = append(out, m[1])
	}
	return out
}

// Check reports syntax errors in formula without evaluating it. Every
// placeholder is treated as a number.
func Check(formula string) error {
	_, err := parse(placeholderRE.ReplaceAllString(formula, "1"))
	return err
}
