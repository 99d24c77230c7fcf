// Package block applies column rules to a stream of data rows and folds
// consecutive rows into one output row per block.
package block

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/KaramelBytes/logcompose/internal/formula"
	"github.com/KaramelBytes/logcompose/internal/logger"
	"github.com/KaramelBytes/logcompose/internal/rule"
)

// DefaultSentinel is written for cells that could not be computed.
const DefaultSentinel = "NaN"

// Kind classifies a diagnostic.
type Kind string

const (
	KindConfig     Kind = "config"
	KindGuard      Kind = "guard"
	KindExpression Kind = "expression"
	KindReduce     Kind = "reduce"
)

// Diagnostic aggregates every occurrence of one kind of problem in one column.
// Row is the absolute data row (0-based) of the first occurrence, or -1 for
// configuration problems.
type Diagnostic struct {
	Kind    Kind
	Column  int
	Count   int
	Row     int
	Message string
}

func (d Diagnostic) String() string {
	where := fmt.Sprintf("column %d", d.Column+1)
	if d.Row >= 0 {
		where += fmt.Sprintf(", first at data row %d", d.Row+1)
	}
	if d.Count > 1 {
		return fmt.Sprintf("%s (%s, %d times): %s", d.Kind, where, d.Count, d.Message)
	}
	return fmt.Sprintf("%s (%s): %s", d.Kind, where, d.Message)
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithBlockLength sets the number of rows folded into one output row.
// Values below 1 are clamped to 1.
func WithBlockLength(n int) Option { return func(a *Accumulator) { a.blockLength = n } }

// WithSentinel sets the text written for failed cells.
func WithSentinel(s string) Option { return func(a *Accumulator) { a.sentinel = s } }

// WithLogger routes diagnostics to log at debug level.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *Accumulator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithEvaluator replaces the formula evaluator, e.g. to add functions.
func WithEvaluator(ev *formula.Evaluator) Option {
	return func(a *Accumulator) {
		if ev != nil {
			a.ev = ev
		}
	}
}

type diagKey struct {
	kind   Kind
	column int
}

// Accumulator buffers per-column values for the current block. It is not safe
// for concurrent use.
type Accumulator struct {
	rules       []rule.Rule
	blockLength int
	sentinel    string
	ev          *formula.Evaluator
	log         *zap.SugaredLogger

	buffers [][]string
	rel     int // rows seen in the current block
	abs     int // data rows seen in total
	blocks  int

	diags []Diagnostic
	index map[diagKey]int
}

// New returns an accumulator for rules. Configuration problems, such as
// columns without an operator while blocks span several rows, are recorded as
// diagnostics right away.
func New(rules []rule.Rule, opts ...Option) *Accumulator {
	a := &Accumulator{
		rules:       rules,
		blockLength: 1,
		sentinel:    DefaultSentinel,
		ev:          formula.NewEvaluator(),
		log:         zap.NewNop().Sugar(),
		buffers:     make([][]string, len(rules)),
		index:       make(map[diagKey]int),
	}
	for _, o := range opts {
		o(a)
	}
	if a.blockLength < 1 {
		a.record(KindConfig, 0, -1, fmt.Sprintf("block length %d is invalid, using 1", a.blockLength))
		a.blockLength = 1
	}
	if a.blockLength > 1 {
		for j, r := range a.rules {
			if !r.Explicit {
				a.record(KindConfig, j, -1, "no operator given, each block keeps its first value")
			}
		}
	}
	return a
}

// BlockLength returns the effective block length.
func (a *Accumulator) BlockLength() int { return a.blockLength }

// Blocks returns the number of output rows emitted so far.
func (a *Accumulator) Blocks() int { return a.blocks }

// Rows returns the number of data rows processed so far.
func (a *Accumulator) Rows() int { return a.abs }

// Diagnostics returns the recorded problems in order of first occurrence.
func (a *Accumulator) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(a.diags))
	copy(out, a.diags)
	return out
}

// ProcessLine applies every rule to one data row. When the row completes a
// block, the reduced output row is returned with ok set.
func (a *Accumulator) ProcessLine(cells []string) (row []string, ok bool) {
	symbols := map[string]string{
		"i": strconv.Itoa(a.rel),
		"I": strconv.Itoa(a.abs),
	}
	for j, r := range a.rules {
		if r.Guard != rule.AlwaysTrue {
			pass, err := a.ev.Truthy(r.Guard, cells, symbols)
			if err != nil {
				a.record(KindGuard, j, a.abs, err.Error())
				continue
			}
			if !pass {
				continue
			}
		}
		if r.IsCopy() {
			if r.Source > len(cells) {
				a.record(KindExpression, j, a.abs,
					fmt.Sprintf("source column %d missing, row has %d cells", r.Source, len(cells)))
				continue
			}
			a.buffers[j] = append(a.buffers[j], formula.Normalize(cells[r.Source-1]))
			continue
		}
		if r.Expression == "" {
			continue
		}
		v, err := a.ev.Eval(r.Expression, cells, symbols)
		if err != nil {
			a.record(KindExpression, j, a.abs, err.Error())
			continue
		}
		a.buffers[j] = append(a.buffers[j], v)
	}
	a.rel++
	a.abs++
	if a.rel >= a.blockLength {
		return a.flush()
	}
	return nil, false
}

// ProcessEndOfInput reduces a trailing partial block. Every block that saw at
// least one data row yields a row; columns without values get the sentinel.
func (a *Accumulator) ProcessEndOfInput() (row []string, ok bool) {
	if a.rel == 0 {
		return nil, false
	}
	return a.flush()
}

func (a *Accumulator) flush() ([]string, bool) {
	defer a.reset()
	empty := true
	for _, b := range a.buffers {
		if len(b) > 0 {
			empty = false
			break
		}
	}
	if empty {
		a.log.Debugw("block produced no values", logger.FieldRow, a.abs-a.rel, logger.FieldCount, a.rel)
	}
	row := make([]string, len(a.rules))
	for j, r := range a.rules {
		v, err := Reduce(r.Operator, a.buffers[j])
		if err != nil {
			a.record(KindReduce, j, a.abs-a.rel, err.Error())
			v = a.sentinel
		}
		row[j] = v
	}
	a.blocks++
	return row, true
}

func (a *Accumulator) reset() {
	for j := range a.buffers {
		a.buffers[j] = a.buffers[j][:0]
	}
	a.rel = 0
}

func (a *Accumulator) record(kind Kind, column, row int, msg string) {
	key := diagKey{kind: kind, column: column}
	if i, ok := a.index[key]; ok {
		a.diags[i].Count++
	} else {
		a.index[key] = len(a.diags)
		a.diags = append(a.diags, Diagnostic{Kind: kind, Column: column, Count: 1, Row: row, Message: msg})
	}
	a.log.Debugw("cell diagnostic",
		logger.FieldKind, string(kind),
		logger.FieldColumn, column+1,
		logger.FieldRow, row,
		logger.FieldError, msg,
	)
}
