// Package rule turns column specifications into evaluation rules.
package rule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Operator is the aggregation applied to a column's buffered values at the end
// of a block.
type Operator string

const (
	OpNone    Operator = ""
	OpFirst   Operator = "first"
	OpOnce    Operator = "once"
	OpMin     Operator = "min"
	OpMax     Operator = "max"
	OpStddev  Operator = "stddev"
	OpAverage Operator = "average"
	OpMedian  Operator = "median"
	OpList    Operator = "list"
	OpSum     Operator = "sum"
)

// AlwaysTrue is the guard of rules without a "when" clause.
const AlwaysTrue = "True"

// Operators lists every explicit operator keyword.
var Operators = []Operator{OpFirst, OpOnce, OpMin, OpMax, OpStddev, OpAverage, OpMedian, OpList, OpSum}

// ColumnSpec describes one output column: either a direct copy of a source
// column (Source, 1-based) or a command string. Description is free text that
// only ends up in the output header.
type ColumnSpec struct {
	Source      int    `yaml:"source,omitempty" mapstructure:"source"`
	Command     string `yaml:"command,omitempty" mapstructure:"command"`
	Description string `yaml:"desc,omitempty" mapstructure:"desc"`
}

// FromSource returns a spec copying source column k.
func FromSource(k int, desc string) ColumnSpec { return ColumnSpec{Source: k, Description: desc} }

// FromCommand returns a spec evaluating command.
func FromCommand(command, desc string) ColumnSpec {
	return ColumnSpec{Command: command, Description: desc}
}

// IsCopy reports whether the spec is a direct column copy.
func (s ColumnSpec) IsCopy() bool { return s.Command == "" && s.Source != 0 }

// String renders the spec the way it is written on the command line.
func (s ColumnSpec) String() string {
	if s.IsCopy() {
		return strconv.Itoa(s.Source)
	}
	return s.Command
}

// Rule is the parsed, immutable form of a ColumnSpec.
type Rule struct {
	Operator   Operator
	Explicit   bool // operator keyword was written in the command
	Expression string
	Guard      string
	Source     int // non-zero for direct copies
}

// IsCopy reports whether the rule copies a source cell without evaluation.
func (r Rule) IsCopy() bool { return r.Source > 0 }

// Issue is a configuration warning for one column (0-based).
type Issue struct {
	Column  int
	Message string
}

func (i Issue) String() string { return fmt.Sprintf("column %d: %s", i.Column+1, i.Message) }

var commandRE = regexp.MustCompile(`^\s*(?:(first|once|min|max|stddev|average|median|list|sum)\s+)?(.*?)(?:\s+when\s+(.*?))?\s*$`)

// Parse derives a Rule from spec. It never fails: a spec that cannot be read
// as written degrades to an expression-only rule and the returned messages
// describe what was wrong.
func Parse(spec ColumnSpec) (Rule, []string) {
	if spec.Command == "" {
		if spec.Source < 1 {
			return Rule{Expression: "", Guard: AlwaysTrue}, []string{
				fmt.Sprintf("invalid source column %d, columns are numbered from 1", spec.Source),
			}
		}
		return copyRule(spec.Source), nil
	}
	return ParseCommand(spec.Command)
}

func copyRule(k int) Rule {
	return Rule{Expression: fmt.Sprintf("{%d}", k), Guard: AlwaysTrue, Source: k}
}

// ParseCommand parses "[operator ]expression[ when guard]". Keywords are case
// sensitive; a "when" inside the expression must be surrounded by whitespace
// to start the guard.
func ParseCommand(command string) (Rule, []string) {
	m := commandRE.FindStringSubmatchIndex(command)
	if m == nil {
		// "." does not cross newlines; keep the text as a plain expression.
		return Rule{Expression: strings.TrimSpace(command), Guard: AlwaysTrue}, []string{
			fmt.Sprintf("command %q could not be parsed, using it as a plain expression", command),
		}
	}
	group := func(n int) string {
		if m[2*n] < 0 {
			return ""
		}
		return command[m[2*n]:m[2*n+1]]
	}
	op := group(1)
	r := Rule{
		Operator:   Operator(op),
		Explicit:   op != "",
		Expression: strings.TrimSpace(group(2)),
		Guard:      strings.TrimSpace(group(3)),
	}
	var warns []string
	if r.Guard == "" {
		if m[6] >= 0 {
			warns = append(warns, `empty guard after "when", the rule always applies`)
		}
		r.Guard = AlwaysTrue
	}
	if r.Expression == "" {
		warns = append(warns, "empty expression, the column will hold the sentinel")
	}
	return r, warns
}

// ParseAll parses every spec and collects the issues by column.
func ParseAll(specs []ColumnSpec) ([]Rule, []Issue) {
	rules := make([]Rule, 0, len(specs))
	var issues []Issue
	for i, s := range specs {
		r, warns := Parse(s)
		rules = append(rules, r)
		for _, w := range warns {
			issues = append(issues, Issue{Column: i, Message: w})
		}
	}
	return rules, issues
}

// ParseFlag reads a command-line column argument of the form "spec" or
// "spec::description". A bare positive integer is a direct copy.
func ParseFlag(arg string) ColumnSpec {
	spec, desc := arg, ""
	if i := strings.Index(arg, "::"); i >= 0 {
		spec, desc = arg[:i], strings.TrimSpace(arg[i+2:])
	}
	trimmed := strings.TrimSpace(spec)
	if k, err := strconv.Atoi(trimmed); err == nil && k > 0 {
		return FromSource(k, desc)
	}
	return FromCommand(spec, desc)
}
