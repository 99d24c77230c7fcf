package job

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/KaramelBytes/logcompose/internal/formula"
	"github.com/KaramelBytes/logcompose/internal/logio"
	"github.com/KaramelBytes/logcompose/internal/rule"
)

// IssueSeverity represents the severity of a job issue.
type IssueSeverity string

const (
	// SeverityError marks a setting or column that cannot work as written.
	SeverityError IssueSeverity = "error"
	// SeverityWarning marks a job that runs but probably not as intended.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the job
// file, e.g. "columns[2].command".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the job statically. It never evaluates formulas against
// data; only their syntax and placeholders are inspected.
func (j *Job) Validate() []Issue {
	var issues []Issue
	if strings.TrimSpace(j.Name) == "" {
		issues = append(issues, Issue{SeverityWarning, "name", "name is empty"})
	}
	if j.BlockLength < 0 {
		issues = append(issues, Issue{SeverityError, "block_length", fmt.Sprintf("block length %d must be positive", j.BlockLength)})
	}
	if j.HeaderEnd != "" {
		if _, err := regexp.Compile(j.HeaderEnd); err != nil {
			issues = append(issues, Issue{SeverityError, "header_end_pattern", err.Error()})
		}
	}
	if err := logio.CheckEncoding(j.Encoding); err != nil {
		issues = append(issues, Issue{SeverityError, "input_encoding", err.Error()})
	}
	if len(j.Columns) == 0 {
		issues = append(issues, Issue{SeverityError, "columns", "at least one column is required"})
	}
	for i, c := range j.Columns {
		issues = append(issues, validateColumn(i, c, j.BlockLength)...)
	}
	return issues
}

func validateColumn(i int, c rule.ColumnSpec, blockLength int) []Issue {
	path := fmt.Sprintf("columns[%d]", i)
	switch {
	case c.Command != "" && c.Source != 0:
		return []Issue{{SeverityError, path, "set either source or command, not both"}}
	case c.Command == "" && c.Source == 0:
		return []Issue{{SeverityError, path, "source or command is required"}}
	case c.Command == "" && c.Source < 0:
		return []Issue{{SeverityError, path + ".source", "source columns are numbered from 1"}}
	case c.Command == "":
		if blockLength > 1 {
			return []Issue{{SeverityWarning, path, "direct copy keeps only the first value of each block"}}
		}
		return nil
	}

	var issues []Issue
	path += ".command"
	r, warns := rule.ParseCommand(c.Command)
	for _, w := range warns {
		issues = append(issues, Issue{SeverityWarning, path, w})
	}
	if blockLength > 1 && !r.Explicit {
		issues = append(issues, Issue{SeverityWarning, path, "no operator given, each block keeps its first value"})
	}
	for _, part := range []struct{ name, text string }{{"expression", r.Expression}, {"guard", r.Guard}} {
		if part.text == "" {
			continue
		}
		for _, p := range formula.Placeholders(part.text) {
			if p[0] >= '0' && p[0] <= '9' {
				if strings.TrimLeft(p, "0") == "" {
					issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("placeholder {%s} in %s: columns are numbered from 1", p, part.name)})
				}
				continue
			}
			if p != "i" && p != "I" {
				issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("unknown placeholder {%s} in %s", p, part.name)})
			}
		}
		if err := formula.Check(part.text); err != nil {
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("%s: %v", part.name, err)})
		}
	}
	return issues
}
