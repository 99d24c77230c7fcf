// Package analysis summarizes the data section of a measurement log so that
// column formulas can be written against it.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/logcompose/internal/formula"
	"github.com/KaramelBytes/logcompose/internal/logio"
)

// Options controls log inspection.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Delimiter separates cells; empty splits on whitespace.
	Delimiter string
	// Encoding names the input character set; empty means UTF-8.
	Encoding string
	// HeaderEnd is the pattern of the line that closes the header; empty means no header.
	HeaderEnd string
}

// DefaultOptions returns reasonable defaults for log inspection.
func DefaultOptions() Options {
	return Options{
		MaxRows:    100000,
		SampleRows: 5,
		Delimiter:  logio.DefaultDelimiter,
		HeaderEnd:  logio.DefaultHeaderEnd,
	}
}

// Report is a markdown-friendly summary of a log's data section.
type Report struct {
	Name        string
	Rows        int
	Processed   int
	HeaderFound bool
	Header      []string
	Cols        []ColumnSummary
	Samples     [][]string
	Warnings    []string
	MinCells    int
	MaxCells    int
}

// ColumnSummary captures the inferred kind and statistics of a source column.
type ColumnSummary struct {
	Index   int // 1-based, as used in placeholders
	Name    string
	Kind    string // numeric|datetime|text|mixed|empty
	NonNull int
	Missing int
	// Numeric stats
	Numeric      int
	DecimalComma int
	Min          float64
	Max          float64
	Mean         float64
	Std          float64
	Constant     bool
	ExampleTexts []string
}

// Placeholder returns the formula placeholder for the column.
func (c ColumnSummary) Placeholder() string { return "{" + strconv.Itoa(c.Index) + "}" }

// AnalyzeLog inspects the log at path.
func AnalyzeLog(path string, opt Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return Analyze(f, filepath.Base(path), opt)
}

type colAcc struct {
	nonNil, miss int
	// numeric stats via Welford
	n        int
	mean, m2 float64
	min, max float64
	comma    int
	dtCnt    int
	txtCnt   int
	exText   []string
}

// Analyze inspects a log read from r.
func Analyze(r io.Reader, name string, opt Options) (*Report, error) {
	dec, err := logio.Decode(r, opt.Encoding)
	if err != nil {
		return nil, err
	}
	rd, err := logio.NewReader(dec, opt.Delimiter, opt.HeaderEnd)
	if err != nil {
		return nil, err
	}
	rep := &Report{Name: name, MinCells: math.MaxInt}
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}

	var cols []*colAcc
	for {
		cells, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rep.Rows++
		if rep.Processed >= maxRows {
			continue
		}
		rep.Processed++
		if len(cells) < rep.MinCells {
			rep.MinCells = len(cells)
		}
		if len(cells) > rep.MaxCells {
			rep.MaxCells = len(cells)
		}
		for len(cols) < len(cells) {
			// Columns first seen late were missing in every earlier row.
			cols = append(cols, &colAcc{miss: rep.Processed - 1, min: math.Inf(1), max: math.Inf(-1)})
		}
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, append([]string(nil), cells...))
		}
		for j, c := range cols {
			if j >= len(cells) || cells[j] == "" {
				c.miss++
				continue
			}
			v := cells[j]
			c.nonNil++
			if x, err := strconv.ParseFloat(formula.Normalize(v), 64); err == nil {
				if strings.Contains(v, ",") {
					c.comma++
				}
				c.n++
				if x < c.min {
					c.min = x
				}
				if x > c.max {
					c.max = x
				}
				delta := x - c.mean
				c.mean += delta / float64(c.n)
				c.m2 += delta * (x - c.mean)
				continue
			}
			if _, ok := parseTimeMaybe(v); ok {
				c.dtCnt++
				continue
			}
			c.txtCnt++
			if len(c.exText) < 3 {
				c.exText = append(c.exText, v)
			}
		}
	}
	if rep.Processed == 0 {
		rep.MinCells = 0
	}
	rep.HeaderFound = rd.HeaderFound()
	rep.Header = rd.Preamble()

	names := rd.CaptionNames()
	for j, c := range cols {
		cs := ColumnSummary{Index: j + 1, NonNull: c.nonNil, Missing: c.miss, Numeric: c.n, DecimalComma: c.comma}
		if j < len(names) {
			cs.Name = names[j]
		}
		cs.ExampleTexts = c.exText
		switch {
		case c.nonNil == 0:
			cs.Kind = "empty"
		case c.n == c.nonNil:
			cs.Kind = "numeric"
		case c.dtCnt == c.nonNil:
			cs.Kind = "datetime"
		case c.n == 0 && c.dtCnt == 0:
			cs.Kind = "text"
		default:
			cs.Kind = "mixed"
		}
		if c.n > 0 {
			cs.Min, cs.Max, cs.Mean = c.min, c.max, c.mean
			if c.n > 1 {
				cs.Std = math.Sqrt(c.m2 / float64(c.n-1))
			}
			cs.Constant = c.min == c.max
		}
		rep.Cols = append(rep.Cols, cs)
	}

	if opt.HeaderEnd != "" && !rep.HeaderFound {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("header end pattern %q never matched; no data rows read", opt.HeaderEnd))
	}
	if rep.Processed < rep.Rows {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}
	if rep.Processed > 0 && rep.MinCells != rep.MaxCells {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("rows have between %d and %d cells; placeholders beyond %d fail on short rows", rep.MinCells, rep.MaxCells, rep.MinCells))
	}
	var comma []string
	for _, c := range rep.Cols {
		if c.DecimalComma > 0 {
			comma = append(comma, c.Placeholder())
		}
	}
	if len(comma) > 0 {
		rep.Warnings = append(rep.Warnings, "decimal commas in "+strings.Join(comma, ", ")+" are normalized before evaluation")
	}
	return rep, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006",
	"15:04:05",
	"15:04",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Markdown renders a compact report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[LOG SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Processed > 0 && r.Processed < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", r.Rows, r.Processed))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Cols)))
	if len(r.Header) > 0 {
		b.WriteString("\n[LOG HEADER]\n")
		for _, h := range r.Header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			b.WriteString(h)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n[SOURCE COLUMNS]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		label := c.Placeholder()
		if c.Name != "" {
			label += " " + safeVal(c.Name)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", label, c.Kind, c.NonNull, missPct))
		switch {
		case c.Kind == "numeric" && c.Constant:
			b.WriteString(fmt.Sprintf("; constant %.6g", c.Min))
		case c.Kind == "numeric" || (c.Kind == "mixed" && c.Numeric > 0):
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		}
		if len(c.ExampleTexts) > 0 {
			ex := make([]string, len(c.ExampleTexts))
			for i, e := range c.ExampleTexts {
				ex[i] = safeVal(e)
			}
			b.WriteString("; e.g., " + strings.Join(ex, " / "))
		}
		b.WriteString("\n")
	}

	if len(r.Samples) > 0 && len(r.Cols) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		heads := make([]string, len(r.Cols))
		seps := make([]string, len(r.Cols))
		for i, c := range r.Cols {
			heads[i] = c.Placeholder()
			seps[i] = "---"
		}
		b.WriteString("| " + strings.Join(heads, " | ") + " |\n")
		b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
		for _, row := range r.Samples {
			vals := make([]string, len(r.Cols))
			for i := range r.Cols {
				if i < len(row) {
					vals[i] = safeVal(truncate(row[i], 40))
				}
			}
			b.WriteString("| " + strings.Join(vals, " | ") + " |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// NumericColumns returns the columns whose every value is numeric, sorted by index.
func (r *Report) NumericColumns() []ColumnSummary {
	var out []ColumnSummary
	for _, c := range r.Cols {
		if c.Kind == "numeric" {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
