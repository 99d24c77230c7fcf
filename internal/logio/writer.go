package logio

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/logcompose/internal/rule"
)

// Layout holds the markers of the output format.
type Layout struct {
	HeaderStart   string
	CommentPrefix string
	DataStart     string
	Delimiter     string
}

// DefaultLayout is the format read by the downstream plotting tools.
var DefaultLayout = Layout{
	HeaderStart:   "# [header]",
	CommentPrefix: "# ",
	DataStart:     "# [data]",
	Delimiter:     "\t",
}

// Writer emits the output header and data rows.
type Writer struct {
	w      *bufio.Writer
	layout Layout
	rows   int
}

// NewWriter wraps w. The caller must call Flush.
func NewWriter(w io.Writer, layout Layout) *Writer {
	return &Writer{w: bufio.NewWriter(w), layout: layout}
}

// WriteHeader describes the source file and every output column.
func (w *Writer) WriteHeader(source string, blockLength int, specs []rule.ColumnSpec) error {
	l := w.layout
	lines := []string{
		l.HeaderStart,
		fmt.Sprintf("%ssource : \"%s\"", l.CommentPrefix, filepath.Base(source)),
	}
	if blockLength > 1 {
		lines = append(lines, fmt.Sprintf("%sblock length : %d", l.CommentPrefix, blockLength))
	}
	for k, s := range specs {
		lines = append(lines, l.CommentPrefix+describe(k+1, s))
	}
	lines = append(lines, l.DataStart)
	for _, line := range lines {
		if _, err := w.w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	return nil
}

func describe(k int, s rule.ColumnSpec) string {
	var b strings.Builder
	if s.IsCopy() {
		fmt.Fprintf(&b, "column %d : original column %d", k, s.Source)
	} else {
		fmt.Fprintf(&b, "column %d : expression %s", k, quote(s.Command))
	}
	if s.Description != "" {
		fmt.Fprintf(&b, " (%s)", s.Description)
	}
	return b.String()
}

// quote renders s as a single-quoted literal, switching to double quotes when
// s contains a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// WriteRow writes one data row.
func (w *Writer) WriteRow(cells []string) error {
	if _, err := w.w.WriteString(strings.Join(cells, w.layout.Delimiter) + "\n"); err != nil {
		return fmt.Errorf("write row %d: %w", w.rows+1, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int { return w.rows }

// Flush writes buffered output.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
