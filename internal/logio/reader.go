// Package logio reads the data section of measurement logs and writes the
// composed output format.
package logio

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// DefaultHeaderEnd matches the column caption line that closes a log header.
const DefaultHeaderEnd = `--Nr\.--.*`

// DefaultDelimiter separates cells in source logs.
const DefaultDelimiter = "|"

const maxLine = 1 << 20

// Reader yields the trimmed cells of each data line. Lines up to and
// including the first header-end match are skipped; blank lines are ignored.
type Reader struct {
	sc        *bufio.Scanner
	delimiter string
	headerEnd *regexp.Regexp
	inData    bool
	line      int
	caption   string
	preamble  []string
}

const maxPreamble = 200

// NewReader wraps r. An empty headerEnd means the input has no header; an
// empty delimiter splits on runs of whitespace.
func NewReader(r io.Reader, delimiter, headerEnd string) (*Reader, error) {
	rd := &Reader{
		sc:        bufio.NewScanner(r),
		delimiter: delimiter,
		inData:    headerEnd == "",
	}
	rd.sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	if headerEnd != "" {
		re, err := regexp.Compile(`^(?:` + headerEnd + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid header end pattern %q: %w", headerEnd, err)
		}
		rd.headerEnd = re
	}
	return rd, nil
}

// Next returns the cells of the next data line, or io.EOF.
func (r *Reader) Next() ([]string, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimRight(r.sc.Text(), "\r")
		if !r.inData {
			if r.headerEnd.MatchString(text) {
				r.inData = true
				r.caption = text
			} else if len(r.preamble) < maxPreamble {
				r.preamble = append(r.preamble, text)
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		return r.split(text), nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

func (r *Reader) split(text string) []string {
	if r.delimiter == "" {
		return strings.Fields(text)
	}
	cells := strings.Split(text, r.delimiter)
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// HeaderFound reports whether the data section has started.
func (r *Reader) HeaderFound() bool { return r.inData && r.headerEnd != nil }

// Caption returns the line that matched the header-end pattern.
func (r *Reader) Caption() string { return r.caption }

// Preamble returns the header lines skipped before the caption.
func (r *Reader) Preamble() []string { return r.preamble }

// CaptionNames splits the caption into column names, dropping the dashes
// that frame each name ("--Nr.--" becomes "Nr.").
func (r *Reader) CaptionNames() []string {
	if r.caption == "" {
		return nil
	}
	names := r.split(r.caption)
	for i, n := range names {
		names[i] = strings.TrimSpace(strings.Trim(n, "-"))
	}
	return names
}

// Line returns the number of the last line read (1-based).
func (r *Reader) Line() int { return r.line }
