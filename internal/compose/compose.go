// Package compose converts one measurement log into the composed output
// format by running its data rows through the block accumulator.
package compose

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/logcompose/internal/block"
	"github.com/KaramelBytes/logcompose/internal/logger"
	"github.com/KaramelBytes/logcompose/internal/logio"
	"github.com/KaramelBytes/logcompose/internal/rule"
	"github.com/KaramelBytes/logcompose/internal/utils"
)

// ErrNoColumns is returned when a conversion has no output columns.
var ErrNoColumns = errors.New("no output columns specified")

// Options controls one conversion.
type Options struct {
	BlockLength    int
	InputDelimiter string
	InputEncoding  string
	HeaderEnd      string
	Layout         logio.Layout
	Sentinel       string
	Logger         *zap.SugaredLogger
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		BlockLength:    1,
		InputDelimiter: logio.DefaultDelimiter,
		InputEncoding:  logio.DefaultEncoding,
		HeaderEnd:      logio.DefaultHeaderEnd,
		Layout:         logio.DefaultLayout,
		Sentinel:       block.DefaultSentinel,
	}
}

// Result summarizes a finished conversion.
type Result struct {
	Source      string
	Output      string
	InputRows   int
	OutputRows  int
	HeaderFound bool
	Issues      []rule.Issue
	Diagnostics []block.Diagnostic
}

// Convert reads inputPath and writes outputPath. The input is opened before
// the output is created, and the output only appears once everything has been
// written successfully.
func Convert(inputPath, outputPath string, columns []rule.ColumnSpec, opt Options) (*Result, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := utils.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	out, err := utils.CreateAtomic(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	defer out.Abort()

	res, err := ConvertStream(in, out, inputPath, columns, opt)
	if err != nil {
		return nil, err
	}
	if err := out.Commit(); err != nil {
		return nil, fmt.Errorf("save output: %w", err)
	}
	res.Output = outputPath
	return res, nil
}

// ConvertStream converts r into w. source is only used for the output header.
func ConvertStream(r io.Reader, w io.Writer, source string, columns []rule.ColumnSpec, opt Options) (*Result, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	log := opt.Logger
	if log == nil {
		log = logger.Named("compose")
	}
	start := time.Now()

	rules, issues := rule.ParseAll(columns)
	for _, is := range issues {
		log.Warnw("column spec", logger.FieldColumn, is.Column+1, logger.FieldError, is.Message)
	}
	opts := []block.Option{
		block.WithBlockLength(opt.BlockLength),
		block.WithLogger(log.Named("block")),
	}
	if opt.Sentinel != "" {
		opts = append(opts, block.WithSentinel(opt.Sentinel))
	}
	acc := block.New(rules, opts...)

	dec, err := logio.Decode(r, opt.InputEncoding)
	if err != nil {
		return nil, err
	}
	rd, err := logio.NewReader(dec, opt.InputDelimiter, opt.HeaderEnd)
	if err != nil {
		return nil, err
	}
	wr := logio.NewWriter(w, opt.Layout)
	if err := wr.WriteHeader(source, acc.BlockLength(), columns); err != nil {
		return nil, err
	}

	for {
		cells, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if row, ok := acc.ProcessLine(cells); ok {
			if err := wr.WriteRow(row); err != nil {
				return nil, err
			}
		}
	}
	if row, ok := acc.ProcessEndOfInput(); ok {
		if err := wr.WriteRow(row); err != nil {
			return nil, err
		}
	}
	if err := wr.Flush(); err != nil {
		return nil, err
	}

	res := &Result{
		Source:      source,
		InputRows:   acc.Rows(),
		OutputRows:  wr.Rows(),
		HeaderFound: rd.HeaderFound() || opt.HeaderEnd == "",
		Issues:      issues,
		Diagnostics: acc.Diagnostics(),
	}
	if !res.HeaderFound {
		log.Warnw("header end not found, no data rows read", logger.FieldFile, source, "pattern", opt.HeaderEnd)
	}
	log.Debugw("conversion finished",
		logger.FieldFile, source,
		"input_rows", res.InputRows,
		"output_rows", res.OutputRows,
		logger.FieldCount, len(res.Diagnostics),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// DefaultOutputPath returns prefix+base of input, in the input's directory.
func DefaultOutputPath(input, prefix string) string {
	return filepath.Join(filepath.Dir(input), prefix+filepath.Base(input))
}
