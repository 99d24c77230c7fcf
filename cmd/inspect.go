package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/logcompose/internal/analysis"
	"github.com/KaramelBytes/logcompose/internal/job"
	"github.com/KaramelBytes/logcompose/internal/rule"
	"github.com/spf13/cobra"
)

var (
	insOutputPath string
	insDelimiter  string
	insHeaderEnd  string
	insEncoding   string
	insSampleRows int
	insMaxRows    int
	insScaffold   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "Summarize the source columns of a log to help write column formulas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := settings()
		opt := analysis.DefaultOptions()
		opt.Delimiter = unescape(c.InputDelimiter)
		opt.HeaderEnd = c.HeaderEndPattern
		opt.Encoding = c.InputEncoding
		if insEncoding != "" {
			opt.Encoding = insEncoding
		}
		if cmd.Flags().Changed("delimiter") {
			opt.Delimiter = unescape(insDelimiter)
		}
		if cmd.Flags().Changed("header-end") {
			opt.HeaderEnd = insHeaderEnd
		}
		if insSampleRows >= 0 {
			opt.SampleRows = insSampleRows
		}
		if insMaxRows >= 0 {
			opt.MaxRows = insMaxRows
		}
		rep, err := analysis.AnalyzeLog(path, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()

		// Decide where to write: --output path, or stdout
		if insOutputPath != "" {
			if err := os.WriteFile(insOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote inspection to %s\n", insOutputPath)
		} else {
			fmt.Println(md)
		}

		if insScaffold != "" {
			cols := rep.NumericColumns()
			if len(cols) == 0 {
				return fmt.Errorf("no numeric columns in %s; nothing to scaffold", path)
			}
			base := filepath.Base(path)
			j := job.New(strings.TrimSuffix(base, filepath.Ext(base)), "scaffolded from "+base)
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve input: %w", err)
			}
			j.Input = abs
			if cmd.Flags().Changed("delimiter") {
				j.Delimiter = delimiterName(insDelimiter)
			}
			if opt.Encoding != c.InputEncoding {
				j.Encoding = opt.Encoding
			}
			if opt.HeaderEnd != c.HeaderEndPattern {
				j.HeaderEnd = opt.HeaderEnd
			}
			for _, col := range cols {
				j.AddColumn(rule.FromSource(col.Index, col.Name))
			}
			if err := j.Save(insScaffold); err != nil {
				return err
			}
			fmt.Printf("✓ Saved job with %d columns: %s\n", len(cols), insScaffold)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the inspection (Markdown)")
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "input cell delimiter (overrides config; 'whitespace' splits on runs of blanks)")
	inspectCmd.Flags().StringVar(&insHeaderEnd, "header-end", "", "pattern of the line that ends the input header (empty: no header)")
	inspectCmd.Flags().StringVar(&insEncoding, "encoding", "", "input encoding: utf-8, latin1 or windows-1252 (overrides config)")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include")
	inspectCmd.Flags().IntVar(&insMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	inspectCmd.Flags().StringVar(&insScaffold, "scaffold", "", "also save a job copying every numeric column to this path")
}
