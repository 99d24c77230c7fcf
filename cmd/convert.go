package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/logcompose/internal/compose"
	"github.com/KaramelBytes/logcompose/internal/job"
	"github.com/KaramelBytes/logcompose/internal/rule"
	"github.com/spf13/cobra"
)

var (
	convOutput    string
	convColumns   []string
	convBlock     int
	convJob       string
	convDelimiter string
	convEncoding  string
	convHeaderEnd string
	convSentinel  string
	convValidate  bool
	convStrict    bool
	convSaveJob   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a measurement log using columns given as flags or from a job",
	Long: `Convert a measurement log. Each -c flag adds one output column:

  -c 5                          copy source column 5
  -c '{3}-14::T_case (°C)'      formula over source columns, with a description
  -c 'average {21}'             average over each block (see -b)
  -c 'average -{4} when {i} % 2 == 1'
                                only rows whose in-block index is odd

Operators: first, once, min, max, stddev, average, median, list, sum.
Placeholders: {1}..{N} source cells, {i} row index in the block, {I} data row index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		c := settings()
		opt := composeOptions(c)

		j := job.New("", "")
		if convJob != "" {
			p, err := resolveJobPath(convJob)
			if err != nil {
				return err
			}
			loaded, err := job.Load(p)
			if err != nil {
				return err
			}
			j = loaded
			applyJob(&opt, j)
		}
		if len(convColumns) > 0 {
			j.Columns = nil
			for _, arg := range convColumns {
				j.AddColumn(rule.ParseFlag(arg))
			}
		}
		if cmd.Flags().Changed("block") {
			j.BlockLength = convBlock
			opt.BlockLength = convBlock
		}
		if j.BlockLength == 0 && opt.BlockLength > 1 {
			j.BlockLength = opt.BlockLength
		}
		if cmd.Flags().Changed("delimiter") {
			opt.InputDelimiter = unescape(convDelimiter)
			j.Delimiter = delimiterName(convDelimiter)
		}
		if convEncoding != "" {
			j.Encoding = convEncoding
			opt.InputEncoding = convEncoding
		}
		if cmd.Flags().Changed("header-end") {
			opt.HeaderEnd = convHeaderEnd
			j.HeaderEnd = convHeaderEnd
		}
		if convSentinel != "" {
			opt.Sentinel = convSentinel
		}
		if len(j.Columns) == 0 {
			return errors.New("no columns: pass -c or --job")
		}

		if err := printIssues(j.Validate(), convStrict || convValidate); err != nil {
			return err
		}
		if convValidate {
			fmt.Printf("✓ %d columns valid\n", len(j.Columns))
			return nil
		}
		if convSaveJob != "" {
			abs, err := filepath.Abs(input)
			if err != nil {
				return fmt.Errorf("resolve input: %w", err)
			}
			j.Input = abs
			if j.Name == "" {
				base := filepath.Base(convSaveJob)
				j.Name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			if err := j.Save(convSaveJob); err != nil {
				return err
			}
			fmt.Printf("✓ Saved job: %s\n", convSaveJob)
		}

		output := convOutput
		if output == "" {
			output = compose.DefaultOutputPath(input, c.OutputPrefix)
		}
		res, err := runConvert(input, output, j, opt)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convOutput, "output", "o", "", "output file (default: output_prefix + input name)")
	convertCmd.Flags().StringArrayVarP(&convColumns, "column", "c", nil, "output column: N, 'formula' or 'spec::description' (repeatable)")
	convertCmd.Flags().IntVarP(&convBlock, "block", "b", 1, "rows folded into one output row")
	convertCmd.Flags().StringVar(&convJob, "job", "", "job file or name supplying columns and block length")
	convertCmd.Flags().StringVar(&convDelimiter, "delimiter", "", "input cell delimiter (overrides config; 'whitespace' splits on runs of blanks)")
	convertCmd.Flags().StringVar(&convEncoding, "encoding", "", "input encoding: utf-8, latin1 or windows-1252 (overrides config)")
	convertCmd.Flags().StringVar(&convHeaderEnd, "header-end", "", "pattern of the line that ends the input header (empty: no header)")
	convertCmd.Flags().StringVar(&convSentinel, "sentinel", "", "text for cells that cannot be computed (overrides config)")
	convertCmd.Flags().BoolVar(&convValidate, "validate", false, "check the columns and exit without converting")
	convertCmd.Flags().BoolVar(&convStrict, "strict", false, "fail on column errors instead of writing the sentinel")
	convertCmd.Flags().StringVar(&convSaveJob, "save-job", "", "also save the columns as a job file at this path")
}
