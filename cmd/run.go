package cmd

import (
	"fmt"

	"github.com/KaramelBytes/logcompose/internal/compose"
	"github.com/KaramelBytes/logcompose/internal/job"
	"github.com/spf13/cobra"
)

var (
	runInput  string
	runOutput string
	runDryRun bool
	runStrict bool
)

var runCmd = &cobra.Command{
	Use:   "run [job]",
	Short: "Convert a log using a saved job",
	Long: `Run a job file. The argument may be a path to a job file, a directory to
search for compose.yaml, or the name of a job in the jobs directory. Without an
argument compose.yaml is searched in the current directory and its parents.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		path, err := resolveJobPath(arg)
		if err != nil {
			return err
		}
		j, err := job.Load(path)
		if err != nil {
			return err
		}
		if err := printIssues(j.Validate(), runStrict); err != nil {
			return err
		}

		c := settings()
		opt := composeOptions(c)
		applyJob(&opt, j)

		input := runInput
		if input == "" {
			input = j.InputPath()
		}
		output := runOutput
		if output == "" {
			if runInput != "" {
				output = compose.DefaultOutputPath(input, c.OutputPrefix)
			} else {
				output = j.OutputPath(c.OutputPrefix)
			}
		}
		if runDryRun {
			fmt.Printf("Job: %s (%s)\n", j.Name, path)
			fmt.Printf("Input: %s\n", input)
			fmt.Printf("Output: %s\n", output)
			fmt.Printf("Block length: %d\n", opt.BlockLength)
			for k, s := range j.Columns {
				fmt.Printf("  column %d: %s\n", k+1, s)
			}
			return nil
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
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "input log (overrides the job)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output file (overrides the job)")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "fail on column errors instead of writing the sentinel")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the resolved job without converting")
}
