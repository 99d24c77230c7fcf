package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/logcompose/internal/job"
	"github.com/KaramelBytes/logcompose/internal/rule"
	"github.com/KaramelBytes/logcompose/internal/utils"
	"github.com/spf13/cobra"
)

var (
	initDescription string
	initBlock       int
	initInput       string
	initHere        bool
)

// exampleColumns seed a new job with one column of each common kind.
var exampleColumns = []rule.ColumnSpec{
	rule.FromSource(1, "Nr."),
	rule.FromCommand("{3}-14", "T_case k-type TC"),
	rule.FromCommand("RTD({11}/0.001, 1000)", "T_in PT1000"),
	rule.FromCommand("{21}*{5}", "P_loss (W)"),
}

var initCmd = &cobra.Command{
	Use:   "init <job-name>",
	Short: "Create a job file with example columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		var path string
		if initHere {
			path = utils.JobFileName
		} else {
			dir, err := jobsDir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, name+".yaml")
		}
		// Refuse to overwrite an existing job.
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("job already exists at %s", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat job file: %w", err)
		}

		j := job.New(name, initDescription)
		j.Input = initInput
		if initBlock > 1 {
			j.BlockLength = initBlock
			for _, c := range exampleColumns {
				if c.IsCopy() {
					c = rule.FromCommand(fmt.Sprintf("first {%d}", c.Source), c.Description)
				} else {
					c.Command = "average " + c.Command
				}
				j.AddColumn(c)
			}
		} else {
			for _, c := range exampleColumns {
				j.AddColumn(c)
			}
		}
		if err := j.Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ Job initialized: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "job description")
	initCmd.Flags().IntVarP(&initBlock, "block", "b", 1, "block length; above 1 the example columns are averaged")
	initCmd.Flags().StringVarP(&initInput, "input", "i", "", "input log, relative to the job file")
	initCmd.Flags().BoolVar(&initHere, "here", false, "write ./compose.yaml instead of a file in the jobs directory")
}
