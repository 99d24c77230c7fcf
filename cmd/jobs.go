package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/logcompose/internal/job"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List saved jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listAllJobs()
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job>",
	Short: "Show the columns of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveJobPath(args[0])
		if err != nil {
			return err
		}
		j, err := job.Load(path)
		if err != nil {
			return err
		}
		fmt.Printf("Job: %s\n", j.Name)
		if j.Description != "" {
			fmt.Printf("Description: %s\n", j.Description)
		}
		fmt.Printf("File: %s\n", path)
		fmt.Printf("Input: %s\n", j.InputPath())
		if j.BlockLength > 1 {
			fmt.Printf("Block length: %d\n", j.BlockLength)
		}
		if len(j.Columns) == 0 {
			fmt.Println("(no columns)")
			return nil
		}
		for k, c := range j.Columns {
			fmt.Printf("- %d: %s\n", k+1, c)
		}
		return nil
	},
}

func listAllJobs() error {
	root, err := jobsDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		fmt.Println("(no jobs)")
		return nil
	}
	sort.Strings(names)
	for _, n := range names {
		j, err := job.Load(filepath.Join(root, n))
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
			continue
		}
		line := fmt.Sprintf("- %s: %d columns", strings.TrimSuffix(n, ".yaml"), len(j.Columns))
		if j.Description != "" {
			line += " (" + j.Description + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsShowCmd)
}
