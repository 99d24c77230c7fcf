package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/logcompose/internal/compose"
	cfgpkg "github.com/KaramelBytes/logcompose/internal/config"
	"github.com/KaramelBytes/logcompose/internal/job"
	"github.com/KaramelBytes/logcompose/internal/logger"
	"github.com/KaramelBytes/logcompose/internal/logio"
	"github.com/KaramelBytes/logcompose/internal/utils"
)

// composeOptions maps configuration to conversion options.
func composeOptions(c *cfgpkg.Global) compose.Options {
	opt := compose.DefaultOptions()
	opt.BlockLength = c.BlockLength
	opt.InputDelimiter = unescape(c.InputDelimiter)
	opt.InputEncoding = c.InputEncoding
	opt.HeaderEnd = c.HeaderEndPattern
	opt.Sentinel = c.Sentinel
	opt.Layout = logio.Layout{
		HeaderStart:   c.HeaderStart,
		CommentPrefix: c.CommentPrefix,
		DataStart:     c.DataStart,
		Delimiter:     unescape(c.OutputDelimiter),
	}
	opt.Logger = logger.Named("compose")
	return opt
}

// applyJob lets job-level settings override configuration.
func applyJob(opt *compose.Options, j *job.Job) {
	if j.BlockLength > 0 {
		opt.BlockLength = j.BlockLength
	}
	if j.Delimiter != "" {
		opt.InputDelimiter = unescape(j.Delimiter)
	}
	if j.Encoding != "" {
		opt.InputEncoding = j.Encoding
	}
	if j.HeaderEnd != "" {
		opt.HeaderEnd = j.HeaderEnd
	}
}

func runConvert(input, output string, j *job.Job, opt compose.Options) (*compose.Result, error) {
	log := logger.Named("cmd")
	log.Debugw("converting", logger.FieldJob, j.Name, logger.FieldFile, input, "output", output)
	return compose.Convert(input, output, j.Columns, opt)
}

// printResult reports a finished conversion and its diagnostics.
func printResult(res *compose.Result) {
	fmt.Printf("✓ Wrote %d rows to %s (%d data rows read)\n", res.OutputRows, res.Output, res.InputRows)
	if !res.HeaderFound {
		fmt.Fprintf(os.Stderr, "⚠ Warning: header end not found in %s; no data rows were read\n", res.Source)
	}
	for _, is := range res.Issues {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", is)
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", d)
	}
}

// printIssues lists validation issues. Problems in a column only cost that
// column its values, so they are reported as warnings; with strict set they
// are errors and fail the command.
func printIssues(issues []job.Issue, strict bool) error {
	for _, is := range issues {
		mark := "⚠ Warning"
		if strict && is.Severity == job.SeverityError {
			mark = "✗ Error"
		}
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", mark, is.Path, is.Message)
	}
	if strict && job.HasErrors(issues) {
		return errors.New("job has validation errors")
	}
	return nil
}

// jobsDir resolves and creates the configured jobs directory.
func jobsDir() (string, error) {
	dir := settings().JobsDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".compose", "jobs")
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	dir = filepath.Clean(dir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// resolveJobPath accepts a job file path, or the name of a job in the jobs dir.
// An empty argument searches the working directory and its parents.
func resolveJobPath(arg string) (string, error) {
	if arg == "" {
		return utils.FindJobFile("")
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return utils.FindJobFile(arg)
	}
	dir, err := jobsDir()
	if err != nil {
		return "", err
	}
	name := arg
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("job %q not found (looked for %s)", arg, p)
	}
	return p, nil
}
