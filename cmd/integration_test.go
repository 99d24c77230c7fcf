package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so invocations do not leak
// state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(args ...string) error {
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// mustRun executes the root command with args and fails the test on error.
func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func writeLog(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return p
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(b)
}

func TestCLI_ConvertWithColumnFlags(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := writeLog(t, home, "log.txt",
		"Messung 1",
		"--Nr.--|--A--|--B--",
		"1 | 2 | 3",
		"4 | 5 | 6",
	)
	out := filepath.Join(home, "out.txt")
	mustRun(t, "convert", in, "-o", out, "-c", "1", "-c", "{2}+{3}::A+B")

	want := strings.Join([]string{
		"# [header]",
		`# source : "log.txt"`,
		"# column 1 : original column 1",
		"# column 2 : expression '{2}+{3}' (A+B)",
		"# [data]",
		"1\t5",
		"4\t11",
		"",
	}, "\n")
	if got := readFile(t, out); got != want {
		t.Fatalf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestCLI_ConvertBlocksDefaultOutput(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := writeLog(t, home, "run.txt",
		"--Nr.--|--U--",
		"1|1,5",
		"2|2,5",
		"3|4,0",
	)
	mustRun(t, "convert", in, "-b", "2", "-c", "average {2}", "-c", "list {1}")

	got := readFile(t, filepath.Join(home, "data_run.txt"))
	if !strings.Contains(got, "# block length : 2\n") {
		t.Fatalf("missing block length line:\n%s", got)
	}
	if !strings.HasSuffix(got, "# [data]\n2.0\t[1; 2]\n4.0\t[3]\n") {
		t.Fatalf("unexpected data:\n%s", got)
	}
}

func TestCLI_ConvertColumnErrorsWriteSentinel(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := writeLog(t, home, "log.txt", "--Nr.--", "1|2", "3|4")
	out := filepath.Join(home, "out.txt")
	mustRun(t, "convert", in, "-o", out, "-c", "1", "-c", "{0}*2", "-c", "{2} +* 3")
	if got := readFile(t, out); !strings.HasSuffix(got, "# [data]\n1\tNaN\tNaN\n3\tNaN\tNaN\n") {
		t.Fatalf("unexpected output:\n%s", got)
	}

	strictOut := filepath.Join(home, "strict.txt")
	if err := execCmd("convert", in, "-o", strictOut, "-c", "{0}*2", "--strict"); err == nil {
		t.Fatal("expected error for placeholder {0} with --strict")
	}
	if _, err := os.Stat(strictOut); !os.IsNotExist(err) {
		t.Fatalf("output should not exist, stat err = %v", err)
	}
	if err := execCmd("convert", in, "-c", "{x}", "--validate"); err == nil {
		t.Fatal("expected --validate to report the unknown placeholder")
	}
	if err := execCmd("convert", in, "-o", out); err == nil {
		t.Fatal("expected error without columns")
	}
}

func TestCLI_ShortRowKeepsSentinelRow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := writeLog(t, home, "log.txt", "--Nr.--", "1|2|3|4|5", "1|2", "1|2|3|4|5")
	out := filepath.Join(home, "out.txt")
	mustRun(t, "convert", in, "-o", out, "-c", "{5}", "-c", "4")
	if got := readFile(t, out); !strings.HasSuffix(got, "# [data]\n5\t4\nNaN\tNaN\n5\t4\n") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestCLI_SavedJobKeepsDelimiter(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := writeLog(t, home, "ws.txt", "--Nr.--", "1  2", "3\t4")
	jobPath := filepath.Join(home, "ws.yaml")
	mustRun(t, "convert", in, "-o", filepath.Join(home, "first.txt"),
		"--delimiter", "whitespace", "-c", "{2}", "--save-job", jobPath)
	if got := readFile(t, jobPath); !strings.Contains(got, "input_delimiter: whitespace") {
		t.Fatalf("delimiter not saved:\n%s", got)
	}
	out := filepath.Join(home, "second.txt")
	mustRun(t, "run", jobPath, "-o", out)
	if got := readFile(t, out); !strings.HasSuffix(got, "# [data]\n2\n4\n") {
		t.Fatalf("unexpected output:\n%s", got)
	}

	tabLog := writeLog(t, home, "tab.txt", "--Nr.--", "5\t6")
	tabJob := filepath.Join(home, "tab.yaml")
	job := "name: tab\ninput: tab.txt\ninput_delimiter: tab\ncolumns:\n  - command: \"{2}\"\n"
	if err := os.WriteFile(tabJob, []byte(job), 0o644); err != nil {
		t.Fatalf("write job: %v", err)
	}
	tabOut := filepath.Join(home, "tab_out.txt")
	mustRun(t, "run", tabJob, "-o", tabOut)
	if got := readFile(t, tabOut); !strings.HasSuffix(got, "# [data]\n6\n") {
		t.Fatalf("tab job output (input %s):\n%s", tabLog, got)
	}
}

func TestCLI_ConvertSaveJobThenRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := writeLog(t, home, "log.txt", "--Nr.--", "1|10", "2|20")
	jobPath := filepath.Join(home, "jobs", "double.yaml")
	mustRun(t, "convert", in, "-o", filepath.Join(home, "first.txt"), "-c", "{2}*2", "--save-job", jobPath)

	out := filepath.Join(home, "second.txt")
	mustRun(t, "run", jobPath, "-o", out)
	if got := readFile(t, out); !strings.HasSuffix(got, "# [data]\n20\n40\n") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if first := readFile(t, filepath.Join(home, "first.txt")); !strings.HasSuffix(first, "# [data]\n20\n40\n") {
		t.Fatalf("convert and run disagree:\n%s", first)
	}
}

func TestCLI_InitJobsRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	mustRun(t, "init", "bench", "-d", "integration test")
	jobFile := filepath.Join(home, ".compose", "jobs", "bench.yaml")
	if _, err := os.Stat(jobFile); err != nil {
		t.Fatalf("job file not created: %v", err)
	}
	if err := execCmd("init", "bench"); err == nil {
		t.Fatal("expected error when the job already exists")
	}
	mustRun(t, "jobs")
	mustRun(t, "jobs", "show", "bench")
	mustRun(t, "run", "bench", "--dry-run")

	cells := make([]string, 21)
	for i := range cells {
		cells[i] = "1"
	}
	in := writeLog(t, home, "bench.txt", "--Nr.--", strings.Join(cells, "|"))
	out := filepath.Join(home, "bench_out.txt")
	mustRun(t, "run", "bench", "-i", in, "-o", out)
	got := readFile(t, out)
	if !strings.Contains(got, "# column 2 : expression '{3}-14' (T_case k-type TC)\n") {
		t.Fatalf("missing column description:\n%s", got)
	}
	if !strings.Contains(got, "# [data]\n1\t-13\t") {
		t.Fatalf("unexpected data:\n%s", got)
	}
}

func TestCLI_InspectScaffold(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	in := writeLog(t, home, "log.txt",
		"--Nr.--|--Name--|--U--",
		"1|a|1,5",
		"2|b|2,5",
	)
	report := filepath.Join(home, "report.md")
	jobPath := filepath.Join(home, "scaffold.yaml")
	mustRun(t, "inspect", in, "-o", report, "--scaffold", jobPath)
	if got := readFile(t, report); !strings.Contains(got, "[SOURCE COLUMNS]") {
		t.Fatalf("report missing columns section:\n%s", got)
	}

	out := filepath.Join(home, "out.txt")
	mustRun(t, "run", jobPath, "-o", out)
	if got := readFile(t, out); !strings.HasSuffix(got, "# [data]\n1\t1.5\n2\t2.5\n") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestCLI_ConfigSet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	mustRun(t, "config", "set", "output_prefix", "composed_")
	mustRun(t, "config", "show")
	got := readFile(t, filepath.Join(home, ".compose", "config.yaml"))
	if !strings.Contains(got, "output_prefix: composed_") {
		t.Fatalf("config not saved:\n%s", got)
	}
	if err := execCmd("config", "set", "block_length", "zero"); err == nil {
		t.Fatal("expected error for invalid block_length")
	}
	if err := execCmd("config", "set", "input_encoding", "ebcdic"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
	if err := execCmd("config", "set", "nope", "1"); err == nil {
		t.Fatal("expected error for unknown key")
	}

	in := writeLog(t, home, "x.txt", "--Nr.--", "7")
	mustRun(t, "convert", in, "-c", "1")
	if _, err := os.Stat(filepath.Join(home, "composed_x.txt")); err != nil {
		t.Fatalf("configured prefix not used: %v", err)
	}
}
