package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const logText = `Messung: Kennlinie PT1000
Datum: 14.03.2023

--Nr.--|--Zeit--|--U--|--Status--|--K--
1|12:00:01|1,25|OK|7
2|12:00:02|1,50|OK|7
3|12:00:03|1,75|FAIL|7
4|12:00:04|2,00|OK
`

func TestAnalyzeLogAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample01.txt")
	if err := os.WriteFile(path, []byte(logText), 0o644); err != nil {
		t.Fatal(err)
	}
	opt := DefaultOptions()
	opt.SampleRows = 2
	rep, err := AnalyzeLog(path, opt)
	if err != nil {
		t.Fatalf("AnalyzeLog: %v", err)
	}
	if rep.Name != "sample01.txt" || rep.Rows != 4 || rep.Processed != 4 || !rep.HeaderFound {
		t.Fatalf("report = %+v", rep)
	}
	if len(rep.Cols) != 5 {
		t.Fatalf("got %d columns", len(rep.Cols))
	}
	kinds := []string{"numeric", "datetime", "numeric", "text", "numeric"}
	names := []string{"Nr.", "Zeit", "U", "Status", "K"}
	for i, c := range rep.Cols {
		if c.Kind != kinds[i] || c.Name != names[i] || c.Index != i+1 {
			t.Errorf("column %d = %+v", i+1, c)
		}
	}
	u := rep.Cols[2]
	if u.Min != 1.25 || u.Max != 2 || u.Mean != 1.625 || u.DecimalComma != 4 {
		t.Fatalf("U stats = %+v", u)
	}
	if k := rep.Cols[4]; !k.Constant || k.Missing != 1 {
		t.Fatalf("K = %+v", k)
	}
	if len(rep.Samples) != 2 {
		t.Fatalf("samples = %v", rep.Samples)
	}
	if got := len(rep.NumericColumns()); got != 3 {
		t.Fatalf("NumericColumns = %d", got)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[LOG SUMMARY]",
		"File: sample01.txt",
		"Rows: 4",
		"[LOG HEADER]\nMessung: Kennlinie PT1000\nDatum: 14.03.2023\n",
		"- {3} U: numeric (non-null 4, missing 0.0%); min 1.25, max 2",
		"- {5} K: numeric (non-null 3, missing 25.0%); constant 7",
		"- {4} Status: text",
		"| {1} | {2} | {3} | {4} | {5} |",
		"[NOTES]",
		"rows have between 4 and 5 cells",
		"decimal commas in {3}",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestAnalyzeMaxRowsAndMissingHeader(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	rep, err := Analyze(strings.NewReader(logText), "x", opt)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Rows != 4 || rep.Processed != 2 {
		t.Fatalf("rows=%d processed=%d", rep.Rows, rep.Processed)
	}
	if !strings.Contains(rep.Markdown(), "Rows: ~4 (processed 2)") {
		t.Fatal("missing processed note")
	}

	rep, err = Analyze(strings.NewReader("1|2\n"), "y", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.HeaderFound || rep.Rows != 0 || len(rep.Warnings) == 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestAnalyzeWithoutHeader(t *testing.T) {
	opt := DefaultOptions()
	opt.HeaderEnd = ""
	opt.Delimiter = ""
	rep, err := Analyze(strings.NewReader("1 a\n2 b\n"), "z", opt)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(rep.Cols) != 2 || rep.Cols[0].Kind != "numeric" || rep.Cols[1].Kind != "text" {
		t.Fatalf("cols = %+v", rep.Cols)
	}
	if len(rep.Warnings) != 0 {
		t.Fatalf("warnings = %v", rep.Warnings)
	}
}
