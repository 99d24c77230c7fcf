package cmd

import (
	"testing"

	"github.com/KaramelBytes/logcompose/internal/compose"
	"github.com/KaramelBytes/logcompose/internal/job"
)

func TestApplyJobUnescapesDelimiter(t *testing.T) {
	cases := map[string]string{
		"tab":        "\t",
		`\t`:         "\t",
		"whitespace": "",
		";":          ";",
	}
	for name, want := range cases {
		opt := compose.DefaultOptions()
		j := job.New("x", "")
		j.Delimiter = name
		applyJob(&opt, j)
		if opt.InputDelimiter != want {
			t.Errorf("job delimiter %q: got %q, want %q", name, opt.InputDelimiter, want)
		}
	}

	opt := compose.DefaultOptions()
	applyJob(&opt, job.New("x", ""))
	if opt.InputDelimiter != "|" {
		t.Fatalf("empty job delimiter should keep the configured one, got %q", opt.InputDelimiter)
	}
}

func TestDelimiterName(t *testing.T) {
	if got := delimiterName(""); got != "whitespace" {
		t.Fatalf("delimiterName(\"\") = %q", got)
	}
	if got := unescape(delimiterName("")); got != "" {
		t.Fatalf("round trip of whitespace = %q", got)
	}
	if got := delimiterName("tab"); got != "tab" {
		t.Fatalf("delimiterName(tab) = %q", got)
	}
}

func TestPrintIssuesStrict(t *testing.T) {
	issues := []job.Issue{{Severity: job.SeverityError, Path: "columns[0].command", Message: "unknown placeholder {x}"}}
	if err := printIssues(issues, false); err != nil {
		t.Fatalf("non-strict: %v", err)
	}
	if err := printIssues(issues, true); err == nil {
		t.Fatal("strict: expected error")
	}
}
