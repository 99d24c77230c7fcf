package rule

import "testing"

func TestParseCommand(t *testing.T) {
	cases := []struct {
		cmd      string
		op       Operator
		explicit bool
		expr     string
		guard    string
	}{
		{"{3}-14", OpNone, false, "{3}-14", AlwaysTrue},
		{"sum {4}", OpSum, true, "{4}", AlwaysTrue},
		{"average {6}*1000", OpAverage, true, "{6}*1000", AlwaysTrue},
		{"first {1} when {i}%2==1", OpFirst, true, "{1}", "{i}%2==1"},
		{"  list {2}  when  {i} < 3  ", OpList, true, "{2}", "{i} < 3"},
		{"{1}+{2} when {i} == 0", OpNone, false, "{1}+{2}", "{i} == 0"},
		{"median RTD({7}/0.001, 1000)", OpMedian, true, "RTD({7}/0.001, 1000)", AlwaysTrue},
		{"Sum {4}", OpNone, false, "Sum {4}", AlwaysTrue},
		{"sum({4})", OpNone, false, "sum({4})", AlwaysTrue},
		{"min {1} when {i} > 0 when 1", OpMin, true, "{1}", "{i} > 0 when 1"},
		{"stddev {5}", OpStddev, true, "{5}", AlwaysTrue},
		{"once {2}", OpOnce, true, "{2}", AlwaysTrue},
		{"max {2}", OpMax, true, "{2}", AlwaysTrue},
	}
	for _, c := range cases {
		r, warns := ParseCommand(c.cmd)
		if len(warns) != 0 {
			t.Errorf("ParseCommand(%q): unexpected warnings %v", c.cmd, warns)
		}
		if r.Operator != c.op || r.Explicit != c.explicit || r.Expression != c.expr || r.Guard != c.guard {
			t.Errorf("ParseCommand(%q) = %+v, want op=%q explicit=%v expr=%q guard=%q",
				c.cmd, r, c.op, c.explicit, c.expr, c.guard)
		}
		if r.IsCopy() {
			t.Errorf("ParseCommand(%q) returned a copy rule", c.cmd)
		}
	}
}

func TestParseCommandDegrades(t *testing.T) {
	r, warns := ParseCommand("{1} when ")
	if len(warns) != 1 || r.Guard != AlwaysTrue || r.Expression != "{1}" {
		t.Fatalf("empty guard: rule=%+v warns=%v", r, warns)
	}

	r, warns = ParseCommand("   ")
	if len(warns) != 1 || r.Expression != "" {
		t.Fatalf("empty command: rule=%+v warns=%v", r, warns)
	}

	r, warns = ParseCommand("sum {1}\n+{2}")
	if len(warns) != 1 {
		t.Fatalf("multi-line command: expected a warning, got %v", warns)
	}
	if r.Operator != OpNone || r.Guard != AlwaysTrue || r.Expression != "sum {1}\n+{2}" {
		t.Fatalf("multi-line command: rule=%+v", r)
	}
}

func TestParseSource(t *testing.T) {
	r, warns := Parse(FromSource(5, "Pin"))
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if !r.IsCopy() || r.Source != 5 || r.Expression != "{5}" || r.Operator != OpNone || r.Guard != AlwaysTrue {
		t.Fatalf("copy rule = %+v", r)
	}
	if _, warns := Parse(ColumnSpec{Source: -2}); len(warns) != 1 {
		t.Fatalf("negative source: expected warning, got %v", warns)
	}
}

func TestParseAll(t *testing.T) {
	specs := []ColumnSpec{
		FromSource(1, ""),
		FromCommand("sum {2}", "total"),
		FromCommand("", "empty"),
		FromCommand("{3} when ", ""),
	}
	rules, issues := ParseAll(specs)
	if len(rules) != len(specs) {
		t.Fatalf("got %d rules, want %d", len(rules), len(specs))
	}
	if len(issues) != 2 {
		t.Fatalf("got issues %v, want 2", issues)
	}
	if issues[0].Column != 2 || issues[1].Column != 3 {
		t.Fatalf("issue columns = %d, %d", issues[0].Column, issues[1].Column)
	}
	if got := issues[1].String(); got[:9] != "column 4:" {
		t.Fatalf("issue string = %q", got)
	}
}

func TestParseFlag(t *testing.T) {
	cases := []struct {
		arg  string
		want ColumnSpec
	}{
		{"5", ColumnSpec{Source: 5}},
		{" 2 ::Frequenz", ColumnSpec{Source: 2, Description: "Frequenz"}},
		{"{3}-14::Vout", ColumnSpec{Command: "{3}-14", Description: "Vout"}},
		{"sum {4}", ColumnSpec{Command: "sum {4}"}},
		{"0", ColumnSpec{Command: "0"}},
	}
	for _, c := range cases {
		if got := ParseFlag(c.arg); got != c.want {
			t.Errorf("ParseFlag(%q) = %+v, want %+v", c.arg, got, c.want)
		}
	}
	if s := FromSource(3, "").String(); s != "3" {
		t.Fatalf("String() = %q", s)
	}
}
