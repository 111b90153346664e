package reporter

import (
	"strings"
	"testing"
	"time"

	"github.com/jakesherman/prefixrun/internal/pipeline"
)

func sampleReport() *pipeline.Report {
	start := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	return &pipeline.Report{
		Directory: "/data/pipeline/",
		Files:     []pipeline.OrderedFile{{Order: 1, Name: "1-a.sh"}, {Order: 2, Name: "2-b.py"}, {Order: 10, Name: "10-c.R"}},
		Records: map[string]*pipeline.Record{
			"1-a.sh": {StartedAt: start, EndedAt: start.Add(90 * time.Second), Elapsed: 90 * time.Second, Success: true},
			"2-b.py": {StartedAt: start, EndedAt: start.Add(time.Second), Elapsed: time.Second, Success: false, ExitCode: 1, Error: "exit status 1"},
		},
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleReport())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ORDER") || !strings.Contains(lines[0], "ELAPSED (MINS)") {
		t.Errorf("unexpected header: %q", lines[0])
	}

	// row order follows prefix order
	for i, name := range []string{"1-a.sh", "2-b.py", "10-c.R"} {
		if !strings.Contains(lines[i+1], name) {
			t.Errorf("row %d = %q, want it to mention %s", i+1, lines[i+1], name)
		}
	}

	if !strings.Contains(lines[1], "1.50") || !strings.Contains(lines[1], "Success") {
		t.Errorf("success row wrong: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Failure") {
		t.Errorf("failure row wrong: %q", lines[2])
	}
	// never attempted: NA in time/elapsed/status columns
	if got := strings.Count(lines[3], "NA"); got != 4 {
		t.Errorf("not-attempted row should carry NA cells, got %q", lines[3])
	}
}

func TestRenderTable_Alignment(t *testing.T) {
	out := RenderTable(sampleReport())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	headerCol := strings.Index(lines[0], "STATUS")
	if headerCol < 0 {
		t.Fatal("no STATUS column")
	}
	for _, row := range lines[1:] {
		if len(row) < headerCol {
			t.Errorf("row shorter than status column: %q", row)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var sb strings.Builder
	r := NewTextReporter(&sb, false)
	r.PrintSummary(sampleReport())

	out := sb.String()
	for _, want := range []string{"Total: 3", "Succeeded: 1", "Failed: 1", "Not attempted: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q: %s", want, out)
		}
	}
}

func TestPrintPlan(t *testing.T) {
	var sb strings.Builder
	r := NewTextReporter(&sb, false)

	r.PrintPlan("/data/pipeline/", []PlanStep{
		{File: pipeline.OrderedFile{Order: 1, Name: "1-a.sh"}, Command: []string{"bash", "1-a.sh"}},
		{File: pipeline.OrderedFile{Order: 2, Name: "2-b.xyz"}, Problem: `no command mapped for extension ".xyz"`},
	})

	out := sb.String()
	if !strings.Contains(out, "bash 1-a.sh") {
		t.Errorf("plan missing resolved command: %s", out)
	}
	if !strings.Contains(out, "!! no command mapped") {
		t.Errorf("plan missing problem marker: %s", out)
	}
}

func TestPrintPlan_Empty(t *testing.T) {
	var sb strings.Builder
	r := NewTextReporter(&sb, false)
	r.PrintPlan("/empty/", nil)
	if !strings.Contains(sb.String(), "no eligible files") {
		t.Errorf("expected empty-plan notice, got %s", sb.String())
	}
}
