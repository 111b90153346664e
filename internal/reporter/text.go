// Package reporter renders pipeline reports for the terminal: a plain
// aligned table, a styled summary line, and a live view for long runs.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jakesherman/prefixrun/internal/pipeline"
)

const timeFormat = "2006-01-02 15:04:05"

// TextReporter writes human-readable output to a writer.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter. If w is nil, defaults to
// os.Stdout. color enables styled output.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

// RenderTable formats a report as an aligned plain-text table, one row per
// discovered file in prefix order. Files never attempted render NA in the
// time, elapsed, and status columns.
func RenderTable(rep *pipeline.Report) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "ORDER\tFILE NAME\tSTART TIME\tEND TIME\tELAPSED (MINS)\tSTATUS\n")
	for _, f := range rep.Files {
		rec := rep.Record(f.Name)
		start, end, elapsed := "NA", "NA", "NA"
		if rec != nil {
			start = rec.StartedAt.Format(timeFormat)
			if rec.Finalized() {
				end = rec.EndedAt.Format(timeFormat)
				elapsed = fmt.Sprintf("%.2f", rec.ElapsedMinutes())
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			f.Order, f.Name, start, end, elapsed, rep.Status(f.Name))
	}

	_ = w.Flush()
	return sb.String()
}

// PrintReport writes the report table.
func (r *TextReporter) PrintReport(rep *pipeline.Report) {
	fmt.Fprint(r.w, RenderTable(rep))
}

// PrintSummary writes the closing summary line.
func (r *TextReporter) PrintSummary(rep *pipeline.Report) {
	s := rep.Summarize()
	fmt.Fprintf(r.w, "\nTotal: %d  ", s.Total)
	fmt.Fprintf(r.w, "%s  ", r.styled(doneStyle, fmt.Sprintf("Succeeded: %d", s.Succeeded)))
	fmt.Fprintf(r.w, "%s  ", r.styled(failedStyle, fmt.Sprintf("Failed: %d", s.Failed)))
	fmt.Fprintf(r.w, "%s  ", r.styled(dimStyle, fmt.Sprintf("Not attempted: %d", s.NotAttempted)))
	fmt.Fprintf(r.w, "Elapsed: %.2f mins\n", s.Elapsed.Minutes())
}

// PlanStep is one row of the execution plan: a file and its resolved
// command, or the reason it cannot be resolved.
type PlanStep struct {
	File    pipeline.OrderedFile
	Command []string
	Problem string
}

// PrintPlan writes the execution plan without running anything.
func (r *TextReporter) PrintPlan(dir string, steps []PlanStep) {
	fmt.Fprintf(r.w, "Execution plan for %s:\n\n", dir)
	if len(steps) == 0 {
		fmt.Fprintln(r.w, "  no eligible files")
		return
	}

	w := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ORDER\tFILE NAME\tCOMMAND\n")
	for _, s := range steps {
		cmd := strings.Join(s.Command, " ")
		if s.Problem != "" {
			cmd = "!! " + s.Problem
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.File.Order, s.File.Name, cmd)
	}
	_ = w.Flush()
}

func (r *TextReporter) styled(style interface{ Render(...string) string }, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}
