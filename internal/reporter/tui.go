package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakesherman/prefixrun/internal/pipeline"
)

type tickMsg time.Time

// RunFinishedMsg tells the live view the pipeline is done and it should
// hand the terminal back.
type RunFinishedMsg struct{}

// TUIModel is the Bubbletea model for the live run display. It polls the
// runner's report snapshot on a fixed tick rather than receiving events.
type TUIModel struct {
	getReport func() *pipeline.Report
	cancelRun func() // called on 'q' to cancel the run context

	report *pipeline.Report
	frame  int
	done   bool
}

// NewTUIModel creates a live view over a report snapshot function.
func NewTUIModel(getReport func() *pipeline.Report, cancelRun func()) TUIModel {
	return TUIModel{
		getReport: getReport,
		cancelRun: cancelRun,
		report:    getReport(),
	}
}

// Init implements tea.Model.
func (m TUIModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelRun != nil {
				m.cancelRun()
			}
			m.done = true
			return m, tea.Quit
		}

	case tickMsg:
		m.report = m.getReport()
		m.frame++
		return m, tickCmd()

	case RunFinishedMsg:
		m.report = m.getReport()
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m TUIModel) View() string {
	if m.report == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("prefixrun — %d steps", len(m.report.Files))))
	sb.WriteString("\n\n")

	for _, f := range m.report.Files {
		rec := m.report.Record(f.Name)
		label := fmt.Sprintf("%3d  %-35s", f.Order, f.Name)

		switch m.report.Status(f.Name) {
		case pipeline.StatusRunning:
			spinner := spinnerChars[m.frame%len(spinnerChars)]
			elapsed := time.Since(rec.StartedAt).Truncate(time.Second)
			sb.WriteString(runStyle.Render(fmt.Sprintf("  %s %s %s", spinner, label, elapsed)))
		case pipeline.StatusSuccess:
			sb.WriteString(doneStyle.Render(fmt.Sprintf("  ✓ %s %s", label, rec.Elapsed.Truncate(time.Second))))
		case pipeline.StatusFailed:
			sb.WriteString(failedStyle.Render(fmt.Sprintf("  ✗ %s %s", label, rec.Error)))
		default:
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  · %s", label)))
		}
		sb.WriteString("\n")
	}

	if !m.done {
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("q: cancel run"))
		sb.WriteString("\n")
	}
	return sb.String()
}
