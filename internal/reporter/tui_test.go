package reporter

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jakesherman/prefixrun/internal/pipeline"
)

func TestTUIModel_QuitOnRunFinished(t *testing.T) {
	rep := sampleReport()
	m := NewTUIModel(func() *pipeline.Report { return rep }, nil)

	next, cmd := m.Update(RunFinishedMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(TUIModel).done {
		t.Error("model not marked done")
	}
}

func TestTUIModel_CancelOnQ(t *testing.T) {
	rep := sampleReport()
	cancelled := false
	m := NewTUIModel(func() *pipeline.Report { return rep }, func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !cancelled {
		t.Error("cancelRun not called")
	}
}

func TestTUIModel_TickRefreshes(t *testing.T) {
	rep := sampleReport()
	m := NewTUIModel(func() *pipeline.Report { return rep }, nil)

	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected next tick command")
	}
	if next.(TUIModel).frame != 1 {
		t.Errorf("frame = %d, want 1", next.(TUIModel).frame)
	}
}
