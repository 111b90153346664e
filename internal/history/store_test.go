package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jakesherman/prefixrun/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testReport() (*pipeline.Report, time.Time, time.Time) {
	start := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	rep := &pipeline.Report{
		Directory: "/data/pipeline/",
		Files:     []pipeline.OrderedFile{{Order: 1, Name: "1-a.sh"}, {Order: 2, Name: "2-b.py"}, {Order: 3, Name: "3-c.R"}},
		Records: map[string]*pipeline.Record{
			"1-a.sh": {StartedAt: start, EndedAt: start.Add(time.Minute), Elapsed: time.Minute, Success: true},
			"2-b.py": {StartedAt: start.Add(time.Minute), EndedAt: end, Elapsed: time.Minute, Success: false, ExitCode: 1, Error: "exit status 1"},
		},
	}
	return rep, start, end
}

func TestRecordRunAndList(t *testing.T) {
	s := openTestStore(t)
	rep, start, end := testReport()

	id, err := s.RecordRun(start, end, rep)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero run id")
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.Directory != "/data/pipeline/" || r.TotalSteps != 3 || r.Succeeded != 1 || r.Failed != 1 {
		t.Errorf("unexpected run row: %+v", r)
	}
	if r.Status != "failed" {
		t.Errorf("status = %q, want failed", r.Status)
	}
}

func TestRunSteps(t *testing.T) {
	s := openTestStore(t)
	rep, start, end := testReport()

	id, err := s.RecordRun(start, end, rep)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	steps, err := s.RunSteps(id)
	if err != nil {
		t.Fatalf("RunSteps: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}

	if steps[0].Name != "1-a.sh" || steps[0].Status != "success" || steps[0].ElapsedSecs != 60 {
		t.Errorf("step 0 wrong: %+v", steps[0])
	}
	if steps[1].Name != "2-b.py" || steps[1].Status != "failure" || steps[1].ExitCode != 1 {
		t.Errorf("step 1 wrong: %+v", steps[1])
	}
	if steps[2].Name != "3-c.R" || steps[2].Status != "not_attempted" {
		t.Errorf("step 2 wrong: %+v", steps[2])
	}
	if !steps[2].StartedAt.IsZero() {
		t.Errorf("not-attempted step has a start time: %+v", steps[2])
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	rep, start, end := testReport()

	first, err := s.RecordRun(start, end, rep)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.RecordRun(start.Add(time.Hour), end.Add(time.Hour), rep)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Errorf("unexpected order: %+v", runs)
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = s.Close()
}

func TestRecordRun_AllSucceeded(t *testing.T) {
	s := openTestStore(t)
	start := time.Now()
	rep := &pipeline.Report{
		Directory: "/p/",
		Files:     []pipeline.OrderedFile{{Order: 1, Name: "1-a.sh"}},
		Records: map[string]*pipeline.Record{
			"1-a.sh": {StartedAt: start, EndedAt: start.Add(time.Second), Elapsed: time.Second, Success: true},
		},
	}
	if _, err := s.RecordRun(start, start.Add(time.Second), rep); err != nil {
		t.Fatal(err)
	}
	runs, err := s.ListRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if runs[0].Status != "success" {
		t.Errorf("status = %q, want success", runs[0].Status)
	}
}
