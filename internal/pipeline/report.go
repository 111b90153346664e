package pipeline

import "time"

// Status represents the reportable state of a single pipeline step.
type Status int

const (
	StatusNotAttempted Status = iota
	StatusRunning
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotAttempted:
		return "NA"
	case StatusRunning:
		return "Running"
	case StatusSuccess:
		return "Success"
	case StatusFailed:
		return "Failure"
	default:
		return "Unknown"
	}
}

// Record is the bookkeeping for one execution attempt of one file. A record
// is created when the file starts and finalized when the invocation returns,
// success or not. A file that was never attempted has no record at all.
type Record struct {
	StartedAt time.Time
	EndedAt   time.Time
	Elapsed   time.Duration
	ExitCode  int
	Success   bool
	Error     string
}

// Finalized reports whether the end fields have been set.
func (r *Record) Finalized() bool { return !r.EndedAt.IsZero() }

// ElapsedMinutes returns the elapsed time in minutes, matching the report's
// elapsed column unit.
func (r *Record) ElapsedMinutes() float64 { return r.Elapsed.Minutes() }

// Report is a projection of the run state: every discovered file in prefix
// order plus whatever record exists for it. Records hold copies, so a
// report is safe to read after the run moves on.
type Report struct {
	Directory string
	Files     []OrderedFile
	Records   map[string]*Record
}

// Record returns the record for a file name, or nil if the file was never
// attempted.
func (rep *Report) Record(name string) *Record {
	return rep.Records[name]
}

// Status derives the three-state (plus in-flight) status of a file.
func (rep *Report) Status(name string) Status {
	rec := rep.Records[name]
	switch {
	case rec == nil:
		return StatusNotAttempted
	case !rec.Finalized():
		return StatusRunning
	case rec.Success:
		return StatusSuccess
	default:
		return StatusFailed
	}
}

// Summary aggregates step counts for the closing summary line.
type Summary struct {
	Total        int
	Succeeded    int
	Failed       int
	NotAttempted int
	Elapsed      time.Duration
}

// Summarize counts step outcomes across the whole report.
func (rep *Report) Summarize() Summary {
	s := Summary{Total: len(rep.Files)}
	for _, f := range rep.Files {
		switch rep.Status(f.Name) {
		case StatusSuccess:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusNotAttempted:
			s.NotAttempted++
		}
		if rec := rep.Records[f.Name]; rec != nil {
			s.Elapsed += rec.Elapsed
		}
	}
	return s
}
