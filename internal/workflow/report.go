package workflow

import (
	"fmt"
	"sync"
)

// Failure records one article that could not be saved.
type Failure struct {
	ShowID     int64
	SortNumber int
	Title      string
	Err        error
}

// Report summarizes a save operation.
type Report struct {
	Shows    int
	Saved    int
	Skipped  int
	Failed   int
	Failures []Failure
}

// Add folds other into r.
func (r *Report) Add(other Report) {
	r.Shows += other.Shows
	r.Saved += other.Saved
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.Failures = append(r.Failures, other.Failures...)
}

func (r Report) String() string {
	return fmt.Sprintf("%d saved, %d already present, %d failed", r.Saved, r.Skipped, r.Failed)
}

// syncReport lets pool workers record outcomes concurrently.
type syncReport struct {
	mu     sync.Mutex
	report Report
}

func (s *syncReport) saved() {
	s.mu.Lock()
	s.report.Saved++
	s.mu.Unlock()
}

func (s *syncReport) skipped() {
	s.mu.Lock()
	s.report.Skipped++
	s.mu.Unlock()
}

func (s *syncReport) failed(f Failure) {
	s.mu.Lock()
	s.report.Failed++
	s.report.Failures = append(s.report.Failures, f)
	s.mu.Unlock()
}

func (s *syncReport) snapshot() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.report
	out.Failures = append([]Failure(nil), s.report.Failures...)
	return out
}
