package agent

import "github.com/appforge-io/appforge-backend/internal/projects/domain"

// RunState is the mutable state of one agent run: the file accumulator and
// the completion summary. Each run owns its own instance from creation to
// persistence; it is never shared across runs or projects.
type RunState struct {
	files   domain.FileSet
	summary string
	seeded  bool
}

func NewRunState() *RunState {
	return &RunState{files: domain.FileSet{}}
}

// Seed loads the prior snapshot into the accumulator. Only the first call
// has any effect; a run is seeded at most once.
func (s *RunState) Seed(snapshot domain.FileSet) {
	if s.seeded || len(snapshot) == 0 {
		return
	}
	for path, content := range snapshot {
		s.files[path] = content
	}
	s.seeded = true
}

// MergeFiles commits a batch of writes into the accumulator, last-write-wins
// per path. There is no delete: files can only be added or overwritten
// within a run.
func (s *RunState) MergeFiles(files map[string]string) {
	for path, content := range files {
		s.files[path] = content
	}
}

// Files returns a copy of the accumulator.
func (s *RunState) Files() domain.FileSet {
	out := make(domain.FileSet, len(s.files))
	for path, content := range s.files {
		out[path] = content
	}
	return out
}

func (s *RunState) FileCount() int { return len(s.files) }

func (s *RunState) SetSummary(text string) { s.summary = text }

func (s *RunState) Summary() string { return s.summary }
