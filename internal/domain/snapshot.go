package domain

import "time"

// Section is the ranked, summarized output of one kind.
type Section struct {
	Kind       Kind        `json:"kind"`
	Candidates []Candidate `json:"candidates"`
}

// Snapshot is the immutable result of a run, persisted and rendered.
type Snapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	Model       string    `json:"model"`
	Sections    []Section `json:"sections"`
}

// Section returns the candidates for kind, or nil.
func (s Snapshot) Section(kind Kind) []Candidate {
	for _, sec := range s.Sections {
		if sec.Kind == kind {
			return sec.Candidates
		}
	}
	return nil
}
