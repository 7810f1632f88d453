package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FilterPolicy decides which candidates survive the content filter.
type FilterPolicy struct {
	ExclusionTerms []string
	RequiredTerms  []string
}

// KeywordGroup is a named set of indicator keywords with a weight applied
// per keyword present.
type KeywordGroup struct {
	Name     string
	Keywords []string
	Weight   float64
}

// ScoringPolicy drives the heuristic relevance scorer.
type ScoringPolicy struct {
	Quality    KeywordGroup
	Impact     KeywordGroup
	Innovation KeywordGroup

	Tutorial   KeywordGroup
	Scientific KeywordGroup
	Practical  KeywordGroup

	CodeAvailabilityBonus float64
	AbstractLengthBonus   float64
	RecencyBonusMax       float64
}

// Group weights used when the configuration does not override them.
const (
	QualityWeight    = 1.0
	ImpactWeight     = 1.5
	InnovationWeight = 1.2

	TutorialWeight   = 1.0
	ScientificWeight = 1.2
	PracticalWeight  = 1.0
)

// DefaultConcurrency bounds the summarization pool when unset.
const DefaultConcurrency = 3

// RunConfiguration is the immutable input of a single pipeline run.
type RunConfiguration struct {
	Filter           FilterPolicy
	Scoring          ScoringPolicy
	DaysBack         int
	TopN             map[Kind]int
	Concurrency      int
	SummarizeTimeout time.Duration
	Model            string
}

// Since returns the search lower bound for a run started at now.
func (r RunConfiguration) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -r.DaysBack)
}

// Limit returns the top-N for a kind; kinds without an entry select nothing.
func (r RunConfiguration) Limit(kind Kind) int {
	return r.TopN[kind]
}

// Kinds returns the kinds selected by TopN: built-in kinds first in report
// order, then any others by name.
func (r RunConfiguration) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.TopN))
	known := make(map[Kind]bool, len(Kinds))
	for _, k := range Kinds {
		known[k] = true
		if _, ok := r.TopN[k]; ok {
			kinds = append(kinds, k)
		}
	}

	var extra []Kind
	for k := range r.TopN {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(kinds, extra...)
}

// Validate rejects malformed configurations before any stage runs.
func (r RunConfiguration) Validate() error {
	if r.DaysBack <= 0 {
		return NewConfigurationError("days_back", fmt.Sprintf("must be > 0, got %d", r.DaysBack))
	}
	if r.Concurrency < 1 {
		return NewConfigurationError("concurrency", fmt.Sprintf("must be >= 1, got %d", r.Concurrency))
	}
	if r.SummarizeTimeout < 0 {
		return NewConfigurationError("summarize_timeout", "must not be negative")
	}
	for kind, n := range r.TopN {
		if n < 0 {
			return NewConfigurationError("top_n."+string(kind), fmt.Sprintf("must be >= 0, got %d", n))
		}
	}
	for _, g := range []KeywordGroup{r.Scoring.Quality, r.Scoring.Impact, r.Scoring.Innovation,
		r.Scoring.Tutorial, r.Scoring.Scientific, r.Scoring.Practical} {
		if g.Weight < 0 {
			return NewConfigurationError("ranking."+g.Name, "weight must not be negative")
		}
		for _, kw := range g.Keywords {
			if strings.TrimSpace(kw) == "" {
				return NewConfigurationError("ranking."+g.Name, "contains an empty keyword")
			}
		}
	}
	if r.Scoring.CodeAvailabilityBonus < 0 || r.Scoring.AbstractLengthBonus < 0 || r.Scoring.RecencyBonusMax < 0 {
		return NewConfigurationError("ranking", "bonuses must not be negative")
	}
	for _, t := range append(append([]string{}, r.Filter.ExclusionTerms...), r.Filter.RequiredTerms...) {
		if strings.TrimSpace(t) == "" {
			return NewConfigurationError("filter", "terms must not be empty")
		}
	}
	return nil
}
