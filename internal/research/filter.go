// Package research holds the candidate pipeline: filtering, deduplication,
// heuristic scoring, ranking, bounded summarization and aggregation.
package research

import (
	"strings"

	"ResearchAgent/internal/domain"
)

// Filter keeps the candidates that pass policy, preserving order.
func Filter(candidates []domain.Candidate, policy domain.FilterPolicy) []domain.Candidate {
	exclusions := lowerTerms(policy.ExclusionTerms)
	required := lowerTerms(policy.RequiredTerms)

	kept := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if accept(fullText(c), exclusions, required) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Accepts reports whether a single candidate passes policy.
func Accepts(c domain.Candidate, policy domain.FilterPolicy) bool {
	return accept(fullText(c), lowerTerms(policy.ExclusionTerms), lowerTerms(policy.RequiredTerms))
}

func accept(text string, exclusions, required []string) bool {
	for _, term := range exclusions {
		if strings.Contains(text, term) {
			return false
		}
	}

	// Broad search terms pull in generic robotics and agent papers; only
	// keep those that are about driving or vehicles.
	if offDomain(text, "robot") || offDomain(text, "agent") {
		return false
	}

	if len(required) == 0 {
		return true
	}
	for _, term := range required {
		if strings.Contains(text, term) || strings.Contains(text, strings.ReplaceAll(term, " ", "-")) {
			return true
		}
	}
	return false
}

func offDomain(text, topic string) bool {
	return strings.Contains(text, topic) &&
		!strings.Contains(text, "driving") &&
		!strings.Contains(text, "vehicle")
}

func fullText(c domain.Candidate) string {
	return strings.ToLower(c.Title) + " " + strings.ToLower(c.BodyText)
}

func lowerTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
