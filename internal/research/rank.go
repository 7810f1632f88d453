package research

import (
	"sort"

	"ResearchAgent/internal/domain"
)

// Rank returns candidates ordered by score, highest first. Ties keep their
// input order.
func Rank(candidates []domain.Candidate) []domain.Candidate {
	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Top returns at most n leading candidates.
func Top(candidates []domain.Candidate, n int) []domain.Candidate {
	if n < 0 {
		n = 0
	}
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]domain.Candidate, len(candidates))
	copy(out, candidates)
	return out
}
