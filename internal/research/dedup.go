package research

import (
	"strings"

	"ResearchAgent/internal/domain"
)

// Deduplicate drops candidates whose normalized title was already seen.
// The first occurrence wins and relative order is kept.
func Deduplicate(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := TitleKey(c.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

// TitleKey is the deduplication key of a title.
func TitleKey(title string) string {
	return strings.TrimSpace(strings.ToLower(title))
}
