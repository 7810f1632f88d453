package research

import (
	"fmt"
	"log/slog"
	"time"

	"ResearchAgent/internal/domain"
)

// Prepare runs the synchronous stages for one kind: filter, deduplicate,
// score, rank and keep the top n.
func Prepare(candidates []domain.Candidate, cfg domain.RunConfiguration, kind domain.Kind, now time.Time, logger *slog.Logger) ([]domain.Candidate, error) {
	scorer := NewScorer(kind, cfg.Scoring)
	if scorer == nil {
		return nil, fmt.Errorf("no scorer for kind %q", kind)
	}

	filtered := Filter(candidates, cfg.Filter)
	unique := Deduplicate(filtered)
	ranked := Rank(ScoreAll(unique, scorer, now))
	top := Top(ranked, cfg.Limit(kind))

	if logger != nil {
		logger.Debug("candidates prepared",
			"kind", kind,
			"raw", len(candidates),
			"filtered", len(filtered),
			"unique", len(unique),
			"selected", len(top))
	}
	return top, nil
}
