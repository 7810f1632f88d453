package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
	"ResearchAgent/internal/scanner"
)

// StrategySource implements CandidateSource via registered scanner strategies.
type StrategySource struct {
	registry   *scanner.Registry
	terms      map[domain.Kind][]string
	maxResults int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ ports.CandidateSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with per-kind search terms.
// A nil limiter disables throttling between upstream requests.
func NewStrategySource(reg *scanner.Registry, terms map[domain.Kind][]string, maxResults int, limiter *rate.Limiter, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry:   reg,
		terms:      terms,
		maxResults: maxResults,
		limiter:    limiter,
		logger:     log,
	}
}

// Fetch runs every configured term of kind through its scanner. A term that
// fails is logged and skipped; only a missing scanner or a cancelled context
// aborts the fetch.
func (s *StrategySource) Fetch(ctx context.Context, kind domain.Kind, since time.Time) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(kind)
	if err != nil {
		return nil, err
	}

	terms := s.terms[kind]
	s.debug("fetch candidates", "kind", kind, "terms", len(terms), "since", since.Format("2006-01-02"))

	var aggregated []domain.Candidate
	for _, term := range terms {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return aggregated, fmt.Errorf("wait for rate limiter: %w", err)
			}
		}

		results, err := strategy.Scan(ctx, scanner.Request{
			Term:       term,
			Since:      since,
			MaxResults: s.maxResults,
		})
		if err != nil {
			if ctx.Err() != nil {
				return aggregated, ctx.Err()
			}
			s.warn("search term failed", "kind", kind, "term", term, "error", err)
			continue
		}

		s.debug("term produced candidates", "kind", kind, "term", term, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "kind", kind, "total_candidates", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
