package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
)

// Placeholder summaries. Every selected candidate ends up with either a
// generated summary or one of these.
const (
	NotConfiguredSummary = "Summarization not configured: no API key provided."
	FailedSummary        = "Summary generation failed."
)

// ErrEmptySummary is reported when a summarizer returns blank text.
var ErrEmptySummary = errors.New("summarizer returned an empty summary")

// Orchestrator fans summarization out over a bounded pool and merges each
// outcome back onto the candidate it was dispatched for.
type Orchestrator struct {
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewOrchestrator builds an orchestrator; concurrency below one falls back
// to domain.DefaultConcurrency and a zero timeout disables the per-call
// deadline.
func NewOrchestrator(concurrency int, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = domain.DefaultConcurrency
	}
	return &Orchestrator{concurrency: concurrency, timeout: timeout, logger: logger}
}

type outcome struct {
	index   int
	summary string
	err     error
}

// SummarizeAll returns copies of candidates with Summary populated. It blocks
// until every task has finished; a failing task only affects its own
// candidate. A nil summarizer assigns NotConfiguredSummary without calls.
func (o *Orchestrator) SummarizeAll(ctx context.Context, candidates []domain.Candidate, summarizer ports.Summarizer) []domain.Candidate {
	out := make([]domain.Candidate, len(candidates))
	copy(out, candidates)

	if summarizer == nil {
		for i := range out {
			out[i].Summary = NotConfiguredSummary
		}
		o.debug("summarizer not configured", "candidates", len(out))
		return out
	}

	results := make(chan outcome, len(out))
	var g errgroup.Group
	g.SetLimit(o.concurrency)

	for i, c := range out {
		g.Go(func() error {
			summary, err := o.summarizeOne(ctx, summarizer, c)
			results <- outcome{index: i, summary: summary, err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			o.warn("summarization failed", "id", out[r.index].ID, "title", out[r.index].Title, "error", r.err)
			out[r.index].Summary = FailedSummary
			continue
		}
		out[r.index].Summary = r.summary
	}
	return out
}

type callResult struct {
	summary string
	err     error
}

// summarizeOne frees its worker slot as soon as ctx ends, even when the
// summarizer ignores ctx; the abandoned call finishes into a buffered channel.
func (o *Orchestrator) summarizeOne(ctx context.Context, summarizer ports.Summarizer, c domain.Candidate) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	done := make(chan callResult, 1)
	go func() {
		var res callResult
		defer func() {
			if r := recover(); r != nil {
				res = callResult{err: fmt.Errorf("summarizer panic: %v", r)}
			}
			done <- res
		}()
		res.summary, res.err = summarizer.Summarize(ctx, c)
	}()

	var res callResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return "", fmt.Errorf("summarize %s: %w", c.ID, ctx.Err())
	}

	if res.err != nil {
		return "", fmt.Errorf("summarize %s: %w", c.ID, res.err)
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("summarize %s: %w", c.ID, ctx.Err())
	}

	summary := strings.TrimSpace(res.summary)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
