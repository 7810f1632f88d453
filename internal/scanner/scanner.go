package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ResearchAgent/internal/domain"
)

// Request carries all parameters required to run one search term.
type Request struct {
	Term       string
	Since      time.Time
	MaxResults int
}

// Scanner queries one upstream index (arXiv, YouTube, ...) for candidates
// of a single kind.
type Scanner interface {
	Kind() domain.Kind
	Scan(ctx context.Context, req Request) ([]domain.Candidate, error)
}

// Registry keeps a mapping from kinds to their scanner implementations.
type Registry struct {
	scanners map[domain.Kind]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[domain.Kind]Scanner{}}
}

// Register adds or replaces the scanner for its kind.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[domain.Kind]Scanner{}
	}
	r.scanners[scanner.Kind()] = scanner
}

// Resolve returns the scanner for kind or an error if it is absent.
func (r *Registry) Resolve(kind domain.Kind) (Scanner, error) {
	if scanner, ok := r.scanners[kind]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("no scanner registered for kind %s", kind)
}

// Kinds lists registered kinds in name order.
func (r *Registry) Kinds() []domain.Kind {
	kinds := make([]domain.Kind, 0, len(r.scanners))
	for k := range r.scanners {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
