package research

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchAgent/internal/domain"
)

func TestPrepareRunsStagesInOrder(t *testing.T) {
	t.Parallel()

	cfg := domain.RunConfiguration{
		Filter:      domain.FilterPolicy{ExclusionTerms: []string{"protein"}, RequiredTerms: []string{"driving"}},
		Scoring:     testPolicy(),
		DaysBack:    7,
		TopN:        map[domain.Kind]int{domain.KindPaper: 2},
		Concurrency: 1,
	}

	fresh := paper("Fresh driving", "driving benchmark")
	fresh.PublishedAt = scoringNow
	in := []domain.Candidate{
		paper("Old driving", "driving"),
		paper("Protein driving", "protein driving"),
		fresh,
		paper("old DRIVING", "driving benchmark novel"),
		paper("Best driving", "driving benchmark novel state-of-the-art"),
	}

	got, err := Prepare(in, cfg, domain.KindPaper, scoringNow, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Best driving", "Fresh driving"}, titles(got))
	assert.InDelta(t, 3.7, got[0].Score, 1e-9)
	assert.InDelta(t, 3.5, got[1].Score, 1e-9)
}

func TestPrepareUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Prepare(nil, domain.RunConfiguration{}, domain.Kind("podcast"), time.Now(), nil)
	assert.Error(t, err)
}

func TestPrepareNoCandidates(t *testing.T) {
	t.Parallel()

	cfg := domain.RunConfiguration{TopN: map[domain.Kind]int{domain.KindVideo: 3}}
	got, err := Prepare(nil, cfg, domain.KindVideo, scoringNow, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
