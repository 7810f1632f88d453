package research

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"ResearchAgent/internal/domain"
)

const (
	abstractLengthThreshold = 500

	paperDecayPerDay = 0.2
	videoDecayPerDay = 0.1

	popularityCap     = 2.0
	popularityDivisor = 10000.0
	engagementCap     = 1.5
	engagementDivisor = 5000.0
)

var (
	codeKeywords = []string{
		"github", "code available", "open source", "implementation",
		"publicly available", "repository",
	}
	videoCodeKeywords = append(append([]string{}, codeKeywords...), "source code")
)

// Scorer computes the relevance score of one kind of candidate. Scores are
// pure functions of the candidate, the policy and now.
type Scorer interface {
	Kind() domain.Kind
	Score(c domain.Candidate, now time.Time) Breakdown
}

// Breakdown itemizes a score. Total is the value stored on the candidate.
type Breakdown struct {
	Keywords   float64
	Code       float64
	Length     float64
	Recency    float64
	Tutorial   float64
	Scientific float64
	Practical  float64
	Popularity float64
	Engagement float64
	Total      float64
}

// PaperScorer scores papers on their abstract.
type PaperScorer struct {
	Policy domain.ScoringPolicy
}

// Kind implements Scorer.
func (PaperScorer) Kind() domain.Kind { return domain.KindPaper }

// Score implements Scorer.
func (s PaperScorer) Score(c domain.Candidate, now time.Time) Breakdown {
	b := lexical(s.Policy, c, now, codeKeywords, paperDecayPerDay)
	b.Total = b.Keywords + b.Code + b.Length + b.Recency
	return b
}

// VideoScorer scores videos on their description, adding the three content
// groups plus capped popularity and engagement terms.
type VideoScorer struct {
	Policy domain.ScoringPolicy
}

// Kind implements Scorer.
func (VideoScorer) Kind() domain.Kind { return domain.KindVideo }

// Score implements Scorer.
func (s VideoScorer) Score(c domain.Candidate, now time.Time) Breakdown {
	b := lexical(s.Policy, c, now, videoCodeKeywords, videoDecayPerDay)

	body := strings.ToLower(c.BodyText)
	b.Tutorial = groupScore(body, s.Policy.Tutorial)
	b.Scientific = groupScore(body, s.Policy.Scientific)
	b.Practical = groupScore(body, s.Policy.Practical)

	if c.Video.ViewCount > 0 {
		b.Popularity = math.Min(popularityCap, float64(c.Video.ViewCount)/popularityDivisor)
	}
	if c.Video.LikeCount > 0 {
		b.Engagement = math.Min(engagementCap, float64(c.Video.LikeCount)/engagementDivisor)
	}

	b.Total = b.Keywords + b.Code + b.Length + b.Recency +
		b.Tutorial + b.Scientific + b.Practical +
		b.Popularity + b.Engagement
	return b
}

// ScoreAll returns copies of candidates with Score set by scorer. Video
// sub-scores are copied onto the video facet.
func ScoreAll(candidates []domain.Candidate, scorer Scorer, now time.Time) []domain.Candidate {
	scored := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		b := scorer.Score(c, now)
		c.Score = b.Total
		if c.Kind == domain.KindVideo {
			c.Video.TutorialQuality = b.Tutorial
			c.Video.ScientificValue = b.Scientific
			c.Video.PracticalValue = b.Practical
		}
		scored[i] = c
	}
	return scored
}

// NewScorer returns the scorer for kind, or nil when the kind is unknown.
func NewScorer(kind domain.Kind, policy domain.ScoringPolicy) Scorer {
	switch kind {
	case domain.KindPaper:
		return PaperScorer{Policy: policy}
	case domain.KindVideo:
		return VideoScorer{Policy: policy}
	default:
		return nil
	}
}

func lexical(policy domain.ScoringPolicy, c domain.Candidate, now time.Time, code []string, decay float64) Breakdown {
	body := strings.ToLower(c.BodyText)

	var b Breakdown
	b.Keywords = groupScore(body, policy.Quality) +
		groupScore(body, policy.Impact) +
		groupScore(body, policy.Innovation)

	for _, kw := range code {
		if strings.Contains(body, kw) {
			b.Code = policy.CodeAvailabilityBonus
			break
		}
	}

	if utf8.RuneCountInString(c.BodyText) > abstractLengthThreshold {
		b.Length = policy.AbstractLengthBonus
	}

	b.Recency = RecencyBonus(policy.RecencyBonusMax, decay, c.PublishedAt, now)
	return b
}

func groupScore(body string, group domain.KeywordGroup) float64 {
	var score float64
	for _, kw := range group.Keywords {
		if strings.Contains(body, strings.ToLower(kw)) {
			score += group.Weight
		}
	}
	return score
}

// RecencyBonus decays max linearly by whole days of age, floored at zero.
// Unknown dates earn nothing; future dates count as age zero.
func RecencyBonus(maxBonus, decayPerDay float64, published, now time.Time) float64 {
	if published.IsZero() {
		return 0
	}
	days := AgeInDays(published, now)
	return math.Max(0, maxBonus-float64(days)*decayPerDay)
}

// AgeInDays returns the whole days between published and now.
func AgeInDays(published, now time.Time) int {
	age := now.Sub(published)
	if age < 0 {
		return 0
	}
	return int(age / (24 * time.Hour))
}
