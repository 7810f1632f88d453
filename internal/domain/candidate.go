package domain

import (
	"strings"
	"time"
)

// Kind tags the variant of a candidate flowing through the pipeline.
type Kind string

const (
	KindPaper Kind = "paper"
	KindVideo Kind = "video"
)

// Kinds lists the built-in kinds in report order.
var Kinds = []Kind{KindPaper, KindVideo}

// Plural returns the label used in reports and logs.
func (k Kind) Plural() string {
	switch k {
	case KindPaper:
		return "papers"
	case KindVideo:
		return "videos"
	default:
		return string(k) + "s"
	}
}

// Candidate is a paper or video item fetched from a source.
// A zero PublishedAt means the publication date is unknown.
type Candidate struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	BodyText    string    `json:"body_text"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	URL         string    `json:"url"`
	Score       float64   `json:"score"`
	Summary     string    `json:"summary"`

	Paper PaperFacet `json:"paper,omitzero"`
	Video VideoFacet `json:"video,omitzero"`
}

// PaperFacet holds the fields only papers carry.
type PaperFacet struct {
	Authors    []string `json:"authors,omitempty"`
	SourceURL  string   `json:"source_url,omitempty"`
	ExternalID string   `json:"external_id,omitempty"`
}

// VideoFacet holds the fields only videos carry. The three quality values
// are filled by the video scorer and kept for observability.
type VideoFacet struct {
	Channel         string        `json:"channel,omitempty"`
	Duration        time.Duration `json:"duration,omitempty"`
	ViewCount       uint64        `json:"view_count,omitempty"`
	LikeCount       uint64        `json:"like_count,omitempty"`
	TutorialQuality float64       `json:"tutorial_quality,omitempty"`
	ScientificValue float64       `json:"scientific_value,omitempty"`
	PracticalValue  float64       `json:"practical_value,omitempty"`
}

// Byline returns the credit line shown in reports: up to limit authors for
// papers, the channel for videos.
func (c Candidate) Byline(limit int) string {
	if c.Kind == KindVideo {
		return c.Video.Channel
	}
	authors := c.Paper.Authors
	if limit > 0 && len(authors) > limit {
		authors = authors[:limit]
	}
	return strings.Join(authors, ", ")
}

// HasPublishedAt reports whether the publication date is known.
func (c Candidate) HasPublishedAt() bool {
	return !c.PublishedAt.IsZero()
}
