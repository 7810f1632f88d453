// Package youtube searches the YouTube Data API v3 for video candidates.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/scanner"
)

const (
	defaultBaseURL    = "https://www.googleapis.com"
	defaultMaxResults = 20
	watchURL          = "https://www.youtube.com/watch?v="
)

// HTTPClient allows injecting a custom transport in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the Searcher.
type Option func(*Searcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return func(s *Searcher) {
		s.httpClient = client
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) Option {
	return func(s *Searcher) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger attaches a component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// Searcher runs keyword searches and enriches hits with statistics and
// duration.
type Searcher struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger
}

var _ scanner.Scanner = (*Searcher)(nil)

// NewSearcher creates a searcher authenticated with an API key.
func NewSearcher(apiKey string, opts ...Option) *Searcher {
	s := &Searcher{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind identifies the strategy inside the registry.
func (s *Searcher) Kind() domain.Kind {
	return domain.KindVideo
}

// Scan searches one term for videos published after req.Since.
func (s *Searcher) Scan(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	if strings.TrimSpace(req.Term) == "" {
		return nil, fmt.Errorf("empty search term")
	}
	if s.apiKey == "" {
		return nil, fmt.Errorf("youtube api key is not configured")
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", req.Term)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(maxResults))
	if !req.Since.IsZero() {
		params.Set("publishedAfter", req.Since.UTC().Format(time.RFC3339))
	}

	var search searchResponse
	if err := s.getJSON(ctx, "/youtube/v3/search", params, &search); err != nil {
		return nil, fmt.Errorf("search %q: %w", req.Term, err)
	}
	if len(search.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}

	details, err := s.fetchDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("video details for %q: %w", req.Term, err)
	}

	videos := make([]domain.Candidate, 0, len(ids))
	for _, item := range search.Items {
		if item.ID.VideoID == "" {
			continue
		}
		var published time.Time
		if parsed, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			published = parsed.UTC()
		}

		d := details[item.ID.VideoID]
		videos = append(videos, domain.Candidate{
			ID:          item.ID.VideoID,
			Kind:        domain.KindVideo,
			Title:       item.Snippet.Title,
			BodyText:    item.Snippet.Description,
			PublishedAt: published,
			URL:         watchURL + item.ID.VideoID,
			Video: domain.VideoFacet{
				Channel:   item.Snippet.ChannelTitle,
				Duration:  d.duration,
				ViewCount: d.views,
				LikeCount: d.likes,
			},
		})
	}

	s.debug("youtube term scanned", "term", req.Term, "count", len(videos))
	return videos, nil
}

type videoDetails struct {
	views    uint64
	likes    uint64
	duration time.Duration
}

func (s *Searcher) fetchDetails(ctx context.Context, ids []string) (map[string]videoDetails, error) {
	params := url.Values{}
	params.Set("part", "statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var resp videosResponse
	if err := s.getJSON(ctx, "/youtube/v3/videos", params, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]videoDetails, len(resp.Items))
	for _, item := range resp.Items {
		views, _ := strconv.ParseUint(item.Statistics.ViewCount, 10, 64)
		likes, _ := strconv.ParseUint(item.Statistics.LikeCount, 10, 64)
		dur, err := ParseDuration(item.ContentDetails.Duration)
		if err != nil {
			s.debug("unparsable video duration", "id", item.ID, "duration", item.ContentDetails.Duration)
		}
		out[item.ID] = videoDetails{views: views, likes: likes, duration: dur}
	}
	return out, nil
}

func (s *Searcher) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	endpoint := s.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

const apiKeyHeader = "x-goog-api-key"

func apiError(status int) error {
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("bad request (400)")
	case http.StatusForbidden:
		return fmt.Errorf("quota exceeded or key rejected (403)")
	case http.StatusTooManyRequests:
		return fmt.Errorf("rate limited (429)")
	default:
		return fmt.Errorf("youtube api error: status %d", status)
	}
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO-8601 duration such as PT1H2M3S. An empty
// string is a zero duration.
func ParseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	m := isoDuration.FindStringSubmatch(raw)
	if m == nil || raw == "P" || raw == "PT" {
		return 0, fmt.Errorf("invalid iso-8601 duration %q", raw)
	}

	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid iso-8601 duration %q: %w", raw, err)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}

func (s *Searcher) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}
