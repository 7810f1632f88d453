package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/scanner"
)

const searchFixture = `{
  "items": [
    {"id": {"videoId": "vid1"}, "snippet": {"title": "BEV Tutorial", "description": "step by step guide", "channelTitle": "AD Lab", "publishedAt": "2026-03-08T09:00:00Z"}},
    {"id": {"videoId": "vid2"}, "snippet": {"title": "Planner Talk", "description": "conference keynote", "channelTitle": "Conf", "publishedAt": "bogus"}}
  ]
}`

const videosFixture = `{
  "items": [
    {"id": "vid1", "statistics": {"viewCount": "12000", "likeCount": "800"}, "contentDetails": {"duration": "PT1H2M3S"}},
    {"id": "vid2", "statistics": {"viewCount": "nope"}, "contentDetails": {"duration": "PT45S"}}
  ]
}`

func TestSearcherScan(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, q.Get("key"))
		switch r.URL.Path {
		case "/youtube/v3/search":
			assert.Equal(t, "bev perception", q.Get("q"))
			assert.Equal(t, "video", q.Get("type"))
			assert.Equal(t, "5", q.Get("maxResults"))
			assert.Equal(t, "2026-03-03T00:00:00Z", q.Get("publishedAfter"))
			_, _ = w.Write([]byte(searchFixture))
		case "/youtube/v3/videos":
			assert.Equal(t, "vid1,vid2", q.Get("id"))
			_, _ = w.Write([]byte(videosFixture))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := NewSearcher("secret", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	assert.Equal(t, domain.KindVideo, s.Kind())

	videos, err := s.Scan(context.Background(), scanner.Request{Term: "bev perception", Since: since, MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, videos, 2)

	first := videos[0]
	assert.Equal(t, "vid1", first.ID)
	assert.Equal(t, domain.KindVideo, first.Kind)
	assert.Equal(t, "step by step guide", first.BodyText)
	assert.Equal(t, "AD Lab", first.Video.Channel)
	assert.Equal(t, uint64(12000), first.Video.ViewCount)
	assert.Equal(t, uint64(800), first.Video.LikeCount)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second, first.Video.Duration)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1", first.URL)
	assert.True(t, first.PublishedAt.Equal(time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)))

	second := videos[1]
	assert.False(t, second.HasPublishedAt())
	assert.Zero(t, second.Video.ViewCount)
	assert.Equal(t, 45*time.Second, second.Video.Duration)
}

func TestSearcherScanErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s := NewSearcher("secret", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := s.Scan(context.Background(), scanner.Request{Term: "planning"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = NewSearcher("").Scan(context.Background(), scanner.Request{Term: "planning"})
	require.Error(t, err)
}

func TestSearcherTransportErrorHidesKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	s := NewSearcher("YTSECRET", WithBaseURL(baseURL))
	_, err := s.Scan(context.Background(), scanner.Request{Term: "planning"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "YTSECRET")
}

func TestSearcherNoHits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	s := NewSearcher("secret", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	videos, err := s.Scan(context.Background(), scanner.Request{Term: "planning"})
	require.NoError(t, err)
	assert.Empty(t, videos)
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseDuration(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Duration{
		"":         0,
		"PT45S":    45 * time.Second,
		"PT10M":    10 * time.Minute,
		"PT1H2M3S": time.Hour + 2*time.Minute + 3*time.Second,
		"P1DT2H":   26 * time.Hour,
	}
	for raw, want := range cases {
		got, err := ParseDuration(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"P", "PT", "1H", "PT1X"} {
		_, err := ParseDuration(raw)
		assert.Error(t, err, raw)
	}
}
