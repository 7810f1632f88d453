package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ResearchAgent/internal/domain"
)

func TestSafeFileName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"BEV-Former: Spatio/Temporal Fusion!": "BEV-Former SpatioTemporal Fusion",
		"trailing space ?":                    "trailing space",
		"???":                                 "",
		"Über_Planner 2":                      "Über_Planner 2",
	}
	for in, want := range cases {
		if got := SafeFileName(in); got != want {
			t.Fatalf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}

	if got := SafeFileName(strings.Repeat("a", 150)); len(got) != 100 {
		t.Fatalf("expected 100 runes, got %d", len(got))
	}
}

func TestHTTPDownloaderDownload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "run")
	d := NewHTTPDownloader(server.Client(), nil)

	path, err := d.Download(context.Background(), domain.Candidate{
		Kind:  domain.KindPaper,
		Title: "Planner: v2",
		Paper: domain.PaperFacet{SourceURL: server.URL + "/pdf/1"},
	}, dir)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if filepath.Base(path) != "Planner v2.pdf" {
		t.Fatalf("unexpected file name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "%PDF-1.7" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}

	if _, err := d.Download(context.Background(), domain.Candidate{
		Kind:  domain.KindPaper,
		Title: "Gone",
		Paper: domain.PaperFacet{SourceURL: server.URL + "/missing"},
	}, dir); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestHTTPDownloaderSkipsVideos(t *testing.T) {
	t.Parallel()

	d := NewHTTPDownloader(nil, nil)
	path, err := d.Download(context.Background(), domain.Candidate{Kind: domain.KindVideo, Title: "Talk"}, t.TempDir())
	if err != nil || path != "" {
		t.Fatalf("expected skip, got %q, %v", path, err)
	}
}
