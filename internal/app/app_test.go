package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ResearchAgent/internal/config"
	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/infrastructure/storage"
	"ResearchAgent/internal/logging"
	"ResearchAgent/internal/research"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2603.00001v1</id>
    <published>2999-01-01T00:00:00Z</published>
    <title>End-to-End Autonomous Driving Planner</title>
    <summary>A novel end-to-end autonomous driving planner. Code on GitHub.</summary>
    <author><name>Ada Lovelace</name></author>
  </entry>
</feed>`

func TestApplicationRunEndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Sources.Arxiv.Endpoint = server.URL
	cfg.SearchTerms.Papers = []string{"end-to-end driving"}
	cfg.Research.IncludeVideos = true
	cfg.Sources.YouTube.APIKey = ""
	cfg.Research.DownloadPapers = false
	cfg.Research.RequestsPerSecond = 1000
	cfg.Research.OutputDir = t.TempDir()
	cfg.Summarizer.Model = config.ModelTemplate
	cfg.Database.Driver = storage.DriverSQLite
	cfg.Database.DSN = ":memory:"

	application, err := New(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer application.Close()

	res, err := application.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(res.Snapshot.Sections) != 1 || res.Snapshot.Sections[0].Kind != domain.KindPaper {
		t.Fatalf("expected only a paper section without a youtube key, got %+v", res.Snapshot.Sections)
	}
	papers := res.Snapshot.Section(domain.KindPaper)
	if len(papers) != 1 || !strings.HasPrefix(papers[0].Summary, "Technical summary of") {
		t.Fatalf("unexpected papers %+v", papers)
	}
	if res.RunID == "" {
		t.Fatalf("expected snapshot to be persisted")
	}

	report, err := os.ReadFile(filepath.Join(res.Dir, storage.ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(report) != research.Render(res.Snapshot) {
		t.Fatalf("report file does not match rendered snapshot")
	}
}

func TestNewRejectsInvalidRunConfiguration(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Research.DaysBack = 0

	_, err = New(context.Background(), cfg, logging.Discard())
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
