// Package download stores paper PDFs next to the run report.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
)

const maxFileNameRunes = 100

// HTTPDownloader fetches paper PDFs over HTTP.
type HTTPDownloader struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.Downloader = (*HTTPDownloader)(nil)

// NewHTTPDownloader builds a downloader; a nil client gets a 30s timeout.
func NewHTTPDownloader(client *http.Client, logger *slog.Logger) *HTTPDownloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPDownloader{client: client, logger: logger}
}

// Download saves the candidate's PDF as <safe title>.pdf in dir and returns
// the path. Non-paper candidates are skipped with an empty path.
func (d *HTTPDownloader) Download(ctx context.Context, candidate domain.Candidate, dir string) (string, error) {
	if candidate.Kind != domain.KindPaper {
		return "", nil
	}
	if candidate.Paper.SourceURL == "" {
		return "", fmt.Errorf("paper %q has no pdf url", candidate.Title)
	}

	name := SafeFileName(candidate.Title)
	if name == "" {
		name = SafeFileName(candidate.ID)
	}
	if name == "" {
		return "", fmt.Errorf("paper %q has no usable file name", candidate.Title)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate.Paper.SourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "ResearchAgent/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch pdf: unexpected status %s", resp.Status)
	}

	path := filepath.Join(dir, name+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	if d.logger != nil {
		d.logger.Debug("paper downloaded", "title", candidate.Title, "path", path)
	}
	return path, nil
}

// SafeFileName keeps letters, digits, spaces, '-' and '_', trims trailing
// spaces and caps the result at 100 runes.
func SafeFileName(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	name := []rune(strings.TrimRight(b.String(), " "))
	if len(name) > maxFileNameRunes {
		name = name[:maxFileNameRunes]
	}
	return string(name)
}
