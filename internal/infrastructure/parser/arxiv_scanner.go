package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/scanner"
)

const (
	arxivAPIURL       = "https://export.arxiv.org/api/query"
	defaultMaxResults = 20
)

// ArxivScanner queries the arXiv Atom API and converts entries to paper
// candidates.
type ArxivScanner struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

var _ scanner.Scanner = (*ArxivScanner)(nil)

// NewArxivScanner wires an HTTP client; endpoint defaults to the public API.
func NewArxivScanner(client *http.Client, endpoint string, logger *slog.Logger) *ArxivScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if endpoint == "" {
		endpoint = arxivAPIURL
	}
	return &ArxivScanner{client: client, endpoint: endpoint, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (a *ArxivScanner) Kind() domain.Kind {
	return domain.KindPaper
}

// Scan runs one search term, newest submissions first, and keeps entries
// published at or after req.Since.
func (a *ArxivScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	if strings.TrimSpace(req.Term) == "" {
		return nil, fmt.Errorf("empty search term")
	}

	queryURL, err := buildQueryURL(a.endpoint, req.Term, req.MaxResults)
	if err != nil {
		return nil, err
	}

	doc, err := a.fetchDocument(ctx, queryURL)
	if err != nil {
		return nil, fmt.Errorf("term %q: %w", req.Term, err)
	}

	var results []domain.Candidate
	doc.Find("entry").Each(func(_ int, entry *goquery.Selection) {
		paper, err := parseEntry(entry)
		if err != nil {
			a.debug("skip arxiv entry", "term", req.Term, "error", err)
			return
		}
		if !req.Since.IsZero() && paper.HasPublishedAt() && paper.PublishedAt.Before(req.Since) {
			return
		}
		results = append(results, paper)
	})

	a.debug("arxiv term scanned", "term", req.Term, "count", len(results))
	return results, nil
}

func (a *ArxivScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ResearchAgent/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return doc, nil
}

func parseEntry(entry *goquery.Selection) (domain.Candidate, error) {
	absURL := strings.TrimSpace(entry.Find("id").First().Text())
	if alt, ok := entry.Find(`link[rel="alternate"]`).First().Attr("href"); ok && alt != "" {
		absURL = alt
	}
	shortID := shortArxivID(absURL)
	if shortID == "" {
		return domain.Candidate{}, fmt.Errorf("entry without id")
	}

	title := collapseSpace(entry.Find("title").First().Text())
	if title == "" {
		return domain.Candidate{}, fmt.Errorf("entry %s without title", shortID)
	}

	var authors []string
	entry.Find("author name").Each(func(_ int, name *goquery.Selection) {
		if n := collapseSpace(name.Text()); n != "" {
			authors = append(authors, n)
		}
	})

	pdfURL, _ := entry.Find(`link[title="pdf"]`).First().Attr("href")
	if pdfURL == "" {
		pdfURL = strings.Replace(absURL, "/abs/", "/pdf/", 1)
	}

	var published time.Time
	if raw := strings.TrimSpace(entry.Find("published").First().Text()); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			published = parsed.UTC()
		}
	}

	return domain.Candidate{
		ID:          shortID,
		Kind:        domain.KindPaper,
		Title:       title,
		BodyText:    collapseSpace(entry.Find("summary").First().Text()),
		PublishedAt: published,
		URL:         absURL,
		Paper: domain.PaperFacet{
			Authors:    authors,
			SourceURL:  pdfURL,
			ExternalID: shortID,
		},
	}, nil
}

// shortArxivID returns the part after /abs/, e.g. 2501.00001v1.
func shortArxivID(absURL string) string {
	if i := strings.Index(absURL, "/abs/"); i >= 0 {
		return strings.Trim(absURL[i+len("/abs/"):], "/")
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func buildQueryURL(base, term string, maxResults int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid arxiv endpoint %s: %w", base, err)
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	query := parsed.Query()
	query.Set("search_query", "all:"+term)
	query.Set("start", "0")
	query.Set("max_results", strconv.Itoa(maxResults))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (a *ArxivScanner) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
