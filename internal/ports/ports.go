package ports

import (
	"context"
	"time"

	"ResearchAgent/internal/domain"
)

// CandidateSource collects raw candidates of a kind across all configured
// search terms. Failing terms are skipped, not returned.
type CandidateSource interface {
	Fetch(ctx context.Context, kind domain.Kind, since time.Time) ([]domain.Candidate, error)
}

// Summarizer produces a natural-language summary for one candidate.
type Summarizer interface {
	Summarize(ctx context.Context, candidate domain.Candidate) (string, error)
}

// SnapshotRepository persists run snapshots.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) (string, error)
	LoadSnapshot(ctx context.Context, runID string) (domain.Snapshot, error)
}

// ReportWriter stores the JSON results and the text report in dir.
type ReportWriter interface {
	Write(snapshot domain.Snapshot, dir string) error
}

// Downloader fetches the binary artifact of a candidate into dir.
type Downloader interface {
	Download(ctx context.Context, candidate domain.Candidate, dir string) (string, error)
}

// Archiver packages a run directory into a single file.
type Archiver interface {
	Archive(dir string) (string, error)
}

// Uploader pushes a packaged run to remote storage and returns its id.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Notifier streams rendered digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
