package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/research"
)

var runAt = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func runConfig() domain.RunConfiguration {
	return domain.RunConfiguration{
		Filter: domain.FilterPolicy{
			ExclusionTerms: []string{"medical"},
			RequiredTerms:  []string{"autonomous driving"},
		},
		Scoring: domain.ScoringPolicy{
			Quality:         domain.KeywordGroup{Name: "quality_indicators", Keywords: []string{"novel"}, Weight: domain.QualityWeight},
			Tutorial:        domain.KeywordGroup{Name: "tutorial_indicators", Keywords: []string{"tutorial"}, Weight: domain.TutorialWeight},
			RecencyBonusMax: 2.0,
		},
		DaysBack:    7,
		TopN:        map[domain.Kind]int{domain.KindPaper: 2, domain.KindVideo: 1},
		Concurrency: 2,
		Model:       "gemini",
	}
}

type fakeSource struct {
	mu     sync.Mutex
	byKind map[domain.Kind][]domain.Candidate
	err    error
	since  []time.Time
}

func (f *fakeSource) Fetch(_ context.Context, kind domain.Kind, since time.Time) ([]domain.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = append(f.since, since)
	if f.err != nil {
		return nil, f.err
	}
	return f.byKind[kind], nil
}

type summarizerFunc func(ctx context.Context, c domain.Candidate) (string, error)

func (f summarizerFunc) Summarize(ctx context.Context, c domain.Candidate) (string, error) {
	return f(ctx, c)
}

type fakeWriter struct {
	dir      string
	snapshot domain.Snapshot
	err      error
}

func (f *fakeWriter) Write(snapshot domain.Snapshot, dir string) error {
	f.snapshot, f.dir = snapshot, dir
	return f.err
}

type fakeRepository struct {
	saved []domain.Snapshot
	err   error
}

func (f *fakeRepository) SaveSnapshot(_ context.Context, snapshot domain.Snapshot) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, snapshot)
	return "run-1", nil
}

func (f *fakeRepository) LoadSnapshot(context.Context, string) (domain.Snapshot, error) {
	return domain.Snapshot{}, errors.New("not implemented")
}

type fakeDownloader struct {
	ids  []string
	fail map[string]bool
}

func (f *fakeDownloader) Download(_ context.Context, c domain.Candidate, dir string) (string, error) {
	f.ids = append(f.ids, c.ID)
	if f.fail[c.ID] {
		return "", errors.New("404")
	}
	return dir + "/" + c.ID + ".pdf", nil
}

type fakeArchiver struct{ err error }

func (f fakeArchiver) Archive(dir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return dir + ".zip", nil
}

type fakeUploader struct {
	path string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, path string) (string, error) {
	f.path = path
	if f.err != nil {
		return "", f.err
	}
	return "drive-1", nil
}

type fakeNotifier struct {
	digests []string
	err     error
}

func (f *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	f.digests = append(f.digests, digest)
	return f.err
}

func sourceFixture() *fakeSource {
	return &fakeSource{byKind: map[domain.Kind][]domain.Candidate{
		domain.KindPaper: {
			{ID: "p1", Kind: domain.KindPaper, Title: "Planner A", BodyText: "autonomous driving planner", PublishedAt: runAt.AddDate(0, 0, -5)},
			{ID: "p2", Kind: domain.KindPaper, Title: "Planner B", BodyText: "novel autonomous driving planner", PublishedAt: runAt.AddDate(0, 0, -1)},
			{ID: "p3", Kind: domain.KindPaper, Title: "Medical Imaging", BodyText: "medical autonomous driving"},
			{ID: "p4", Kind: domain.KindPaper, Title: "planner b ", BodyText: "autonomous driving duplicate"},
		},
		domain.KindVideo: {
			{ID: "v1", Kind: domain.KindVideo, Title: "Autonomous Driving Tutorial", BodyText: "tutorial", Video: domain.VideoFacet{Channel: "AD Lab"}},
			{ID: "v2", Kind: domain.KindVideo, Title: "Autonomous Driving Talk", BodyText: "talk"},
		},
	}}
}

func TestPipelineRun(t *testing.T) {
	t.Parallel()

	source := sourceFixture()
	writer := &fakeWriter{}
	repo := &fakeRepository{}
	downloader := &fakeDownloader{}
	uploader := &fakeUploader{}
	notifier := &fakeNotifier{}

	pipeline := NewPipeline(PipelineDeps{
		Config: runConfig(),
		Source: source,
		Summarizer: summarizerFunc(func(_ context.Context, c domain.Candidate) (string, error) {
			return "summary of " + c.ID, nil
		}),
		Writer:     writer,
		Repository: repo,
		Downloader: downloader,
		Archiver:   fakeArchiver{},
		Uploader:   uploader,
		Notifier:   notifier,
		OutputDir:  "/out",
	})

	res, err := pipeline.Run(context.Background(), runAt)
	require.NoError(t, err)

	require.Len(t, source.since, 2)
	assert.True(t, source.since[0].Equal(runAt.AddDate(0, 0, -7)))

	papers := res.Snapshot.Section(domain.KindPaper)
	require.Len(t, papers, 2)
	assert.Equal(t, "p2", papers[0].ID)
	assert.Equal(t, "p1", papers[1].ID)
	assert.Equal(t, "summary of p2", papers[0].Summary)
	assert.GreaterOrEqual(t, papers[0].Score, papers[1].Score)

	videos := res.Snapshot.Section(domain.KindVideo)
	require.Len(t, videos, 1)
	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, "summary of v1", videos[0].Summary)

	assert.Equal(t, "/out/research_2026-03-10", res.Dir)
	assert.Equal(t, res.Dir, writer.dir)
	assert.Equal(t, res.Snapshot, writer.snapshot)
	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, repo.saved, 1)

	assert.Equal(t, []string{"p2", "p1"}, downloader.ids)
	assert.Equal(t, 2, res.Downloaded)
	assert.Equal(t, "/out/research_2026-03-10.zip", uploader.path)
	assert.Equal(t, "drive-1", res.DriveFileID)

	require.Len(t, notifier.digests, 1)
	assert.Equal(t, research.Render(res.Snapshot), notifier.digests[0])
}

func TestPipelineRunWithoutSummarizer(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{Config: runConfig(), Source: sourceFixture()})
	res, err := pipeline.Run(context.Background(), runAt)
	require.NoError(t, err)

	for _, section := range res.Snapshot.Sections {
		for _, c := range section.Candidates {
			assert.Equal(t, research.NotConfiguredSummary, c.Summary)
		}
	}
}

func TestPipelineRunIsolatesCollaboratorFailures(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{err: errors.New("telegram down")}
	downloader := &fakeDownloader{fail: map[string]bool{"p2": true}}

	pipeline := NewPipeline(PipelineDeps{
		Config: runConfig(),
		Source: sourceFixture(),
		Summarizer: summarizerFunc(func(_ context.Context, c domain.Candidate) (string, error) {
			if c.ID == "p1" {
				return "", errors.New("quota")
			}
			return "ok", nil
		}),
		Writer:     &fakeWriter{},
		Repository: &fakeRepository{err: errors.New("db down")},
		Downloader: downloader,
		Archiver:   fakeArchiver{},
		Uploader:   &fakeUploader{err: errors.New("drive down")},
		Notifier:   notifier,
	})

	res, err := pipeline.Run(context.Background(), runAt)
	require.NoError(t, err)

	papers := res.Snapshot.Section(domain.KindPaper)
	require.Len(t, papers, 2)
	assert.Equal(t, "ok", papers[0].Summary)
	assert.Equal(t, research.FailedSummary, papers[1].Summary)

	assert.Empty(t, res.RunID)
	assert.Equal(t, 1, res.Downloaded)
	assert.NotEmpty(t, res.ArchivePath)
	assert.Empty(t, res.DriveFileID)
	assert.Len(t, notifier.digests, 1)
}

func TestPipelineRunFailsWhenReportCannotBeWritten(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{}
	pipeline := NewPipeline(PipelineDeps{
		Config:   runConfig(),
		Source:   sourceFixture(),
		Writer:   &fakeWriter{err: errors.New("disk full")},
		Notifier: notifier,
	})

	_, err := pipeline.Run(context.Background(), runAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write report")
	assert.Empty(t, notifier.digests)
}

func TestPipelineRunRejectsInvalidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := runConfig()
	cfg.DaysBack = 0
	source := sourceFixture()

	_, err := NewPipeline(PipelineDeps{Config: cfg, Source: source}).Run(context.Background(), runAt)
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, source.since)
}

func TestPipelineRunSourceError(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: context.Canceled}
	_, err := NewPipeline(PipelineDeps{Config: runConfig(), Source: source}).Run(context.Background(), runAt)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineRunNoCandidates(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	res, err := NewPipeline(PipelineDeps{
		Config: runConfig(),
		Source: &fakeSource{},
		Writer: writer,
	}).Run(context.Background(), runAt)
	require.NoError(t, err)

	require.Len(t, res.Snapshot.Sections, 2)
	assert.Empty(t, res.Snapshot.Section(domain.KindPaper))
	assert.Contains(t, research.Render(res.Snapshot), "Total papers analyzed: 0")
}
