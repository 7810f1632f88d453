package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
	"ResearchAgent/internal/research"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Only Source is required; every other nil adapter skips its step.
type PipelineDeps struct {
	Config     domain.RunConfiguration
	Source     ports.CandidateSource
	Summarizer ports.Summarizer
	Writer     ports.ReportWriter
	Repository ports.SnapshotRepository
	Downloader ports.Downloader
	Archiver   ports.Archiver
	Uploader   ports.Uploader
	Notifier   ports.Notifier
	OutputDir  string
	Logger     *slog.Logger
}

// Pipeline implements the research run: fetch, prepare, summarize,
// aggregate, then publish the snapshot.
type Pipeline struct {
	cfg          domain.RunConfiguration
	source       ports.CandidateSource
	summarizer   ports.Summarizer
	writer       ports.ReportWriter
	repository   ports.SnapshotRepository
	downloader   ports.Downloader
	archiver     ports.Archiver
	uploader     ports.Uploader
	notifier     ports.Notifier
	outputDir    string
	orchestrator *research.Orchestrator
	logger       *slog.Logger
}

// Result describes what a run produced.
type Result struct {
	Snapshot    domain.Snapshot
	Dir         string
	RunID       string
	Downloaded  int
	ArchivePath string
	DriveFileID string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:          deps.Config,
		source:       deps.Source,
		summarizer:   deps.Summarizer,
		writer:       deps.Writer,
		repository:   deps.Repository,
		downloader:   deps.Downloader,
		archiver:     deps.Archiver,
		uploader:     deps.Uploader,
		notifier:     deps.Notifier,
		outputDir:    deps.OutputDir,
		orchestrator: research.NewOrchestrator(deps.Config.Concurrency, deps.Config.SummarizeTimeout, deps.Logger),
		logger:       deps.Logger,
	}
}

// RunDir returns <base>/research_<YYYY-MM-DD> for the run date.
func RunDir(base string, day time.Time) string {
	return filepath.Join(base, "research_"+day.Format("2006-01-02"))
}

// Run executes one research pass as of now. Only configuration errors,
// source errors and failing to write the report abort the run; later steps
// are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return Result{}, err
	}
	if p.source == nil {
		return Result{}, fmt.Errorf("candidate source is not configured")
	}

	since := p.cfg.Since(now)
	p.info("research run started", "since", since.Format("2006-01-02"), "model", p.cfg.Model, "summarizer_configured", p.summarizer != nil)

	byKind := make(map[domain.Kind][]domain.Candidate)
	for _, kind := range p.cfg.Kinds() {
		raw, err := p.source.Fetch(ctx, kind, since)
		if err != nil {
			return Result{}, fmt.Errorf("fetch %s: %w", kind.Plural(), err)
		}

		top, err := research.Prepare(raw, p.cfg, kind, now, p.logger)
		if err != nil {
			return Result{}, fmt.Errorf("prepare %s: %w", kind.Plural(), err)
		}

		p.info("summarizing candidates", "kind", kind, "count", len(top))
		byKind[kind] = p.orchestrator.SummarizeAll(ctx, top, p.summarizer)
	}

	res := Result{
		Snapshot: research.Aggregate(byKind, now, p.cfg.Model),
		Dir:      RunDir(p.outputDir, now),
	}

	if p.writer != nil {
		if err := p.writer.Write(res.Snapshot, res.Dir); err != nil {
			return res, fmt.Errorf("write report: %w", err)
		}
		p.info("report written", "dir", res.Dir)
	}

	if p.repository != nil {
		runID, err := p.repository.SaveSnapshot(ctx, res.Snapshot)
		if err != nil {
			p.warn("persist snapshot failed", "error", err)
		} else {
			res.RunID = runID
		}
	}

	if p.downloader != nil {
		res.Downloaded = p.download(ctx, res.Snapshot, res.Dir)
	}

	if p.archiver != nil && p.uploader != nil {
		res.ArchivePath, res.DriveFileID = p.upload(ctx, res.Dir)
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, research.Render(res.Snapshot)); err != nil {
			p.warn("publish digest failed", "error", err)
		}
	}

	p.info("research run finished", "dir", res.Dir, "run_id", res.RunID, "downloaded", res.Downloaded, "drive_file", res.DriveFileID)
	return res, nil
}

func (p *Pipeline) download(ctx context.Context, snapshot domain.Snapshot, dir string) int {
	var count int
	for _, c := range snapshot.Section(domain.KindPaper) {
		path, err := p.downloader.Download(ctx, c, dir)
		if err != nil {
			p.warn("download failed", "id", c.ID, "title", c.Title, "error", err)
			continue
		}
		if path != "" {
			count++
		}
	}
	return count
}

func (p *Pipeline) upload(ctx context.Context, dir string) (string, string) {
	archivePath, err := p.archiver.Archive(dir)
	if err != nil {
		p.warn("archive failed", "dir", dir, "error", err)
		return "", ""
	}

	fileID, err := p.uploader.Upload(ctx, archivePath)
	if err != nil {
		p.warn("upload failed", "archive", archivePath, "error", err)
		return archivePath, ""
	}
	return archivePath, fileID
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
