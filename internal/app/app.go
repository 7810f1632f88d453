package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"ResearchAgent/internal/config"
	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/infrastructure/archive"
	"ResearchAgent/internal/infrastructure/download"
	"ResearchAgent/internal/infrastructure/drive"
	"ResearchAgent/internal/infrastructure/llm"
	"ResearchAgent/internal/infrastructure/parser"
	"ResearchAgent/internal/infrastructure/scheduler"
	"ResearchAgent/internal/infrastructure/storage"
	"ResearchAgent/internal/infrastructure/telegram"
	"ResearchAgent/internal/infrastructure/youtube"
	"ResearchAgent/internal/logging"
	"ResearchAgent/internal/scanner"
	"ResearchAgent/internal/usecase"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	base       *slog.Logger
	logger     *slog.Logger
	pipeline   *usecase.Pipeline
	repository *storage.SQLRepository
}

// New builds the application from a validated configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	log := logging.Component(baseLogger, "app")

	if cfg.Research.IncludeVideos && cfg.Sources.YouTube.APIKey == "" {
		log.Warn("youtube api key missing, videos disabled")
		cfg.Research.IncludeVideos = false
	}
	run := cfg.Run()
	if err := run.Validate(); err != nil {
		return nil, err
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewArxivScanner(nil, cfg.Sources.Arxiv.Endpoint, logging.Component(baseLogger, "scanner.arxiv")))
	if cfg.Research.IncludeVideos {
		registry.Register(youtube.NewSearcher(cfg.Sources.YouTube.APIKey,
			youtube.WithBaseURL(cfg.Sources.YouTube.BaseURL),
			youtube.WithLogger(logging.Component(baseLogger, "scanner.youtube"))))
	}

	terms := make(map[domain.Kind][]string, len(registry.Kinds()))
	for _, kind := range registry.Kinds() {
		terms[kind] = cfg.Terms(kind)
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.Research.RequestsPerSecond), 1)
	source := parser.NewStrategySource(registry, terms, cfg.Research.MaxResultsPerTerm, limiter, logging.Component(baseLogger, "source"))

	summarizer, err := llm.New(cfg.Summarizer, nil)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "summarizer.model", Err: err}
	}
	if summarizer == nil {
		log.Warn("no api key for summarizer, summaries disabled", "model", run.Model)
	}

	deps := usecase.PipelineDeps{
		Config:     run,
		Source:     source,
		Summarizer: summarizer,
		Writer:     storage.FileWriter{},
		OutputDir:  cfg.Research.OutputDir,
		Logger:     logging.Component(baseLogger, "pipeline"),
	}

	application := &Application{cfg: cfg, base: baseLogger, logger: log}

	if cfg.Database.DSN != "" {
		driver := cfg.Database.Driver
		if driver == "" {
			driver = storage.DriverSQLite
		}
		repo, err := storage.Open(driver, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open repository: %w", err)
		}
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		application.repository = repo
		deps.Repository = repo
	}

	if cfg.Research.DownloadPapers {
		deps.Downloader = download.NewHTTPDownloader(nil, logging.Component(baseLogger, "download"))
	}

	if cfg.Research.UploadToDrive {
		uploader := drive.NewUploader(cfg.Drive, nil)
		if uploader.Configured() {
			deps.Archiver = archive.Zipper{}
			deps.Uploader = uploader
		} else {
			log.Warn("drive upload enabled but credentials missing, upload skipped")
		}
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != 0 {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, "", nil)
	}

	application.pipeline = usecase.NewPipeline(deps)
	return application, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (usecase.Result, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.Run(ctx, now)
}

// Schedule runs the pipeline on the configured cron expression until ctx is
// cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), logging.Component(a.base, "scheduler"))
	if err != nil {
		return &domain.ConfigurationError{Field: "scheduler.cronExpression", Err: err}
	}

	sched := usecase.NewScheduler(driver, a.pipeline, logging.Component(a.base, "schedule"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Close releases the repository connection, if any.
func (a *Application) Close() error {
	if a.repository == nil {
		return nil
	}
	return a.repository.Close()
}
