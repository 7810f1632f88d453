package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ResearchAgent/internal/domain"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "RESEARCH_AGENT_CONFIG"
)

// Summarizer model names accepted by --model and summarizer.model.
const (
	ModelGemini   = "gemini"
	ModelKimi     = "kimi"
	ModelGPT      = "gpt"
	ModelService  = "service"
	ModelTemplate = "template"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging        LoggingConfig      `yaml:"logging"`
	Research       ResearchConfig     `yaml:"research"`
	SearchTerms    SearchTermsConfig  `yaml:"searchTerms"`
	ExclusionTerms []string           `yaml:"exclusionTerms"`
	RequiredTerms  []string           `yaml:"requiredTerms"`
	Ranking        RankingConfig      `yaml:"ranking"`
	Summarizer     SummarizerConfig   `yaml:"summarizer"`
	Sources        SourcesConfig      `yaml:"sources"`
	Database       DatabaseConfig     `yaml:"database"`
	Scheduler      SchedulerConfig    `yaml:"scheduler"`
	Notifications  NotificationConfig `yaml:"notifications"`
	Drive          DriveConfig        `yaml:"drive"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ResearchConfig describes run sizing and optional post-processing steps.
type ResearchConfig struct {
	DaysBack          int           `yaml:"daysBack"`
	TopPapers         int           `yaml:"topPapers"`
	TopVideos         int           `yaml:"topVideos"`
	ParallelWorkers   int           `yaml:"parallelWorkers"`
	SummarizeTimeout  time.Duration `yaml:"summarizeTimeout"`
	MaxResultsPerTerm int           `yaml:"maxResultsPerTerm"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	OutputDir         string        `yaml:"outputDir"`
	DownloadPapers    bool          `yaml:"downloadPapers"`
	UploadToDrive     bool          `yaml:"uploadToDrive"`
	IncludeVideos     bool          `yaml:"includeVideos"`
}

// SearchTermsConfig lists the queries sent to each source.
type SearchTermsConfig struct {
	Papers []string `yaml:"papers"`
	Videos []string `yaml:"videos"`
}

// RankingConfig mirrors domain.ScoringPolicy in file form.
type RankingConfig struct {
	QualityIndicators     []string `yaml:"qualityIndicators"`
	ImpactIndicators      []string `yaml:"impactIndicators"`
	InnovationIndicators  []string `yaml:"innovationIndicators"`
	TutorialIndicators    []string `yaml:"tutorialIndicators"`
	ScientificIndicators  []string `yaml:"scientificIndicators"`
	PracticalIndicators   []string `yaml:"practicalIndicators"`
	CodeAvailabilityBonus float64  `yaml:"codeAvailabilityBonus"`
	AbstractLengthBonus   float64  `yaml:"abstractLengthBonus"`
	RecencyBonusMax       float64  `yaml:"recencyBonusMax"`
}

// SummarizerConfig selects and configures the summarization backend.
type SummarizerConfig struct {
	Model       string         `yaml:"model"`
	APIKey      string         `yaml:"apiKey"`
	MaxTokens   int            `yaml:"maxTokens"`
	Temperature float64        `yaml:"temperature"`
	Gemini      EndpointConfig `yaml:"gemini"`
	OpenAI      EndpointConfig `yaml:"openai"`
	Kimi        EndpointConfig `yaml:"kimi"`
	Service     EndpointConfig `yaml:"service"`
}

// EndpointConfig describes one HTTP model provider.
type EndpointConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// SourcesConfig groups settings for candidate sources.
type SourcesConfig struct {
	Arxiv   ArxivConfig   `yaml:"arxiv"`
	YouTube YouTubeConfig `yaml:"youtube"`
}

// ArxivConfig points at the arXiv query API.
type ArxivConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// YouTubeConfig points at the YouTube Data API v3.
type YouTubeConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
}

// DatabaseConfig describes where run snapshots are stored. An empty DSN
// disables persistence.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatId"`
}

// DriveConfig holds the OAuth client and target folder for uploads.
type DriveConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RefreshToken string `yaml:"refreshToken"`
	FolderID     string `yaml:"folderId"`
	TokenURL     string `yaml:"tokenUrl"`
	UploadURL    string `yaml:"uploadUrl"`
}

// Load reads the YAML file at path (or $RESEARCH_AGENT_CONFIG), validates
// it, merges it over the defaults and applies environment overrides. Any
// problem is returned as a *domain.ConfigurationError.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, &domain.ConfigurationError{Field: "file", Reason: "cannot read " + path, Err: err}
		}
		if err := cfg.decode(raw); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes raw YAML over the defaults without consulting the
// environment.
func Parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := cfg.decode(raw); err != nil {
		return Config{}, err
	}
	cfg.bindTimezone()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := validateDocument(raw); err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return &domain.ConfigurationError{Field: "file", Reason: "cannot parse yaml", Err: err}
	}
	return nil
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// Validate checks cross-field rules the schema cannot express.
func (c Config) Validate() error {
	if err := c.Run().Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Summarizer.Model) {
	case ModelGemini, ModelKimi, ModelGPT, ModelService, ModelTemplate:
	default:
		return domain.NewConfigurationError("summarizer.model", fmt.Sprintf("unknown model %q", c.Summarizer.Model))
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return domain.NewConfigurationError("database.driver", fmt.Sprintf("unsupported driver %q", c.Database.Driver))
	}
	if c.Research.RequestsPerSecond <= 0 {
		return domain.NewConfigurationError("research.requestsPerSecond", "must be > 0")
	}
	if c.Research.MaxResultsPerTerm < 1 {
		return domain.NewConfigurationError("research.maxResultsPerTerm", "must be >= 1")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return &domain.ConfigurationError{Field: "scheduler.timezone", Reason: "unknown timezone", Err: err}
	}
	return nil
}

// Run builds the immutable policy aggregate handed to the pipeline.
func (c Config) Run() domain.RunConfiguration {
	r := c.Ranking
	top := map[domain.Kind]int{domain.KindPaper: c.Research.TopPapers}
	if c.Research.IncludeVideos {
		top[domain.KindVideo] = c.Research.TopVideos
	}

	return domain.RunConfiguration{
		Filter: domain.FilterPolicy{
			ExclusionTerms: clone(c.ExclusionTerms),
			RequiredTerms:  clone(c.RequiredTerms),
		},
		Scoring: domain.ScoringPolicy{
			Quality:               group("quality_indicators", r.QualityIndicators, domain.QualityWeight),
			Impact:                group("impact_indicators", r.ImpactIndicators, domain.ImpactWeight),
			Innovation:            group("innovation_indicators", r.InnovationIndicators, domain.InnovationWeight),
			Tutorial:              group("tutorial_indicators", r.TutorialIndicators, domain.TutorialWeight),
			Scientific:            group("scientific_indicators", r.ScientificIndicators, domain.ScientificWeight),
			Practical:             group("practical_indicators", r.PracticalIndicators, domain.PracticalWeight),
			CodeAvailabilityBonus: r.CodeAvailabilityBonus,
			AbstractLengthBonus:   r.AbstractLengthBonus,
			RecencyBonusMax:       r.RecencyBonusMax,
		},
		DaysBack:         c.Research.DaysBack,
		TopN:             top,
		Concurrency:      c.Research.ParallelWorkers,
		SummarizeTimeout: c.Research.SummarizeTimeout,
		Model:            strings.ToLower(c.Summarizer.Model),
	}
}

// Terms returns the search terms configured for kind.
func (c Config) Terms(kind domain.Kind) []string {
	switch kind {
	case domain.KindPaper:
		return clone(c.SearchTerms.Papers)
	case domain.KindVideo:
		return clone(c.SearchTerms.Videos)
	default:
		return nil
	}
}

// Endpoint resolves the provider settings of the selected model. The
// provider-specific key wins over the generic summarizer key.
func (s SummarizerConfig) Endpoint() EndpointConfig {
	var ep EndpointConfig
	switch strings.ToLower(s.Model) {
	case ModelGemini:
		ep = s.Gemini
	case ModelKimi:
		ep = s.Kimi
	case ModelGPT:
		ep = s.OpenAI
	case ModelService:
		ep = s.Service
	}
	if ep.APIKey == "" {
		ep.APIKey = s.APIKey
	}
	return ep
}

// OverrideAPIKey makes key the credential of the selected provider, winning
// over every file or environment setting.
func (s *SummarizerConfig) OverrideAPIKey(key string) {
	s.APIKey = key
	switch strings.ToLower(s.Model) {
	case ModelGemini:
		s.Gemini.APIKey = key
	case ModelKimi:
		s.Kimi.APIKey = key
	case ModelGPT:
		s.OpenAI.APIKey = key
	case ModelService:
		s.Service.APIKey = key
	}
}

func group(name string, keywords []string, weight float64) domain.KeywordGroup {
	return domain.KeywordGroup{Name: name, Keywords: clone(keywords), Weight: weight}
}

func clone(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
