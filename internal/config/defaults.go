package config

import "time"

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Research: ResearchConfig{
			DaysBack:          7,
			TopPapers:         10,
			TopVideos:         5,
			ParallelWorkers:   3,
			SummarizeTimeout:  90 * time.Second,
			MaxResultsPerTerm: 20,
			RequestsPerSecond: 1,
			OutputDir:         ".",
			DownloadPapers:    true,
			IncludeVideos:     true,
		},
		SearchTerms: SearchTermsConfig{
			Papers: []string{
				"autonomous driving",
				"self-driving",
				"end-to-end driving",
				"motion planning autonomous vehicle",
				"trajectory prediction driving",
				"BEV perception",
			},
			Videos: []string{
				"autonomous driving research",
				"self-driving car paper explained",
			},
		},
		ExclusionTerms: []string{
			"medical", "protein", "molecular", "drug discovery", "stock market",
		},
		RequiredTerms: []string{
			"autonomous driving", "automated driving", "self-driving", "autonomous vehicle",
			"end to end driving", "motion planning", "trajectory prediction", "driver assistance",
		},
		Ranking: RankingConfig{
			QualityIndicators:    []string{"state-of-the-art", "outperforms", "extensive experiments", "benchmark", "real-world"},
			ImpactIndicators:     []string{"safety", "deployment", "large-scale", "significant improvement", "dataset"},
			InnovationIndicators: []string{"novel", "first", "new paradigm", "end-to-end", "foundation model"},
			TutorialIndicators:   []string{"tutorial", "explained", "step by step", "how to", "walkthrough"},
			ScientificIndicators: []string{"paper", "research", "arxiv", "study", "experiment"},
			PracticalIndicators:  []string{"demo", "real world", "hands-on", "deployment", "project"},

			CodeAvailabilityBonus: 2.0,
			AbstractLengthBonus:   0.5,
			RecencyBonusMax:       2.0,
		},
		Summarizer: SummarizerConfig{
			Model:       ModelGemini,
			MaxTokens:   500,
			Temperature: 0.3,
			Gemini: EndpointConfig{
				Endpoint: "https://generativelanguage.googleapis.com/v1beta",
				Model:    "gemini-1.5-flash",
			},
			OpenAI: EndpointConfig{
				Endpoint: "https://api.openai.com/v1/chat/completions",
				Model:    "gpt-4o-mini",
			},
			Kimi: EndpointConfig{
				Endpoint: "https://api.moonshot.cn/v1/chat/completions",
				Model:    "moonshot-v1-8k",
			},
			Service: EndpointConfig{Endpoint: "http://localhost:8080"},
		},
		Sources: SourcesConfig{
			Arxiv:   ArxivConfig{Endpoint: "https://export.arxiv.org/api/query"},
			YouTube: YouTubeConfig{BaseURL: "https://www.googleapis.com"},
		},
		Database:  DatabaseConfig{Driver: "sqlite"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Drive: DriveConfig{
			TokenURL:  "https://oauth2.googleapis.com/token",
			UploadURL: "https://www.googleapis.com/upload/drive/v3/files",
		},
	}
}
