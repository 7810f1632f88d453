package config

import (
	"github.com/kelseyhightower/envconfig"

	"ResearchAgent/internal/domain"
)

// envOverrides lists the variables that win over the YAML file. Empty
// values leave the file setting untouched.
type envOverrides struct {
	LogLevel          string `envconfig:"LOG_LEVEL"`
	Model             string `envconfig:"SUMMARIZER_MODEL"`
	SummarizerAPIKey  string `envconfig:"SUMMARIZER_API_KEY"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	KimiAPIKey        string `envconfig:"KIMI_API_KEY"`
	YouTubeAPIKey     string `envconfig:"YOUTUBE_API_KEY"`
	DatabaseDriver    string `envconfig:"DATABASE_DRIVER"`
	DatabaseDSN       string `envconfig:"DATABASE_DSN"`
	TelegramBotToken  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID    int64  `envconfig:"TELEGRAM_CHAT_ID"`
	DriveClientID     string `envconfig:"GOOGLE_DRIVE_CLIENT_ID"`
	DriveClientSecret string `envconfig:"GOOGLE_DRIVE_CLIENT_SECRET"`
	DriveRefreshToken string `envconfig:"GOOGLE_DRIVE_REFRESH_TOKEN"`
	OutputDir         string `envconfig:"RESEARCH_OUTPUT_DIR"`
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return &domain.ConfigurationError{Field: "environment", Err: err}
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&c.Logging.Level, env.LogLevel)
	set(&c.Summarizer.Model, env.Model)
	set(&c.Summarizer.APIKey, env.SummarizerAPIKey)
	set(&c.Summarizer.Gemini.APIKey, env.GeminiAPIKey)
	set(&c.Summarizer.OpenAI.APIKey, env.OpenAIAPIKey)
	set(&c.Summarizer.Kimi.APIKey, env.KimiAPIKey)
	set(&c.Sources.YouTube.APIKey, env.YouTubeAPIKey)
	set(&c.Database.Driver, env.DatabaseDriver)
	set(&c.Database.DSN, env.DatabaseDSN)
	set(&c.Notifications.Telegram.BotToken, env.TelegramBotToken)
	set(&c.Drive.ClientID, env.DriveClientID)
	set(&c.Drive.ClientSecret, env.DriveClientSecret)
	set(&c.Drive.RefreshToken, env.DriveRefreshToken)
	set(&c.Research.OutputDir, env.OutputDir)

	if env.TelegramChatID != 0 {
		c.Notifications.Telegram.ChatID = env.TelegramChatID
	}
	return nil
}
